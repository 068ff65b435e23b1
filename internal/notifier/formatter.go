package notifier

import (
	"fmt"
	"html"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"MomentumScanner/internal/collector"
	"MomentumScanner/internal/model"
	"MomentumScanner/internal/recorder"
	"MomentumScanner/internal/session"
)

// DefaultRowLimit keeps a table inside Telegram's 4096 character message limit.
const DefaultRowLimit = 25

const timeLayout = "15:04:05 MST"

// FormatPrice renders a price as dollars with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// FormatPercent renders a signed percentage, or N/A when it is unavailable.
func FormatPercent(p model.SignedPercent) string {
	if !p.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", p.Value.InexactFloat64())
}

// SignMarker is green for a positive percentage and red otherwise.
func SignMarker(p model.SignedPercent) string {
	switch {
	case !p.Valid:
		return "⚪"
	case p.Positive:
		return "🟢"
	default:
		return "🔴"
	}
}

// FormatVolume renders a share count with thousands separators.
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// FormatMarketCap renders a dollar amount in K/M/B/T units.
func FormatMarketCap(v int64) string {
	return "$" + compact(float64(v))
}

func compact(f float64) string {
	switch {
	case f >= 1e12:
		return humanize.FtoaWithDigits(f/1e12, 2) + "T"
	case f >= 1e9:
		return humanize.FtoaWithDigits(f/1e9, 2) + "B"
	case f >= 1e6:
		return humanize.FtoaWithDigits(f/1e6, 2) + "M"
	case f >= 1e3:
		return humanize.FtoaWithDigits(f/1e3, 2) + "K"
	default:
		return humanize.Comma(int64(f))
	}
}

type criterion struct {
	label string
	value func(float64) string
}

var criteria = map[string]criterion{
	model.ColClose:           {"Price", func(v float64) string { return "$" + humanize.FtoaWithDigits(v, 2) }},
	model.ColChange:          {"Change", percentBound},
	model.ColPremarketChange: {"Pre-market Change", percentBound},
	model.ColRelativeVolume:  {"Rel. Volume", func(v float64) string { return humanize.FtoaWithDigits(v, 2) + "x" }},
	model.ColFloatShares:     {"Float", func(v float64) string { return compact(v) + " shares" }},
	model.ColVolume:          {"Volume", func(v float64) string { return humanize.Comma(int64(v)) }},
}

func percentBound(v float64) string { return humanize.FtoaWithDigits(v, 2) + "%" }

// FormatCriterion describes one filter clause in words, e.g. "Price $1 to $30".
// Columns without a label fall back to the clause's own notation.
func FormatCriterion(c model.FilterClause) string {
	cr, ok := criteria[c.Field()]
	if !ok {
		return c.String()
	}
	switch c.Operator() {
	case model.OpGreater:
		return fmt.Sprintf("%s above %s", cr.label, cr.value(c.Bound()))
	case model.OpInRange:
		low, high := c.Range()
		if low == 0 {
			return fmt.Sprintf("%s up to %s", cr.label, cr.value(high))
		}
		return fmt.Sprintf("%s %s to %s", cr.label, cr.value(low), cr.value(high))
	}
	return c.String()
}

// FormatCriteria joins the descriptions of every filter of a profile.
func FormatCriteria(filters []model.FilterClause) string {
	parts := make([]string, len(filters))
	for i, c := range filters {
		parts[i] = FormatCriterion(c)
	}
	return strings.Join(parts, " · ")
}

// FormatRelativeVolume renders a relative volume multiplier.
func FormatRelativeVolume(d decimal.Decimal) string {
	return d.StringFixed(2) + "x"
}

// FormatProfile renders the latest state of one profile: its result table, a
// warning when the last refresh failed, or a placeholder before the first result.
func FormatProfile(v session.ProfileView, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>%s</b>\n", html.EscapeString(v.Profile.Title))
	if len(v.Profile.Filters) > 0 {
		fmt.Fprintf(&b, "🔎 %s\n", html.EscapeString(FormatCriteria(v.Profile.Filters)))
	}

	if v.Err != nil {
		fmt.Fprintf(&b, "⚠️ Last refresh failed at %s: %s\n",
			v.ErrAt.Format(timeLayout), html.EscapeString(describeError(v.Err)))
	}
	if v.Result == nil {
		b.WriteString("⏳ No results yet.\n")
		return b.String()
	}

	r := v.Result
	fmt.Fprintf(&b, "As of %s · %d shown", r.AsOf.Format(timeLayout), r.Len())
	if r.TotalCount > r.Len() {
		fmt.Fprintf(&b, " of %d", r.TotalCount)
	}
	b.WriteString("\n")
	if r.Len() == 0 {
		b.WriteString("No stocks match right now.\n")
		return b.String()
	}

	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(FormatTable(r.Records, limit)))
	b.WriteString("</pre>")
	if limit > 0 && r.Len() > limit {
		fmt.Fprintf(&b, "\n…and %d more", r.Len()-limit)
	}
	return b.String()
}

// FormatTable renders records as an aligned plain-text table, at most limit rows
// when limit is positive.
func FormatTable(records []model.NormalizedRecord, limit int) string {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	premarket := len(records) > 0 && records[0].PremarketChange != nil

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', 0)
	header := "  \tSymbol\tPrice\tChg"
	if premarket {
		header += "\tPM Chg"
	}
	fmt.Fprintln(w, header+"\tVolume\tRVol\tMCap")

	for _, rec := range records {
		marker := rec.Change
		if premarket {
			marker = *rec.PremarketChange
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", SignMarker(marker), rec.Symbol, FormatPrice(rec.Price), FormatPercent(rec.Change))
		if premarket {
			pm := model.Unavailable()
			if rec.PremarketChange != nil {
				pm = *rec.PremarketChange
			}
			line += "\t" + FormatPercent(pm)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", line,
			FormatVolume(rec.Volume), FormatRelativeVolume(rec.RelativeVolume), FormatMarketCap(rec.MarketCap))
	}
	w.Flush()
	return sb.String()
}

// FormatStatus summarises every profile and the refresh schedule. A zero next means
// the next tick refreshes.
func FormatStatus(views []session.ProfileView, state model.RefreshState, interval time.Duration, next, now time.Time) string {
	var b strings.Builder
	b.WriteString("🛰 <b>Scanner status</b>\n\n")
	if state.LastRefresh.IsZero() {
		b.WriteString("Last refresh: never\n")
	} else {
		fmt.Fprintf(&b, "Last refresh: %s (%s)\n", state.LastRefresh.Format(timeLayout), humanize.RelTime(state.LastRefresh, now, "ago", "from now"))
	}
	fmt.Fprintf(&b, "Interval: %s\n", interval)
	switch {
	case state.ManualTrigger:
		b.WriteString("Next refresh: now (manual refresh pending)\n")
	case next.IsZero() || !next.After(now):
		b.WriteString("Next refresh: now\n")
	default:
		fmt.Fprintf(&b, "Next refresh: %s (%s)\n", next.Format(timeLayout), humanize.RelTime(next, now, "ago", "from now"))
	}
	b.WriteString("\n")

	for _, v := range views {
		switch {
		case v.Err != nil:
			fmt.Fprintf(&b, "🔴 %s: %s\n", html.EscapeString(v.Profile.Title), html.EscapeString(describeError(v.Err)))
		case v.Result == nil:
			fmt.Fprintf(&b, "⏳ %s: waiting for first result\n", html.EscapeString(v.Profile.Title))
		default:
			fmt.Fprintf(&b, "🟢 %s: %d records, %d dropped\n", html.EscapeString(v.Profile.Title), v.Result.Len(), v.Result.Dropped)
		}
	}
	return b.String()
}

// FormatJournal renders per-profile cycle totals from the journal.
func FormatJournal(sums []recorder.CycleSummary) string {
	var b strings.Builder
	b.WriteString("<b>Last 24h</b>\n")
	if len(sums) == 0 {
		b.WriteString("No cycles recorded.\n")
		return b.String()
	}
	for _, s := range sums {
		fmt.Fprintf(&b, "%s: %d cycles, %d failed", html.EscapeString(s.Profile), s.Cycles, s.Failures)
		if !s.LastOK.IsZero() {
			fmt.Fprintf(&b, ", last ok %s", s.LastOK.UTC().Format(timeLayout))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /market: market hours movers\n" +
		"• /premarket: pre-market movers\n" +
		"• /status: scanner status\n" +
		"• /refresh: refresh now"
}

func describeError(err error) string {
	if kind := collector.KindOf(err); kind != "" {
		return string(kind)
	}
	return err.Error()
}
