// Package report renders computed analysis tables as plain text. It consumes
// finished results only and does no computation of its own beyond formatting.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/trirpi/imessage-analysis/internal/analyze"
	"github.com/trirpi/imessage-analysis/internal/detect"
	"github.com/trirpi/imessage-analysis/internal/msg"
)

const rule = "============================================================"
const thinRule = "------------------------------------------------------------"

// Report bundles everything the renderer prints.
type Report struct {
	Contact   string
	Result    *analyze.Result
	BigDays   []detect.BigDay
	Arguments []detect.ArgumentThread
	Activity  detect.ActivitySplit
}

// Render writes the full text report.
func Render(w io.Writer, r Report) {
	renderSummary(w, r)
	renderResponse(w, r.Result)
	renderConversation(w, r.Result)
	renderEmoji(w, r.Result.Emoji)
	renderJokes(w, r.Result)
	renderMilestones(w, r.Result)
	renderStreaks(w, r.Result)
	renderDetectors(w, r)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}

func renderSummary(w io.Writer, r Report) {
	t := r.Result.Totals
	section(w, "SUMMARY - "+r.Contact)
	fmt.Fprintf(w, "Messages: %d (you %d, them %d)\n", t.Messages, t.SentMessages, t.RecvMessages)
	fmt.Fprintf(w, "Words: %d (you %d, them %d)\n", t.Words, t.SentWords, t.RecvWords)
	fmt.Fprintf(w, "Span: %s to %s over %d active days\n",
		t.First.Format("2006-01-02"), t.Last.Format("2006-01-02"), t.ActiveDays)
}

func renderResponse(w io.Writer, res *analyze.Result) {
	if len(res.ResponseAll) == 0 {
		return
	}
	section(w, "RESPONSE TIMES (median hours per month)")
	selfByMonth := make(map[string]analyze.MonthlyMedian, len(res.ResponseSelf))
	for _, m := range res.ResponseSelf {
		selfByMonth[m.Month] = m
	}
	fmt.Fprintf(w, "%-10s %10s %10s\n", "month", "all", "you")
	for _, m := range res.ResponseAll {
		self := "-"
		if sm, ok := selfByMonth[m.Month]; ok {
			self = fmt.Sprintf("%.2f", sm.Hours)
		}
		fmt.Fprintf(w, "%-10s %10.2f %10s\n", m.Month, m.Hours, self)
	}
}

func renderConversation(w io.Writer, res *analyze.Result) {
	section(w, "CONVERSATION DYNAMICS")
	fmt.Fprintf(w, "Double texts: you %d, them %d\n",
		res.DoubleTexts[msg.SenderSelf], res.DoubleTexts[msg.SenderOther])
	fmt.Fprintf(w, "Conversations ended: you %d, them %d\n",
		res.Enders[msg.SenderSelf], res.Enders[msg.SenderOther])

	if len(res.WeeklyRatios) > 0 {
		var self float64
		for _, r := range res.WeeklyRatios {
			self += r.SelfRatio
		}
		fmt.Fprintf(w, "Average weekly word share: you %.0f%%\n",
			100*self/float64(len(res.WeeklyRatios)))
	}
}

func renderEmoji(w io.Writer, st analyze.EmojiStats) {
	section(w, "EMOJI STATISTICS")
	fmt.Fprintf(w, "Total emojis: %d (%d unique)\n", st.Total, st.Unique)

	renderSide(w, "You", st.Self)
	renderSide(w, "Them", st.Other)

	if len(st.ExclusiveSelf) > 0 {
		fmt.Fprintf(w, "\nEmojis only you use:\n")
		renderCounts(w, st.ExclusiveSelf, 10)
	}
	if len(st.ExclusiveOther) > 0 {
		fmt.Fprintf(w, "\nEmojis only they use:\n")
		renderCounts(w, st.ExclusiveOther, 10)
	}
	if len(st.Shared) > 0 {
		fmt.Fprintf(w, "\nTop shared emojis:\n")
		shared := st.Shared
		if len(shared) > 15 {
			shared = shared[:15]
		}
		for _, sh := range shared {
			fmt.Fprintf(w, "  %-4s total %4d | you %3d (%4.1f%%) | them %3d (%4.1f%%)\n",
				sh.Emoji, sh.Total, sh.SelfCount, 100*sh.SelfShare, sh.OtherCount, 100*sh.OtherShare)
		}
	}
}

func renderSide(w io.Writer, who string, side analyze.SideEmojiStats) {
	fmt.Fprintf(w, "%s\n%s: %d emojis, %d unique, %.2f per message\n",
		thinRule, who, side.Total, side.Unique, side.PerMessage)
	renderCounts(w, side.Top, 5)
}

func renderCounts(w io.Writer, counts []analyze.EmojiCount, limit int) {
	if len(counts) > limit {
		counts = counts[:limit]
	}
	for _, c := range counts {
		if c.Share > 0 {
			fmt.Fprintf(w, "  %-4s %5d times (%4.1f%%)\n", c.Emoji, c.Count, 100*c.Share)
		} else {
			fmt.Fprintf(w, "  %-4s %5d times\n", c.Emoji, c.Count)
		}
	}
}

func renderJokes(w io.Writer, res *analyze.Result) {
	if len(res.InsideJokes) == 0 {
		return
	}
	section(w, "RECURRING WORDS (possible inside jokes)")
	jokes := res.InsideJokes
	if len(jokes) > 15 {
		jokes = jokes[:15]
	}
	for _, j := range jokes {
		fmt.Fprintf(w, "  %-20s %d times\n", j.Word, j.Count)
	}
}

func renderMilestones(w io.Writer, res *analyze.Result) {
	if len(res.Milestones) == 0 {
		return
	}
	section(w, "FIRST APPEARANCES")
	for _, m := range res.Milestones {
		who := "you"
		if m.Sender == msg.SenderOther {
			who = "them"
		}
		text := m.Text
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		fmt.Fprintf(w, "  %-10s %s by %s: %q\n", m.Name, m.At.Format("2006-01-02"), who, text)
	}
}

func renderStreaks(w io.Writer, res *analyze.Result) {
	if len(res.Streaks) == 0 {
		return
	}
	section(w, "LONGEST STREAKS (consecutive days talking)")
	streaks := res.Streaks
	if len(streaks) > 5 {
		streaks = streaks[:5]
	}
	for _, st := range streaks {
		fmt.Fprintf(w, "  %3d days  %s to %s\n",
			st.Days, st.Start.Format("2006-01-02"), st.End.Format("2006-01-02"))
	}
}

func renderDetectors(w io.Writer, r Report) {
	if len(r.BigDays) > 0 {
		section(w, "BIG DAYS (outlier word volume)")
		for _, d := range r.BigDays {
			fmt.Fprintf(w, "  %s  %6d words, %4d messages\n",
				d.Date.Format("2006-01-02"), d.Words, d.Messages)
		}
	}

	if len(r.Arguments) > 0 {
		section(w, "POSSIBLE ARGUMENTS (thread fingerprint)")
		for _, a := range r.Arguments {
			fmt.Fprintf(w, "  %s  score %.2f  (%d msgs, %d rapid, %d long)\n",
				a.Start.Format("2006-01-02 15:04"), a.Score, a.Messages, a.Rapid, a.Long)
		}
	}

	if len(r.Activity.Quiet) > 0 {
		section(w, "QUIET WEEKS (possible time apart)")
		weeks := make([]string, 0, len(r.Activity.Quiet))
		for _, wk := range r.Activity.Quiet {
			weeks = append(weeks, wk.WeekStart.Format("2006-01-02"))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(weeks, ", "))
	}
}
