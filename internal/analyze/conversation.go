package analyze

import (
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// Totals are the headline message and word counts per side.
type Totals struct {
	Messages     int
	Words        int
	SentMessages int
	SentWords    int
	RecvMessages int
	RecvWords    int
	First        time.Time
	Last         time.Time
	ActiveDays   int
}

// Heatmap counts messages per Monday-first weekday and hour of day, UTC.
type Heatmap [7][24]int

// Max returns the largest cell, for renderer scaling.
func (h Heatmap) Max() int {
	max := 0
	for _, row := range h {
		for _, n := range row {
			if n > max {
				max = n
			}
		}
	}
	return max
}

func totals(s msg.Series) Totals {
	t := Totals{Messages: len(s), First: s.Start(), Last: s.End()}
	days := make(map[time.Time]bool)
	for _, m := range s {
		t.Words += m.WordCount
		days[series.Day(m.Timestamp)] = true
		if m.Sender == msg.SenderSelf {
			t.SentMessages++
			t.SentWords += m.WordCount
		} else {
			t.RecvMessages++
			t.RecvWords += m.WordCount
		}
	}
	t.ActiveDays = len(days)
	return t
}

// doubleTexts counts same-sender follow-ups landing within the window of the
// previous message. Each qualifying adjacent pair counts once, so a burst of
// n quick messages contributes n-1.
func doubleTexts(s msg.Series, window time.Duration) map[msg.Sender]int {
	counts := map[msg.Sender]int{msg.SenderSelf: 0, msg.SenderOther: 0}
	for i := 1; i < len(s); i++ {
		prev, curr := s[i-1], s[i]
		if curr.Sender != prev.Sender {
			continue
		}
		if curr.Timestamp.Sub(prev.Timestamp) < window {
			counts[curr.Sender]++
		}
	}
	return counts
}

// conversationEnders attributes the last message of every sender run to its
// sender. The final run of the series counts like any other.
func conversationEnders(runs []series.Run) map[msg.Sender]int {
	counts := map[msg.Sender]int{msg.SenderSelf: 0, msg.SenderOther: 0}
	for _, r := range runs {
		counts[r.Sender]++
	}
	return counts
}

func heatmap(s msg.Series) Heatmap {
	var h Heatmap
	for _, m := range s {
		ts := m.Timestamp.UTC()
		h[series.WeekdayIndex(ts)][ts.Hour()]++
	}
	return h
}
