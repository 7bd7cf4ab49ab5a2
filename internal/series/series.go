// Package series partitions an ordered message series along its temporal
// structure: same-sender runs, gap-bounded threads, consecutive-day streaks,
// calendar buckets, and cross-sender response events.
//
// Every grouping is a read-only view over the input series: subsequences are
// slices of the original backing array and nothing is written back. All
// groupings are single forward passes with an explicit previous-message
// cursor, so they are deterministic and restartable from the same input.
package series

import (
	"sort"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

// DefaultThreadGap is the silence that starts a new thread.
const DefaultThreadGap = 30 * time.Minute

// DefaultResponseWindow bounds how long after a message a reply still counts
// as a response. Beyond it the pair is treated as unrelated.
const DefaultResponseWindow = 168 * time.Hour

// Run is a maximal contiguous subsequence from a single sender.
type Run struct {
	Sender   msg.Sender
	Messages msg.Series
}

// Thread is a maximal contiguous subsequence with every internal gap below
// the thread gap threshold. A thread may span multiple runs.
type Thread struct {
	Start    time.Time
	Messages msg.Series
}

// DayStreak is a maximal run of consecutive calendar days that each contain
// at least one message.
type DayStreak struct {
	Start time.Time // first day, UTC midnight
	End   time.Time // last day, UTC midnight
	Days  int
}

// ResponseEvent is a sender-alternating adjacent pair within the response
// window, used to measure reply latency.
type ResponseEvent struct {
	Prev       msg.Message
	Curr       msg.Message
	DeltaHours float64
	Responder  msg.Sender
	Month      string // bucket key of the responding message, YYYY-MM
}

// Runs partitions the series into sender streaks. Adjacent runs always have
// different senders and concatenating them reproduces the series exactly.
func Runs(s msg.Series) []Run {
	if len(s) == 0 {
		return nil
	}
	var runs []Run
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i].Sender != s[start].Sender {
			runs = append(runs, Run{Sender: s[start].Sender, Messages: s[start:i]})
			start = i
		}
	}
	return runs
}

// Threads partitions the series at every gap of at least the given threshold.
// The first message always opens thread zero. A non-positive gap falls back
// to DefaultThreadGap.
func Threads(s msg.Series, gap time.Duration) []Thread {
	if len(s) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultThreadGap
	}
	var threads []Thread
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i].Timestamp.Sub(s[i-1].Timestamp) >= gap {
			threads = append(threads, Thread{Start: s[start].Timestamp, Messages: s[start:i]})
			start = i
		}
	}
	return threads
}

// DayStreaks finds maximal runs of consecutive days with activity, computed
// over the set of distinct message dates. The result is sorted by length
// descending; equal lengths order by earliest start.
func DayStreaks(s msg.Series) []DayStreak {
	if len(s) == 0 {
		return nil
	}

	seen := make(map[time.Time]bool, len(s))
	for _, m := range s {
		seen[Day(m.Timestamp)] = true
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var streaks []DayStreak
	start := 0
	for i := 1; i <= len(days); i++ {
		if i == len(days) || !days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			streaks = append(streaks, DayStreak{
				Start: days[start],
				End:   days[i-1],
				Days:  i - start,
			})
			start = i
		}
	}

	sort.SliceStable(streaks, func(i, j int) bool {
		if streaks[i].Days != streaks[j].Days {
			return streaks[i].Days > streaks[j].Days
		}
		return streaks[i].Start.Before(streaks[j].Start)
	})
	return streaks
}

// ResponseEvents pairs adjacent messages across a sender change when the
// reply lands within (0, window). Same-sender transitions and replies after
// longer silences never produce an event. A non-positive window falls back to
// DefaultResponseWindow.
func ResponseEvents(s msg.Series, window time.Duration) []ResponseEvent {
	if window <= 0 {
		window = DefaultResponseWindow
	}
	var events []ResponseEvent
	for i := 1; i < len(s); i++ {
		prev, curr := s[i-1], s[i]
		if prev.Sender == curr.Sender {
			continue
		}
		dt := curr.Timestamp.Sub(prev.Timestamp)
		if dt <= 0 || dt >= window {
			continue
		}
		events = append(events, ResponseEvent{
			Prev:       prev,
			Curr:       curr,
			DeltaHours: dt.Hours(),
			Responder:  curr.Sender,
			Month:      MonthKey(curr.Timestamp),
		})
	}
	return events
}
