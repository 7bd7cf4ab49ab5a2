package series

import (
	"testing"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

var base = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC) // a Monday

func at(offset time.Duration, sender msg.Sender) msg.Message {
	return msg.Message{Timestamp: base.Add(offset), Sender: sender, Text: "x"}
}

func TestRunsPartitionSeries(t *testing.T) {
	s := msg.Series{
		at(0, msg.SenderSelf),
		at(time.Minute, msg.SenderSelf),
		at(2*time.Minute, msg.SenderOther),
		at(3*time.Minute, msg.SenderSelf),
	}
	runs := Runs(s)

	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	// Concatenating runs reproduces the series exactly.
	total := 0
	for i, r := range runs {
		for j, m := range r.Messages {
			if !m.Timestamp.Equal(s[total+j].Timestamp) {
				t.Errorf("run %d message %d out of order", i, j)
			}
		}
		total += len(r.Messages)
	}
	if total != len(s) {
		t.Errorf("runs cover %d messages, want %d", total, len(s))
	}
	// Adjacent runs never share a sender.
	for i := 1; i < len(runs); i++ {
		if runs[i].Sender == runs[i-1].Sender {
			t.Errorf("adjacent runs %d and %d share sender %v", i-1, i, runs[i].Sender)
		}
	}
}

func TestRunsEmpty(t *testing.T) {
	if got := Runs(nil); got != nil {
		t.Errorf("Runs(nil) = %v, want nil", got)
	}
}

func TestThreadsSplitAtGapThreshold(t *testing.T) {
	s := msg.Series{
		at(0, msg.SenderSelf),
		at(29*time.Minute, msg.SenderOther),  // 29m gap: same thread
		at(59*time.Minute, msg.SenderSelf),   // exactly 30m gap: new thread
		at(200*time.Minute, msg.SenderOther), // large gap: new thread
	}
	threads := Threads(s, 30*time.Minute)

	if len(threads) != 3 {
		t.Fatalf("len(threads) = %d, want 3", len(threads))
	}
	if len(threads[0].Messages) != 2 {
		t.Errorf("thread 0 has %d messages, want 2", len(threads[0].Messages))
	}
	// Threads partition the series.
	total := 0
	for _, th := range threads {
		total += len(th.Messages)
	}
	if total != len(s) {
		t.Errorf("threads cover %d messages, want %d", total, len(s))
	}
}

func TestDayStreaks(t *testing.T) {
	day := func(d int) msg.Message {
		return msg.Message{Timestamp: base.AddDate(0, 0, d), Sender: msg.SenderSelf}
	}
	// Days 0,1,2 then a gap, then 4,5, then 10.
	s := msg.Series{day(0), day(1), day(1), day(2), day(4), day(5), day(10)}

	streaks := DayStreaks(s)
	if len(streaks) != 3 {
		t.Fatalf("len(streaks) = %d, want 3", len(streaks))
	}
	if streaks[0].Days != 3 || !streaks[0].Start.Equal(Day(base)) {
		t.Errorf("longest streak = %+v, want 3 days from %v", streaks[0], Day(base))
	}
	if streaks[1].Days != 2 || streaks[2].Days != 1 {
		t.Errorf("streak lengths = %d, %d, want 2, 1", streaks[1].Days, streaks[2].Days)
	}

	// Lengths sum to the number of distinct active dates.
	sum := 0
	for _, st := range streaks {
		sum += st.Days
	}
	if sum != 6 {
		t.Errorf("streak lengths sum to %d, want 6 distinct dates", sum)
	}
}

func TestDayStreaksTieBreakEarliestStart(t *testing.T) {
	day := func(d int) msg.Message {
		return msg.Message{Timestamp: base.AddDate(0, 0, d)}
	}
	// Two streaks of length 2: days 0-1 and days 5-6.
	s := msg.Series{day(5), day(6), day(0), day(1)}
	streaks := DayStreaks(s)
	if len(streaks) != 2 {
		t.Fatalf("len(streaks) = %d, want 2", len(streaks))
	}
	if !streaks[0].Start.Equal(Day(base)) {
		t.Errorf("tie should go to the earliest start, got %v", streaks[0].Start)
	}
}

func TestResponseEventsWindowAndSenderChange(t *testing.T) {
	s := msg.Series{
		at(0, msg.SenderSelf),
		at(10*time.Minute, msg.SenderSelf),   // same sender: no event
		at(20*time.Minute, msg.SenderOther),  // event, responder=them
		at(30*time.Minute, msg.SenderSelf),   // event, responder=self
		at(30*time.Minute+169*time.Hour, msg.SenderOther), // beyond window
	}
	events := ResponseEvents(s, 168*time.Hour)

	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Responder != msg.SenderOther || events[1].Responder != msg.SenderSelf {
		t.Errorf("responders = %v, %v", events[0].Responder, events[1].Responder)
	}
	if events[1].DeltaHours != 10.0/60.0 {
		t.Errorf("DeltaHours = %v, want %v", events[1].DeltaHours, 10.0/60.0)
	}
	if events[0].Month != "2024-03" {
		t.Errorf("Month = %q, want 2024-03", events[0].Month)
	}
}

func TestResponseEventsZeroDelta(t *testing.T) {
	s := msg.Series{
		at(0, msg.SenderSelf),
		at(0, msg.SenderOther), // simultaneous: not a response
	}
	if events := ResponseEvents(s, 0); len(events) != 0 {
		t.Errorf("expected no events for zero delta, got %d", len(events))
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},  // Monday stays
		{time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},   // Sunday joins prior Monday
		{time.Date(2024, 3, 6, 23, 59, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},  // Wednesday
	}
	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBucketKeys(t *testing.T) {
	ts := time.Date(2023, 7, 9, 22, 0, 0, 0, time.UTC)
	if got := DayKey(ts); got != "2023-07-09" {
		t.Errorf("DayKey = %q", got)
	}
	if got := MonthKey(ts); got != "2023-07" {
		t.Errorf("MonthKey = %q", got)
	}
	if got := WeekdayIndex(ts); got != 6 { // Sunday
		t.Errorf("WeekdayIndex = %d, want 6", got)
	}
}
