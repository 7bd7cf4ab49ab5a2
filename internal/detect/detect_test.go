package detect

import (
	"math"
	"testing"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

var monday = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func TestQuantileLinearInterpolation(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		if got := Quantile(vals, tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Quantile(%v, %v) = %v, want %v", vals, tt.p, got, tt.want)
		}
	}
	if got := Quantile(nil, 0.5); got != 0 {
		t.Errorf("Quantile(nil) = %v, want 0", got)
	}
	// Input must not be reordered.
	if vals[0] != 1 || vals[3] != 4 {
		t.Errorf("input mutated: %v", vals)
	}
	shuffled := []float64{3, 1, 4, 2}
	if got := Quantile(shuffled, 0.5); got != 2.5 {
		t.Errorf("Quantile on unsorted input = %v, want 2.5", got)
	}
}

func TestBigDaysTukeyFence(t *testing.T) {
	day := func(d, words int) msg.Message {
		return msg.Message{Timestamp: monday.AddDate(0, 0, d), WordCount: words}
	}
	// Four ordinary days and one outlier. Quartiles are both 10, so the
	// fence sits at 10 and only the 100-word day clears it.
	s := msg.Series{day(0, 10), day(1, 10), day(2, 10), day(3, 10), day(4, 100)}

	big := BigDays(s, 1.5)
	if len(big) != 1 {
		t.Fatalf("BigDays = %+v, want one outlier", big)
	}
	if big[0].Words != 100 || big[0].Messages != 1 {
		t.Errorf("big day = %+v", big[0])
	}
	if !big[0].Date.Equal(monday.AddDate(0, 0, 4).Truncate(24 * time.Hour)) {
		t.Errorf("big day date = %v", big[0].Date)
	}
}

func TestBigDaysUniformVolume(t *testing.T) {
	day := func(d int) msg.Message {
		return msg.Message{Timestamp: monday.AddDate(0, 0, d), WordCount: 10}
	}
	s := msg.Series{day(0), day(1), day(2)}
	if big := BigDays(s, 1.5); len(big) != 0 {
		t.Errorf("BigDays = %+v, want none for uniform volume", big)
	}
}

func TestBigDaysCapAndOrder(t *testing.T) {
	var s msg.Series
	// Twelve loud days over a long quiet baseline, so the quartiles stay
	// at the baseline volume.
	for d := 0; d < 60; d++ {
		s = append(s, msg.Message{Timestamp: monday.AddDate(0, 0, d), WordCount: 5})
	}
	for d := 0; d < 12; d++ {
		s = append(s, msg.Message{Timestamp: monday.AddDate(0, 0, d).Add(time.Hour), WordCount: 500 + d})
	}
	big := BigDays(s, 1.5)
	if len(big) != 10 {
		t.Fatalf("len(big) = %d, want capped at 10", len(big))
	}
	for i := 1; i < len(big); i++ {
		if big[i].Words > big[i-1].Words {
			t.Errorf("big days not sorted by volume: %d before %d", big[i-1].Words, big[i].Words)
		}
	}
}

func TestArgumentsFlagsHeatedThread(t *testing.T) {
	s := msg.Series{
		// Heated thread: rapid fire, long messages, no emoji.
		{Timestamp: monday, Sender: msg.SenderSelf, WordCount: 25},
		{Timestamp: monday.Add(time.Minute), Sender: msg.SenderOther, WordCount: 30},
		{Timestamp: monday.Add(2 * time.Minute), Sender: msg.SenderSelf, WordCount: 25},
		// Calm thread an hour later.
		{Timestamp: monday.Add(time.Hour), Sender: msg.SenderOther, WordCount: 2, EmojiCount: 1},
	}
	args := Arguments(s, 30*time.Minute, 0.5)

	if len(args) != 1 {
		t.Fatalf("Arguments = %+v, want one flagged thread", args)
	}
	a := args[0]
	if !a.Start.Equal(monday) {
		t.Errorf("flagged thread start = %v, want %v", a.Start, monday)
	}
	if a.Rapid != 2 || a.Long != 3 {
		t.Errorf("signals = %+v, want 2 rapid and 3 long", a)
	}
	// 0.3*2 + 0.2*3 + 0.3*1.0, no sentiment term.
	want := 0.3*2 + 0.2*3 + 0.3
	if math.Abs(a.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", a.Score, want)
	}
}

func TestArgumentsSentimentTermNeverFires(t *testing.T) {
	// Every message deeply negative: the low-sentiment fraction is 1.0,
	// which still fails the < -0.1 comparison.
	s := msg.Series{
		{Timestamp: monday, WordCount: 25, Sentiment: -1},
		{Timestamp: monday.Add(time.Minute), WordCount: 25, Sentiment: -1},
	}
	args := Arguments(s, 30*time.Minute, 0.5)
	if len(args) != 1 {
		t.Fatalf("Arguments = %+v, want one thread", args)
	}
	a := args[0]
	if a.LowSentFrac != 1 {
		t.Errorf("LowSentFrac = %v, want 1", a.LowSentFrac)
	}
	want := 0.3*1 + 0.2*2 + 0.3*1 // no +0.2
	if math.Abs(a.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v without sentiment bonus", a.Score, want)
	}
}

func TestArgumentsEmpty(t *testing.T) {
	if args := Arguments(nil, 0, 0); args != nil {
		t.Errorf("Arguments(nil) = %v, want nil", args)
	}
}

func TestSplitActivityQuartiles(t *testing.T) {
	week := func(w, words int) msg.Message {
		return msg.Message{Timestamp: monday.AddDate(0, 0, 7*w), WordCount: words}
	}
	// Weekly words 10, 20, 30, 40, 50: Q1=20, Q3=40.
	s := msg.Series{week(0, 10), week(1, 20), week(2, 30), week(3, 40), week(4, 50)}

	split := SplitActivity(s)
	if split.Q1 != 20 || split.Q3 != 40 {
		t.Fatalf("quartiles = %v, %v, want 20 and 40", split.Q1, split.Q3)
	}
	if len(split.Quiet) != 1 || split.Quiet[0].Words != 10 {
		t.Errorf("Quiet = %+v, want the 10-word week", split.Quiet)
	}
	if len(split.Busy) != 1 || split.Busy[0].Words != 50 {
		t.Errorf("Busy = %+v, want the 50-word week", split.Busy)
	}
}

func TestSplitActivityEmpty(t *testing.T) {
	split := SplitActivity(nil)
	if split.Quiet != nil || split.Busy != nil {
		t.Errorf("SplitActivity(nil) = %+v, want empty", split)
	}
}
