package msg

import (
	"database/sql"
	"testing"
	"time"
)

func ns(v int64) sql.NullInt64   { return sql.NullInt64{Int64: v, Valid: true} }
func txt(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }

func TestFromAppleNS(t *testing.T) {
	if got := FromAppleNS(0); !got.Equal(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("epoch zero = %v, want 2001-01-01T00:00:00Z", got)
	}

	// One day plus one second past the epoch.
	oneDay := int64(24*3600+1) * 1e9
	want := time.Date(2001, 1, 2, 0, 0, 1, 0, time.UTC)
	if got := FromAppleNS(oneDay); !got.Equal(want) {
		t.Errorf("FromAppleNS(%d) = %v, want %v", oneDay, got, want)
	}
}

func TestIsReaction(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Tapped a heart on 'I love you'", true},
		{"Loved 'see you soon'", true},
		{"I love you", false},
		{"it's fine", false}, // single apostrophe, no closing quote
		{"she said 'no' and then 'yes'", true},
		{"''", false}, // empty quotes: pattern requires at least one char
	}
	for _, tt := range tests {
		if got := IsReaction(tt.text); got != tt.want {
			t.Errorf("IsReaction(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeDropsInvalidRecords(t *testing.T) {
	raw := []Raw{
		{DateNS: ns(1e9), Text: txt("hello"), FromMe: true},
		{DateNS: sql.NullInt64{}, Text: txt("no timestamp")},
		{DateNS: ns(2e9), Text: sql.NullString{}},
		{DateNS: ns(3e9), Text: txt("")},
		{DateNS: ns(4e9), Text: txt("Tapped a heart on 'hello'")},
		{DateNS: ns(5e9), Text: txt("still here"), FromMe: false},
	}

	series, counts := Normalize(raw)

	if counts.Input != 6 {
		t.Errorf("Input = %d, want 6", counts.Input)
	}
	if counts.Invalid != 3 {
		t.Errorf("Invalid = %d, want 3", counts.Invalid)
	}
	if counts.Reactions != 1 {
		t.Errorf("Reactions = %d, want 1", counts.Reactions)
	}
	if counts.Retained != 2 || len(series) != 2 {
		t.Fatalf("Retained = %d, len = %d, want 2", counts.Retained, len(series))
	}
	if series[0].Sender != SenderSelf || series[1].Sender != SenderOther {
		t.Errorf("senders = %v, %v", series[0].Sender, series[1].Sender)
	}
}

func TestNormalizeSortsStably(t *testing.T) {
	raw := []Raw{
		{DateNS: ns(5e9), Text: txt("third")},
		{DateNS: ns(1e9), Text: txt("first")},
		{DateNS: ns(5e9), Text: txt("fourth")}, // duplicate timestamp: keeps fetch order
		{DateNS: ns(2e9), Text: txt("second")},
	}

	series, _ := Normalize(raw)

	want := []string{"first", "second", "third", "fourth"}
	if len(series) != len(want) {
		t.Fatalf("len = %d, want %d", len(series), len(want))
	}
	for i, w := range want {
		if series[i].Text != w {
			t.Errorf("series[%d].Text = %q, want %q", i, series[i].Text, w)
		}
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp.Before(series[i-1].Timestamp) {
			t.Errorf("timestamps not ascending at index %d", i)
		}
	}
}

func TestSeriesBySender(t *testing.T) {
	series := Series{
		{Text: "a", Sender: SenderSelf},
		{Text: "b", Sender: SenderOther},
		{Text: "c", Sender: SenderSelf},
	}
	self := series.BySender(SenderSelf)
	if len(self) != 2 || self[0].Text != "a" || self[1].Text != "c" {
		t.Errorf("BySender(self) = %v", self)
	}
}
