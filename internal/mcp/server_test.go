package mcp

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trirpi/imessage-analysis/internal/config"
	"github.com/trirpi/imessage-analysis/internal/feature"
	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/store"
)

// fakeStore serves canned rows and counts calls, standing in for chat.db.
type fakeStore struct {
	raw        []msg.Raw
	resolved   int
	fetched    int
	resolveErr error
}

func (f *fakeStore) ResolveHandles(_ context.Context, identifier string) ([]store.Handle, error) {
	f.resolved++
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return []store.Handle{{ID: 1, Identifier: identifier}}, nil
}

func (f *fakeStore) FetchRaw(_ context.Context, _ []int64) ([]msg.Raw, error) {
	f.fetched++
	return f.raw, nil
}

func (f *fakeStore) Close() error { return nil }

func appleNS(t time.Time) int64 {
	epoch := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Sub(epoch).Nanoseconds()
}

func rawAt(ts time.Time, text string, fromMe bool) msg.Raw {
	return msg.Raw{
		DateNS: sql.NullInt64{Int64: appleNS(ts), Valid: true},
		Text:   sql.NullString{String: text, Valid: true},
		FromMe: fromMe,
	}
}

func newTestAnalyzer(fs *fakeStore) *analyzer {
	return &analyzer{
		cfg: ServerConfig{
			Store:     fs,
			Extractor: feature.NewExtractor(feature.Config{}),
			Tuning:    config.DefaultTuning(),
			Log:       zerolog.Nop(),
		},
		sessions: make(map[string]*session),
	}
}

func TestSessionComputesAndCaches(t *testing.T) {
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	fs := &fakeStore{raw: []msg.Raw{
		rawAt(base, "hey, lunch today?", false),
		rawAt(base.Add(5*time.Minute), "love this plan", true),
	}}
	a := newTestAnalyzer(fs)

	sess, err := a.session(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.Result.Totals.Messages != 2 {
		t.Errorf("Messages = %d, want 2", sess.Result.Totals.Messages)
	}

	again, err := a.session(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if again != sess {
		t.Error("expected cached session on second call")
	}
	if fs.resolved != 1 || fs.fetched != 1 {
		t.Errorf("store hit %d/%d times, want once", fs.resolved, fs.fetched)
	}
}

func TestSessionPropagatesEmptySeries(t *testing.T) {
	a := newTestAnalyzer(&fakeStore{})
	if _, err := a.session(context.Background(), "+15551234567"); err == nil {
		t.Fatal("expected error for contact with no messages")
	}
}

func TestSessionDistinctContacts(t *testing.T) {
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	fs := &fakeStore{raw: []msg.Raw{rawAt(base, "hello", true)}}
	a := newTestAnalyzer(fs)

	if _, err := a.session(context.Background(), "contact-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.session(context.Background(), "contact-b"); err != nil {
		t.Fatal(err)
	}
	if fs.resolved != 2 {
		t.Errorf("resolved %d times, want one per contact", fs.resolved)
	}
}

func TestAnalyzeOptionsMapping(t *testing.T) {
	tu := config.Tuning{
		ResponseWindow:   24 * time.Hour,
		DoubleTextWindow: 2 * time.Minute,
		ThreadGap:        time.Hour,
		JokeMinRepeats:   7,
		TopicMinRepeats:  9,
	}
	opts := analyzeOptions(tu)
	if opts.ResponseWindow != tu.ResponseWindow ||
		opts.DoubleTextWindow != tu.DoubleTextWindow ||
		opts.ThreadGap != tu.ThreadGap ||
		opts.JokeMinRepeats != 7 || opts.TopicMinRepeats != 9 {
		t.Errorf("analyzeOptions dropped a knob: %+v", opts)
	}
}

func TestNewServerBuilds(t *testing.T) {
	s := NewServer(ServerConfig{
		Store:     &fakeStore{},
		Extractor: feature.NewExtractor(feature.Config{}),
		Tuning:    config.DefaultTuning(),
		Log:       zerolog.Nop(),
	})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
