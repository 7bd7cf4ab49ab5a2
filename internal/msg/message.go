// Package msg defines the canonical message model for conversation analysis.
//
// A Message is an immutable value: a UTC timestamp, the raw text, and which
// side of the two-party conversation sent it. Derived attributes (word count,
// sentiment, emoji, type tag) are pure functions of the text and are filled in
// once by the feature extractor; nothing downstream mutates a Message.
package msg

import (
	"errors"
	"time"
)

// ErrNoMessages is returned when normalization leaves zero messages.
// This is the one terminal input condition: with an empty series every
// downstream aggregate would be vacuous, so the run aborts here.
var ErrNoMessages = errors.New("no messages after filtering")

// Sender identifies which party of the conversation sent a message.
type Sender string

const (
	SenderSelf  Sender = "self"
	SenderOther Sender = "them"
)

// Type is the heuristic message-type tag assigned by the feature extractor.
type Type string

const (
	TypeCompliment Type = "compliment"
	TypeLogistics  Type = "logistics"
	TypeOther      Type = "other"
)

// Message is a single normalized message plus its derived attributes.
type Message struct {
	Timestamp time.Time
	Text      string
	Sender    Sender

	// Derived by feature.Extractor.Annotate. Pure functions of Text:
	// no derived field depends on the message's position in the series.
	WordCount  int
	Sentiment  float64
	Emojis     []string
	EmojiCount int
	Type       Type
}

// Series is an ordered message sequence, ascending by timestamp. Equal
// timestamps keep their original fetch order (the normalizer sorts stably).
type Series []Message

// Start returns the timestamp of the first message.
func (s Series) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Timestamp
}

// End returns the timestamp of the last message.
func (s Series) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Timestamp
}

// BySender returns the subsequence from one sender, preserving order.
func (s Series) BySender(who Sender) Series {
	out := make(Series, 0, len(s)/2)
	for _, m := range s {
		if m.Sender == who {
			out = append(out, m)
		}
	}
	return out
}
