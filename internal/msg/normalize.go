package msg

import (
	"database/sql"
	"regexp"
	"sort"
	"time"
)

// appleEpoch is 2001-01-01T00:00:00 UTC. iMessage stores timestamps as
// nanoseconds since this epoch.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// reactionPattern matches any non-empty run enclosed in single quotes.
// Reaction annotations quote the reacted-to message ("Loved 'see you soon'"),
// so a quoted substring is treated as a reaction marker. This intentionally
// misfires on genuine quoted speech; the false positives are accepted rather
// than corrected so results stay comparable across tooling.
var reactionPattern = regexp.MustCompile(`'.+?'`)

// Raw is one record as fetched from the message store: a nullable Apple-epoch
// timestamp in nanoseconds, nullable text, and the is_from_me flag.
type Raw struct {
	DateNS sql.NullInt64
	Text   sql.NullString
	FromMe bool
}

// Counts reports what normalization did, for observability.
type Counts struct {
	Input     int // raw records received
	Invalid   int // null timestamp or null/empty text
	Reactions int // dropped by the reaction heuristic
	Retained  int // messages in the resulting series
}

// FromAppleNS converts an Apple-epoch nanosecond timestamp to a UTC instant.
func FromAppleNS(ns int64) time.Time {
	return appleEpoch.Add(time.Duration(ns)).UTC()
}

// IsReaction reports whether text looks like a reaction annotation.
func IsReaction(text string) bool {
	return reactionPattern.MatchString(text)
}

// Normalize converts raw store records into a sorted Series. Records with a
// null timestamp or null/empty text are dropped, reaction messages are
// filtered out, and the remainder is stably sorted ascending by timestamp so
// duplicate timestamps keep fetch order.
func Normalize(raw []Raw) (Series, Counts) {
	counts := Counts{Input: len(raw)}
	series := make(Series, 0, len(raw))

	for _, r := range raw {
		if !r.DateNS.Valid || !r.Text.Valid || r.Text.String == "" {
			counts.Invalid++
			continue
		}
		if IsReaction(r.Text.String) {
			counts.Reactions++
			continue
		}
		sender := SenderOther
		if r.FromMe {
			sender = SenderSelf
		}
		series = append(series, Message{
			Timestamp: FromAppleNS(r.DateNS.Int64),
			Text:      r.Text.String,
			Sender:    sender,
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	counts.Retained = len(series)
	return series, counts
}
