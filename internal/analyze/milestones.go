package analyze

import (
	"strings"
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

// MilestoneHit records the first message where a milestone cue appeared.
type MilestoneHit struct {
	Name   string
	At     time.Time
	Sender msg.Sender
	Text   string
}

// milestones scans the series in order and records the first match for each
// configured milestone. Text cues match case-insensitively; emoji cues also
// match against the message's extracted emoji set, case-sensitively.
// Milestones that never appear are absent from the result, which keeps the
// configured order.
func milestones(s msg.Series, defs []MilestoneCues) []MilestoneHit {
	var hits []MilestoneHit
	for _, def := range defs {
		for _, m := range s {
			if !milestoneMatch(m, def) {
				continue
			}
			hits = append(hits, MilestoneHit{
				Name:   def.Name,
				At:     m.Timestamp,
				Sender: m.Sender,
				Text:   m.Text,
			})
			break
		}
	}
	return hits
}

func milestoneMatch(m msg.Message, def MilestoneCues) bool {
	if def.EmojiCues {
		for _, cue := range def.Cues {
			if strings.Contains(m.Text, cue) {
				return true
			}
			for _, e := range m.Emojis {
				if strings.Contains(e, cue) || strings.Contains(cue, e) {
					return true
				}
			}
		}
		return false
	}
	lower := strings.ToLower(m.Text)
	for _, cue := range def.Cues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

func defaultMilestones() []MilestoneCues {
	return []MilestoneCues{
		{Name: "love you", Cues: []string{"love you", "i love you", "love u"}},
		{Name: "heart", Cues: []string{"❤️", "💕", "💖", "💗", "💓"}, EmojiCues: true},
		{Name: "pet name", Cues: []string{"babe", "baby", "honey", "sweetie", "darling", "dear"}},
	}
}
