package analyze

import (
	"sort"
	"strings"

	"github.com/trirpi/imessage-analysis/internal/feature"
	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// JokeCount is a recurring token and how often it appears across the whole
// history.
type JokeCount struct {
	Word  string
	Count int
}

// MonthTopics is the per-month topic hit table. Counts carries one entry per
// configured topic name plus "inside_jokes".
type MonthTopics struct {
	Month  string // YYYY-MM
	Counts map[string]int
}

// mineJokes finds candidate inside jokes: lowercase tokens at least three
// characters long, outside the stopword set, repeated at least minRepeats
// times across all messages. Sorted by count descending, then alphabetically.
func mineJokes(s msg.Series, minRepeats int, stopwords map[string]bool) []JokeCount {
	counts := make(map[string]int)
	for _, m := range s {
		for _, tok := range feature.Tokenize(m.Text) {
			counts[tok]++
		}
	}

	var jokes []JokeCount
	for word, n := range counts {
		if n < minRepeats || stopwords[word] || len(word) <= 2 {
			continue
		}
		jokes = append(jokes, JokeCount{Word: word, Count: n})
	}
	sort.Slice(jokes, func(i, j int) bool {
		if jokes[i].Count != jokes[j].Count {
			return jokes[i].Count > jokes[j].Count
		}
		return jokes[i].Word < jokes[j].Word
	})
	return jokes
}

// topicsByMonth tags each message against the fixed topic keyword lists and
// against inside jokes mined at the stricter topic threshold. A fixed topic
// counts at most once per message; the joke topic counts every distinct mined
// word the message contains.
func topicsByMonth(s msg.Series, opts Options) []MonthTopics {
	jokes := mineJokes(s, opts.TopicMinRepeats, opts.Stopwords)

	byMonth := make(map[string]map[string]int)
	for _, m := range s {
		month := series.MonthKey(m.Timestamp)
		counts := byMonth[month]
		if counts == nil {
			counts = make(map[string]int)
			byMonth[month] = counts
		}
		lower := strings.ToLower(m.Text)
		for _, topic := range opts.Topics {
			for _, kw := range topic.Keywords {
				if strings.Contains(lower, kw) {
					counts[topic.Name]++
					break
				}
			}
		}
		for _, j := range jokes {
			if strings.Contains(lower, j.Word) {
				counts["inside_jokes"]++
			}
		}
	}

	out := make([]MonthTopics, 0, len(byMonth))
	for month, counts := range byMonth {
		out = append(out, MonthTopics{Month: month, Counts: counts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func defaultTopics() []Topic {
	return []Topic{
		{Name: "travel", Keywords: []string{
			"travel", "trip", "flight", "airport", "hotel", "vacation",
			"beach", "plane", "ticket", "going", "visit",
		}},
		{Name: "work", Keywords: []string{
			"work", "office", "meeting", "project", "deadline", "boss",
			"colleague", "job", "career", "business",
		}},
		{Name: "food", Keywords: []string{
			"food", "eat", "restaurant", "dinner", "lunch", "breakfast",
			"cooking", "recipe", "hungry", "meal", "pizza", "coffee",
		}},
	}
}

func defaultStopwords() map[string]bool {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "i", "you", "he", "she", "it", "we", "they", "is",
		"are", "was", "were", "be", "been", "have", "has", "had", "do", "does",
		"did", "will", "would", "could", "should", "may", "might", "must", "can",
		"this", "that", "these", "those", "what", "when", "where", "why", "how",
		"just", "like", "get", "got", "go", "going", "come", "see", "know", "think",
		"want", "need", "make", "take", "give", "say", "tell", "ask", "let", "put",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
