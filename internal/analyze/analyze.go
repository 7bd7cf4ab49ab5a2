// Package analyze is the aggregation engine: it turns a featured, grouped
// message series into named result tables: response-time series, turn-taking
// ratios, rolling sentiment, topic and emoji statistics, milestones, and
// activity heatmaps.
//
// The engine is batch and synchronous: it consumes a fully materialized
// series, performs no I/O, and returns a new immutable Result. A sub-metric
// with no qualifying data yields an empty table, never an error; the only
// error condition is an empty input series.
package analyze

import (
	"time"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// Options tunes the aggregation engine. Zero values take defaults.
type Options struct {
	ResponseWindow   time.Duration // max reply latency counted as a response
	DoubleTextWindow time.Duration // same-sender gap counted as a double text
	ThreadGap        time.Duration // silence starting a new thread
	JokeMinRepeats   int           // inside-joke mining threshold
	TopicMinRepeats  int           // lower-noise threshold for the topic table

	Stopwords  map[string]bool
	Topics     []Topic
	Milestones []MilestoneCues
}

// Topic is a named fixed keyword list for topic tagging.
type Topic struct {
	Name     string
	Keywords []string
}

// MilestoneCues names a first-appearance milestone and its cue phrases.
// EmojiCues are additionally matched against each message's emoji set.
type MilestoneCues struct {
	Name      string
	Cues      []string
	EmojiCues bool
}

// DefaultOptions returns the built-in tuning and lexicons.
func DefaultOptions() Options {
	return Options{
		ResponseWindow:   series.DefaultResponseWindow,
		DoubleTextWindow: 5 * time.Minute,
		ThreadGap:        series.DefaultThreadGap,
		JokeMinRepeats:   3,
		TopicMinRepeats:  5,
		Stopwords:        defaultStopwords(),
		Topics:           defaultTopics(),
		Milestones:       defaultMilestones(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ResponseWindow <= 0 {
		o.ResponseWindow = d.ResponseWindow
	}
	if o.DoubleTextWindow <= 0 {
		o.DoubleTextWindow = d.DoubleTextWindow
	}
	if o.ThreadGap <= 0 {
		o.ThreadGap = d.ThreadGap
	}
	if o.JokeMinRepeats <= 0 {
		o.JokeMinRepeats = d.JokeMinRepeats
	}
	if o.TopicMinRepeats <= 0 {
		o.TopicMinRepeats = d.TopicMinRepeats
	}
	if o.Stopwords == nil {
		o.Stopwords = d.Stopwords
	}
	if o.Topics == nil {
		o.Topics = d.Topics
	}
	if o.Milestones == nil {
		o.Milestones = d.Milestones
	}
	return o
}

// Result is the full set of aggregate tables. Every field is an ordered plain
// collection, consumable by a renderer without further computation.
type Result struct {
	Totals Totals

	ResponseAll  []MonthlyMedian // all responders
	ResponseSelf []MonthlyMedian // only self responding to them

	WeeklyRatios []WeeklyRatio
	DoubleTexts  map[msg.Sender]int
	Enders       map[msg.Sender]int

	WeeklySentiment      []WeeklySentiment
	WeeklySentimentSelf  []WeeklySentiment
	WeeklySentimentOther []WeeklySentiment

	InsideJokes   []JokeCount
	TopicsByMonth []MonthTopics

	Emoji              EmojiStats
	EmojiTrend         EmojiTrend
	WeeklyEmojiDensity []WeekValue

	WeeklyTypeMix []WeeklyTypeMix
	Milestones    []MilestoneHit
	Heatmap       Heatmap
	Streaks       []series.DayStreak
}

// Run computes every aggregate over the series. The series must already be
// normalized (sorted, reactions removed) and annotated with derived features.
func Run(s msg.Series, opts Options) (*Result, error) {
	if len(s) == 0 {
		return nil, msg.ErrNoMessages
	}
	opts = opts.withDefaults()

	events := series.ResponseEvents(s, opts.ResponseWindow)
	runs := series.Runs(s)

	all, self := responseMedians(events)
	jokes := mineJokes(s, opts.JokeMinRepeats, opts.Stopwords)

	res := &Result{
		Totals:       totals(s),
		ResponseAll:  all,
		ResponseSelf: self,
		WeeklyRatios: weeklyRatios(s),
		DoubleTexts:  doubleTexts(s, opts.DoubleTextWindow),
		Enders:       conversationEnders(runs),

		WeeklySentiment:      weeklySentiment(s),
		WeeklySentimentSelf:  weeklySentiment(s.BySender(msg.SenderSelf)),
		WeeklySentimentOther: weeklySentiment(s.BySender(msg.SenderOther)),

		InsideJokes:   jokes,
		TopicsByMonth: topicsByMonth(s, opts),

		Emoji:              emojiStats(s),
		EmojiTrend:         emojiTrend(s, 5),
		WeeklyEmojiDensity: weeklyEmojiDensity(s),

		WeeklyTypeMix: weeklyTypeMix(s),
		Milestones:    milestones(s, opts.Milestones),
		Heatmap:       heatmap(s),
		Streaks:       series.DayStreaks(s),
	}
	return res, nil
}
