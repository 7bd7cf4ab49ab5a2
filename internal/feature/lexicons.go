package feature

// Lexicons holds the word lists the extractor's heuristics vote over. The
// lists are owned by this immutable value rather than package-level state so
// tests can swap them out. Matching is case-insensitive substring containment.
type Lexicons struct {
	Positive  []string // sentiment fallback: positive cues
	Negative  []string // sentiment fallback: negative cues
	Sweet     []string // message type: compliment/sweet cues
	Logistics []string // message type: logistics/coordination cues
}

// DefaultLexicons returns the built-in cue lists. The emoji literals in the
// sentiment lists are matched as substrings like any other entry.
func DefaultLexicons() Lexicons {
	return Lexicons{
		Positive: []string{
			"love", "happy", "great", "amazing", "wonderful", "beautiful",
			"perfect", "excited", "good", "best", "awesome", "fantastic",
			"sweet", "cute", "adorable", "miss", "❤️", "😍", "😊", "🥰",
		},
		Negative: []string{
			"sad", "angry", "mad", "bad", "hate", "worst", "terrible",
			"awful", "sorry", "upset", "frustrated", "annoyed", "😢", "😠", "😞",
		},
		Sweet: []string{
			"love", "miss", "beautiful", "cute", "adorable", "sweet",
			"amazing", "wonderful", "perfect", "gorgeous", "handsome",
			"pretty", "❤️", "🥰", "😍", "💕", "💖",
			"thinking of you", "wish you were here", "can't wait", "excited to see",
		},
		Logistics: []string{
			"when", "where", "what time", "pick up", "drop off", "meet",
			"location", "address", "schedule", "plan", "tomorrow", "today",
			"tonight", "later", "coming", "leaving", "arrive", "be there",
			"on my way", "running late",
		},
	}
}
