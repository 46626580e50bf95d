package normalize

// SubWords runs the full C7 pipeline over text — clean, whitespace
// split, optional fold, punctuation split — invoking emit for each
// resulting sub-word in order. emit returns false to request early
// stopping (spec §4.7's "early stop" budget callback); SubWords then
// halts without processing further words.
func SubWords(text []byte, opts Options, emit func(sub []byte) (keepGoing bool)) {
	cleaned := Clean(text, opts)
	for _, word := range SplitWhitespace(cleaned) {
		if opts.DoLowerCase {
			word = FoldWord(word)
		}
		for _, sub := range SplitPunctuation(word) {
			if !emit(sub) {
				return
			}
		}
	}
}
