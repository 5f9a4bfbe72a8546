package extractor

import "regexp"

// Span is a raw candidate and its byte offsets in the scanned text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Matcher finds raw candidates of a single contact kind. Implementations must
// return spans in ascending Start order.
type Matcher interface {
	Match(text string) []Span
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(text string) []Span

// Match calls f(text).
func (f MatcherFunc) Match(text string) []Span {
	return f(text)
}

// RegexpMatcher returns every non-overlapping match of re.
func RegexpMatcher(re *regexp.Regexp) Matcher {
	return MatcherFunc(func(text string) []Span {
		locs := re.FindAllStringIndex(text, -1)
		spans := make([]Span, 0, len(locs))
		for _, loc := range locs {
			spans = append(spans, Span{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
		}
		return spans
	})
}

// CombineMatchers concatenates the spans of several matchers. The combined
// output is not sorted; callers that need text order sort it themselves.
func CombineMatchers(matchers ...Matcher) Matcher {
	return MatcherFunc(func(text string) []Span {
		var spans []Span
		for _, m := range matchers {
			spans = append(spans, m.Match(text)...)
		}
		return spans
	})
}
