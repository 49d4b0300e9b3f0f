package knowledge

import (
	"regexp"
	"strings"
)

// nonToken matches any character that cannot appear in a skill token.
// Letters are matched after lower-casing; "+", "#", "." and "-" survive so
// tokens like "c++", "c#", "node.js" and "scikit-learn" stay intact.
var nonToken = regexp.MustCompile(`[^a-z0-9\s+#.\-]`)

// stopWords are articles, conjunctions, and generic project/build/use
// vocabulary that carry no skill signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "are": {}, "was": {}, "were": {}, "will": {}, "can": {},
	"has": {}, "have": {}, "had": {}, "not": {}, "but": {}, "all": {},
	"any": {}, "its": {}, "you": {}, "your": {}, "our": {}, "out": {},
	"get": {}, "got": {}, "into": {}, "also": {}, "more": {}, "some": {},
	"just": {}, "like": {}, "use": {}, "used": {}, "uses": {}, "using": {},
	"project": {}, "projects": {}, "repo": {}, "repos": {}, "repository": {},
	"code": {}, "build": {}, "built": {}, "building": {}, "based": {},
	"simple": {}, "app": {}, "apps": {}, "application": {}, "web": {},
	"tool": {}, "tools": {}, "make": {}, "makes": {}, "made": {},
	"work": {}, "works": {}, "file": {}, "files": {}, "how": {}, "what": {},
	"about": {}, "know": {}, "does": {},
}

// Keywords extracts skill tokens from free text: lower-cased, stripped of
// punctuation, longer than two characters, stop-word filtered, and
// deduplicated preserving first-seen order. Running it over its own output
// is a no-op.
func Keywords(text string) []string {
	return extract(text, 3)
}

// QueryKeywords extracts keywords from a user query. It applies the same
// pipeline as Keywords but, when every token falls under the length cutoff,
// falls back to the short non-stop-word tokens so queries for one- or
// two-letter repo names are still matchable.
func QueryKeywords(text string) []string {
	if tokens := extract(text, 3); len(tokens) > 0 {
		return tokens
	}
	return extract(text, 1)
}

func extract(text string, minLen int) []string {
	cleaned := nonToken.ReplaceAllString(strings.ToLower(text), " ")

	var tokens []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < minLen {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// firstN returns at most n leading elements of tokens.
func firstN(tokens []string, n int) []string {
	if len(tokens) > n {
		return tokens[:n]
	}
	return tokens
}
