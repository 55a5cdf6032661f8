package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultBannedWords is the word list comments are censored against.
var DefaultBannedWords = []string{
	"ass", "asshole", "bastard", "bitch", "bollocks", "bugger", "cunt",
	"damn", "dick", "douche", "fuck", "fucker", "fucking", "jerk",
	"motherfucker", "nigga", "nigger", "prick", "piss", "shit", "shitty",
	"slut", "twat", "whore", "wanker",
}

// ProfanityFilter masks banned words in user text. Matching is whole-word and
// case-insensitive, so "class" and "Scunthorpe" pass untouched.
type ProfanityFilter struct {
	re *regexp.Regexp
}

// NewProfanityFilter compiles words into a filter. With no words it falls
// back to DefaultBannedWords.
func NewProfanityFilter(words ...string) *ProfanityFilter {
	if len(words) == 0 {
		words = DefaultBannedWords
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	// Longest first so "motherfucker" wins over "fuck" inside the alternation.
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return &ProfanityFilter{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// Contains reports whether text holds a banned word.
func (f *ProfanityFilter) Contains(text string) bool {
	return f.re.MatchString(text)
}

// Censor replaces every banned word with one asterisk per character.
func (f *ProfanityFilter) Censor(text string) string {
	return f.re.ReplaceAllStringFunc(text, func(word string) string {
		return strings.Repeat("*", utf8.RuneCountInString(word))
	})
}
