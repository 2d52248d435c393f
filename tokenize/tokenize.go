// Package tokenize splits text into ordered, lowercased token sequences.
//
// Two modes are supported: Simple, which splits on whitespace and
// punctuation, and Code, which additionally splits identifiers on
// case/underscore/hyphen boundaries and drops a fixed stop list of
// function words and generic programming keywords.
package tokenize

import (
	"strings"
	"unicode"
)

// Mode selects the tokenizer's splitting strategy.
type Mode string

const (
	// Simple lowercases and splits on Unicode whitespace/punctuation.
	Simple Mode = "simple"

	// Code additionally splits identifiers on camelCase, snake_case,
	// kebab-case and acronym boundaries, and drops a frozen stop list.
	Code Mode = "code"
)

// codeDelimiters are the punctuation runes that always terminate a
// segment in Code mode, on top of Unicode whitespace.
const codeDelimiters = ",;:{}()[]<>'\"=+-*/\\|&^%$#@!~`"

// stopWords is the frozen Code-mode stop list. It is part of the
// tokenizer's contract and must never be made configurable: doing so
// would break vocabulary portability across runs and callers.
var stopWords = map[string]struct{}{
	"var": {}, "let": {}, "const": {}, "this": {}, "that": {}, "new": {},
	"null": {}, "true": {}, "false": {}, "the": {}, "is": {}, "at": {},
	"of": {}, "on": {}, "and": {}, "or": {}, "to": {}, "in": {}, "it": {},
	"for": {}, "as": {}, "be": {}, "by": {}, "an": {}, "if": {}, "do": {},
	"no": {}, "so": {},
}

// Tokenize splits text into an ordered sequence of lowercased tokens
// according to mode. The result is deterministic for a given input.
func Tokenize(text string, mode Mode) []string {
	if mode == Code {
		return tokenizeCode(text)
	}
	return tokenizeSimple(text)
}

// tokenizeSimple lowercases text, splits on Unicode whitespace or
// punctuation, and drops tokens of length <= 1.
func tokenizeSimple(text string) []string {
	tokens := make([]string, 0, len(text)/6+1)
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		if len([]rune(tok)) > 1 {
			tokens = append(tokens, tok)
		}
		cur.Reset()
	}

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			flush()
			continue
		}
		cur.WriteRune(unicode.ToLower(r))
	}
	flush()

	return tokens
}

// tokenizeCode implements the Code mode pipeline of §4.1: delimiter
// split, camelCase/snake-kebab/acronym split, lowercase, stop-word and
// single-character filtering.
func tokenizeCode(text string) []string {
	tokens := make([]string, 0, len(text)/4+1)

	for _, segment := range splitOnDelimiters(text) {
		for _, word := range splitIdentifier(segment) {
			lw := strings.ToLower(word)
			if len([]rune(lw)) <= 1 {
				continue
			}
			if _, stop := stopWords[lw]; stop {
				continue
			}
			tokens = append(tokens, lw)
		}
	}

	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// splitOnDelimiters splits text into non-empty segments on Unicode
// whitespace or the fixed punctuation delimiter class of §4.1 step 1.
func splitOnDelimiters(text string) []string {
	isDelim := func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(codeDelimiters, r)
	}

	var segments []string
	var cur strings.Builder
	for _, r := range text {
		if isDelim(r) {
			if cur.Len() > 0 {
				segments = append(segments, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// splitIdentifier applies the snake/kebab split followed by the
// combined camelCase/acronym boundary scan (§4.1 step 2) to a single
// delimiter-free segment, returning its constituent words unlowered.
func splitIdentifier(segment string) []string {
	var words []string

	// snake/kebab split: runs of '_' or '-' become word boundaries.
	for _, part := range splitRunes(segment, '_', '-') {
		words = append(words, camelAcronymSplit(part)...)
	}
	return words
}

// splitRunes splits s on any of the given separator runes, dropping
// empty parts, without collapsing the rest of the string.
func splitRunes(s string, seps ...rune) []string {
	isSep := func(r rune) bool {
		for _, sep := range seps {
			if r == sep {
				return true
			}
		}
		return false
	}

	var parts []string
	var cur strings.Builder
	for _, r := range s {
		if isSep(r) {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// camelAcronymSplit inserts word boundaries per §4.1's camelCase and
// acronym rules in a single left-to-right scan:
//
//   - a lowercase letter immediately followed by an uppercase letter
//     starts a new word (getUserId -> get User Id);
//   - a run of uppercase letters immediately followed by an uppercase
//     letter that itself precedes a lowercase letter ends the run one
//     letter early, so the trailing letter starts the next word
//     (XMLParser -> XML Parser).
func camelAcronymSplit(word string) []string {
	runes := []rune(word)
	if len(runes) == 0 {
		return nil
	}

	var words []string
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		boundary := false

		if unicode.IsLower(runes[i]) && unicode.IsUpper(runes[i+1]) {
			boundary = true
		} else if unicode.IsUpper(runes[i]) && unicode.IsUpper(runes[i+1]) &&
			i+2 < len(runes) && unicode.IsLower(runes[i+2]) {
			boundary = true
		}

		if boundary {
			words = append(words, string(runes[start:i+1]))
			start = i + 1
		}
	}
	words = append(words, string(runes[start:]))

	return words
}
