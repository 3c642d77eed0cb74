// Package segment splits free text into sentence-like units for the
// semantic-diff step.
package segment

import "strings"

// DefaultMinFragment is the length below which a fragment is merged into the
// preceding sentence. A tuning constant, not an invariant.
const DefaultMinFragment = 30

// Sentences splits text into sentence-like units. Splitting is terminator
// based (., !, ? followed by a space); whitespace is normalized first so
// line wrapping does not produce spurious fragments. Fragments shorter than
// minFragment are merged into the previous sentence.
func Sentences(text string, minFragment int) []string {
	if minFragment <= 0 {
		minFragment = DefaultMinFragment
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var raw []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			raw = append(raw, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		raw = append(raw, s)
	}

	var sentences []string
	for _, s := range raw {
		if len(s) < minFragment && len(sentences) > 0 {
			sentences[len(sentences)-1] += " " + s
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}
