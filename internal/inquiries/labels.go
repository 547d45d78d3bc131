package inquiries

import "strings"

// AddLabel appends text to labels unless it is blank or already present.
// The returned bool reports whether the set changed; labels is never mutated.
func AddLabel(labels []string, text string) ([]string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return labels, false
	}
	for _, l := range labels {
		if l == text {
			return labels, false
		}
	}
	out := make([]string, 0, len(labels)+1)
	out = append(out, labels...)
	return append(out, text), true
}

// RemoveLabel drops every exact match of text.
func RemoveLabel(labels []string, text string) ([]string, bool) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != text {
			out = append(out, l)
		}
	}
	if len(out) == len(labels) {
		return labels, false
	}
	return out, true
}
