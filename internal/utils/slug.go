package utils

import (
	"strings"
	"unicode"
)

// MaxSlugLen bounds generated blog slugs.
const MaxSlugLen = 80

var slugFold = strings.NewReplacer(
	"'", "", "’", "",
	"&", " and ",
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
)

// Slugify lowercases input, folds common accented letters to ASCII and joins
// the remaining alphanumeric runs with single dashes. Long slugs are cut at
// the last dash before MaxSlugLen.
func Slugify(input string) string {
	s := slugFold.Replace(strings.ToLower(strings.TrimSpace(input)))

	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if len(out) > MaxSlugLen {
		out = out[:MaxSlugLen]
		if i := strings.LastIndexByte(out, '-'); i > 0 {
			out = out[:i]
		}
		out = strings.TrimRight(out, "-")
	}
	return out
}
