// Package textnorm normalizes free text for accent-insensitive keyword matching.
package textnorm

import "strings"

var accents = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c",
)

// Normalize lower-cases s, folds the accented letters above to ASCII and
// collapses runs of whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(accents.Replace(strings.ToLower(s))), " ")
}

// ContainsAny reports whether normalized text contains any of the keywords.
// Keywords must already be normalized.
func ContainsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAnyWord is ContainsAny restricted to keywords that start a word, so
// "edit" does not match inside "credit".
func ContainsAnyWord(text string, keywords ...string) bool {
	for _, kw := range keywords {
		for from := 0; from < len(text); {
			i := strings.Index(text[from:], kw)
			if i < 0 {
				break
			}
			i += from
			if i == 0 || !isWordByte(text[i-1]) {
				return true
			}
			from = i + 1
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
