package catalog

import (
	"strings"
	"unicode"
)

// Search returns the items whose name or description contains every word of
// query, in catalog order. Matching ignores case and punctuation. An empty
// query matches everything.
func (c *Catalog) Search(query string) []MenuItem {
	tokens := strings.Fields(normalize(query))
	out := []MenuItem{}
	for _, item := range c.items {
		text := normalize(item.Name + " " + item.Description)
		if containsAll(text, tokens) {
			out = append(out, item.Clone())
		}
	}
	return out
}

func containsAll(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// normalize lowercases s, turns anything that is not a letter or digit into
// a space and collapses runs of spaces.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
