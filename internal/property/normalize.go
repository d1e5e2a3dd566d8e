package property

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for lenient field lookup. Case is
// ignored and the separators '_', '-' and ' ' are dropped, so user_name,
// user-name and UserName all normalize to "username".
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '_', '-', ' ':
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
