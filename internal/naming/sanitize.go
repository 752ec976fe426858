package naming

import "strings"

// Disallowed lists the characters removed by Sanitize: everything that is
// illegal in a Windows filename plus the backtick.
const Disallowed = "`/<>:\"\\|?*"

// placeholder is what the host's settings layer hands back for "no value".
const placeholder = "_"

// Sanitize removes every character in [Disallowed] and every invalid UTF-8
// byte from s. A result equal to the placeholder "_" is treated as empty.
// The result is never longer than s, and Sanitize(Sanitize(s)) ==
// Sanitize(s).
func Sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	var b strings.Builder
	b.Grow(len(s))
	// Every disallowed character is ASCII, so bytes of multi-byte runes
	// never match.
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Disallowed, s[i]) < 0 {
			b.WriteByte(s[i])
		}
	}
	if out := b.String(); out != placeholder {
		return out
	}
	return ""
}
