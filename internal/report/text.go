package report

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// toCP1252 encodes s for the PDF core fonts. Runes outside Windows-1252
// become '?'.
func toCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}
