package htmldoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"golang.org/x/image/colornames"
)

const (
	// Transparent is the resolved form of a fully transparent color
	Transparent = "rgba(0, 0, 0, 0)"

	// HeaderFallbackColor is used for header cells with no background
	// anywhere up to the fragment root
	HeaderFallbackColor = "rgb(233, 236, 239)"

	// DefaultTextColor is the color of text with no color declared
	DefaultTextColor = "rgb(0, 0, 0)"
)

// IsTransparent reports whether a resolved color paints nothing
func IsTransparent(c string) bool {
	c = strings.TrimSpace(strings.ToLower(c))
	return c == "" || c == "transparent" || c == Transparent
}

// NormalizeColor converts a CSS color value to the resolved form used in
// extracted cells: "rgb(r, g, b)", or "rgba(r, g, b, a)" when not opaque.
// It accepts keywords, hex notation and the rgb(), hsl() and hwb()
// functions.
func NormalizeColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	if c, ok := colornames.Map[v]; ok {
		return formatColor(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1), true
	}
	// Hex needs its '#' in CSS
	if !strings.HasPrefix(v, "#") && isHexDigits(v) {
		return "", false
	}
	c, err := csscolorparser.Parse(v)
	if err != nil {
		return "", false
	}
	return formatColor(c.R, c.G, c.B, c.A), true
}

func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !('0' <= ch && ch <= '9' || 'a' <= ch && ch <= 'f') {
			return false
		}
	}
	return true
}

// channel255 scales a 0..1 channel to 0..255
func channel255(v float64) int {
	return int(math.Round(unit(v) * 255))
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func formatColor(r, g, b, a float64) string {
	ri, gi, bi := channel255(r), channel255(g), channel255(b)
	a = unit(a)
	if a >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", ri, gi, bi)
	}
	if a <= 0 {
		// Any fully transparent color resolves the same way
		return Transparent
	}
	alpha := strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", ri, gi, bi, alpha)
}

// HexColor converts a resolved rgb()/rgba() color to six-digit uppercase hex
// without a leading '#', ignoring alpha. Transparent and unparsable colors
// return "".
func HexColor(resolved string) string {
	if IsTransparent(resolved) {
		return ""
	}
	c, err := csscolorparser.Parse(strings.ToLower(strings.TrimSpace(resolved)))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02X%02X%02X", channel255(c.R), channel255(c.G), channel255(c.B))
}
