package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

var neutralGray = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// Gradient renders text with a horizontal colour blend from one colour to
// another, one step per grapheme cluster.
func Gradient(text string, from, to lipgloss.Color, bold bool) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	styleFor := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(bold)
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return styleFor(from).Render(text)
	}

	var b strings.Builder
	for i, c := range Blend(len(clusters), from, to) {
		b.WriteString(styleFor(lipgloss.Color(Hex(c))).Render(clusters[i]))
	}
	return b.String()
}

// Blend returns n colours evenly spaced between from and to in HCL space.
func Blend(n int, from, to lipgloss.Color) []color.Color {
	if n <= 0 {
		return nil
	}
	c1, c2 := parse(from), parse(to)
	if n == 1 {
		return []color.Color{c1}
	}
	out := make([]color.Color, n)
	for i := range n {
		out[i] = c1.BlendHcl(c2, float64(i)/float64(n-1)).Clamped()
	}
	return out
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Hex()
	}
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// parse reads a #rrggbb colour. ANSI palette numbers fall back to gray.
func parse(c lipgloss.Color) colorful.Color {
	if s := string(c); len(s) == 7 && s[0] == '#' {
		if col, err := colorful.Hex(s); err == nil {
			return col
		}
	}
	return neutralGray
}
