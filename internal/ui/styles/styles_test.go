package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlend_Endpoints(t *testing.T) {
	colors := Blend(5, "#000000", "#ffffff")

	require.Len(t, colors, 5)
	assert.Equal(t, "#000000", Hex(colors[0]))
	assert.Equal(t, "#ffffff", Hex(colors[4]))
}

func TestBlend_Degenerate(t *testing.T) {
	assert.Nil(t, Blend(0, "#000000", "#ffffff"))
	assert.Equal(t, "#a78bfa", Hex(Blend(1, "#a78bfa", "#ffffff")[0]))
	assert.Equal(t, "#808080", Hex(Blend(1, "240", "#ffffff")[0]), "ANSI colours fall back to gray")
}

func TestGradient_KeepsText(t *testing.T) {
	out := Gradient("Me & You", T().Primary, T().Secondary, true)
	assert.Equal(t, "Me & You", ansi.Strip(out))

	assert.Empty(t, Gradient("", "#000000", "#ffffff", false))
	assert.Equal(t, "é", ansi.Strip(Gradient("é", "#000000", "#ffffff", false)))
}

func TestTheme_StylesCached(t *testing.T) {
	s1 := T().S()
	s2 := T().S()
	assert.Same(t, s1, s2)
	assert.Equal(t, lipgloss.Color("#a78bfa"), T().Primary)
}
