package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Acme":              "acme",
		"Green Tea  500g":   "green-tea-500g",
		"Café Noir":         "cafe-noir",
		"  Leading, Tail  ": "leading-tail",
	}
	for in, want := range cases {
		got, err := Make(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestMakeTransliteratesCyrillic(t *testing.T) {
	s, err := Make("Чай Зелёный")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "chai-"), s)
	for _, r := range s {
		assert.True(t, r < 128, "non-ascii rune in %q", s)
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	a, err := Make("Same Name")
	require.NoError(t, err)
	b, err := Make("Same Name")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMakeTruncates(t *testing.T) {
	s, err := Make(strings.Repeat("word ", 60))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(s), MaxLength)
	assert.False(t, strings.HasSuffix(s, "-"))
}

func TestMakeRejectsSymbolsOnly(t *testing.T) {
	_, err := Make("!!!")
	assert.ErrorIs(t, err, ErrEmpty)
}
