package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableIsSorted(t *testing.T) {
	for i := range table {
		require.LessOrEqual(t, table[i].lo, table[i].hi, "span %d", i)
		if i > 0 {
			require.Less(t, table[i-1].hi, table[i].lo, "span %d overlaps previous", i)
		}
	}
}

func TestIs(t *testing.T) {
	for _, r := range []rune{'😀', '😂', '❤', '👍', '🔥', '🏻', '🇺', '©', '⭐', '🫠'} {
		assert.True(t, Is(r), "%U", r)
	}
	for _, r := range []rune{'a', '1', '#', '*', ' ', 'Ж', '中', 0x200D, 0xFE0F, 0x1F000} {
		assert.False(t, Is(r), "%U", r)
	}
}

func TestExtract(t *testing.T) {
	assert.Equal(t, []string{"😂", "😂", "👍"}, Extract("ha 😂😂 ok 👍"))
	assert.Empty(t, Extract("plain text"))
}
