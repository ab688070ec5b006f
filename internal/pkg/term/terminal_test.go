package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidth(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	fd := int(f.Fd())

	t.Run("Файл не является терминалом", func(t *testing.T) {
		t.Setenv("COLUMNS", "")
		assert.False(t, IsTerminal(f))
		assert.Equal(t, 120, Width(fd, 120))
	})

	t.Run("COLUMNS имеет приоритет", func(t *testing.T) {
		t.Setenv("COLUMNS", "150")
		assert.Equal(t, 150, Width(fd, 120))
	})

	t.Run("Слишком узкая ширина ограничивается снизу", func(t *testing.T) {
		t.Setenv("COLUMNS", "10")
		assert.Equal(t, minWidth, Width(fd, 120))
	})

	t.Run("Некорректное значение COLUMNS игнорируется", func(t *testing.T) {
		t.Setenv("COLUMNS", "wide")
		assert.Equal(t, DefaultWidth, Width(fd, DefaultWidth))
	})
}
