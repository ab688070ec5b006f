package source

import (
	"archive/zip"
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildZip собирает архив в памяти. Файлы добавляются в порядке сортировки имен.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestUnpack(t *testing.T) {
	t.Run("Обычный текст возвращается как есть", func(t *testing.T) {
		text, err := Unpack([]byte("[1/1/24, 10:00] Alice: hi"))

		require.NoError(t, err)
		assert.Equal(t, "[1/1/24, 10:00] Alice: hi", string(text))
	})

	t.Run("BOM удаляется", func(t *testing.T) {
		text, err := Unpack([]byte("\xef\xbb\xbf[1/1/24, 10:00] Alice: hi"))

		require.NoError(t, err)
		assert.Equal(t, "[1/1/24, 10:00] Alice: hi", string(text))
	})

	t.Run("Некорректный UTF-8 отклоняется", func(t *testing.T) {
		_, err := Unpack([]byte{'[', 0xff, 0xfe, ']'})

		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Из архива выбирается _chat.txt", func(t *testing.T) {
		archive := buildZip(t, map[string]string{
			"a_notes.txt": "not the chat",
			"_chat.txt":   "\xef\xbb\xbfthe chat",
		})

		text, err := Unpack(archive)

		require.NoError(t, err)
		assert.Equal(t, "the chat", string(text))
	})

	t.Run("Без _chat.txt выбирается первый текстовый файл", func(t *testing.T) {
		archive := buildZip(t, map[string]string{
			"00000012-PHOTO.jpg":          "binary",
			"WhatsApp Chat with Bob.txt":  "chat with bob",
			"__MACOSX/._WhatsApp Chat.txt": "resource fork",
		})

		text, err := Unpack(archive)

		require.NoError(t, err)
		assert.Equal(t, "chat with bob", string(text))
	})

	t.Run("Архив без текстового файла", func(t *testing.T) {
		archive := buildZip(t, map[string]string{"photo.jpg": "binary"})

		_, err := Unpack(archive)

		assert.ErrorIs(t, err, ErrNoChatFile)
	})

	t.Run("Поврежденный архив", func(t *testing.T) {
		_, err := Unpack([]byte("PK\x03\x04garbage"))

		assert.Error(t, err)
	})
}
