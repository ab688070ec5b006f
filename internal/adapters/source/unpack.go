package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"
)

// preferredChatFile - имя файла переписки внутри архива экспорта с iOS.
const preferredChatFile = "_chat.txt"

// maxChatFileSize ограничивает размер распакованного текста.
const maxChatFileSize = 256 << 20

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

var (
	// ErrNoChatFile возвращается, если в архиве нет текстового файла переписки.
	ErrNoChatFile = errors.New("в архиве не найден файл переписки (*.txt)")
	// ErrInvalidEncoding возвращается для текста, не являющегося корректным UTF-8.
	ErrInvalidEncoding = errors.New("transcript is not valid UTF-8")
)

// Unpack превращает загруженный файл в текст переписки.
// Если данные являются zip-архивом, извлекается _chat.txt или первый *.txt файл.
// BOM в начале текста удаляется.
func Unpack(data []byte) ([]byte, error) {
	text := data
	if bytes.HasPrefix(data, zipMagic) {
		var err error
		text, err = extractChat(data)
		if err != nil {
			return nil, err
		}
	}

	text = bytes.TrimPrefix(text, utf8BOM)
	if !utf8.Valid(text) {
		return nil, ErrInvalidEncoding
	}
	return text, nil
}

func extractChat(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	var chosen *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(f.Name)
		if strings.HasPrefix(name, "._") || !strings.EqualFold(path.Ext(name), ".txt") {
			continue
		}
		if name == preferredChatFile {
			chosen = f
			break
		}
		if chosen == nil {
			chosen = f
		}
	}
	if chosen == nil {
		return nil, ErrNoChatFile
	}

	rc, err := chosen.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", chosen.Name, err)
	}
	defer rc.Close()

	text, err := io.ReadAll(io.LimitReader(rc, maxChatFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", chosen.Name, err)
	}
	if len(text) > maxChatFileSize {
		return nil, fmt.Errorf("файл %s слишком большой", chosen.Name)
	}
	return text, nil
}
