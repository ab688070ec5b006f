// Package term определяет параметры терминала, в который пишет CLI.
package term

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// DefaultWidth используется, когда вывод перенаправлен в файл или канал.
const DefaultWidth = 100

// minWidth - ширина, меньше которой таблицы не сжимаются.
const minWidth = 40

// Width возвращает ширину терминала для дескриптора fd.
// Переменная COLUMNS имеет приоритет; для не-терминала возвращается fallback.
func Width(fd int, fallback int) int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return clamp(cols)
	}
	if !term.IsTerminal(fd) {
		return clamp(fallback)
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return clamp(fallback)
	}
	return clamp(w)
}

// StdoutWidth возвращает ширину терминала стандартного вывода.
func StdoutWidth() int {
	return Width(int(os.Stdout.Fd()), DefaultWidth)
}

// IsTerminal сообщает, подключен ли файл к терминалу.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func clamp(w int) int {
	if w < minWidth {
		return minWidth
	}
	return w
}
