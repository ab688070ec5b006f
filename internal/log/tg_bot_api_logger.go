package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter направляет вывод библиотеки go-telegram-bot-api/v5 в slog.
// Библиотека пишет в лог URL запросов, где встречается токен, поэтому Logger
// должен быть создан через New или NewMaskedLogger.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
	// Level - уровень сообщений библиотеки; нулевое значение соответствует info.
	Level slog.Level
}

// Println реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.log(strings.TrimSpace(fmt.Sprintln(v...)))
}

// Printf реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.log(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (a *TGBotAPIAdapter) log(msg string) {
	level := a.Level
	// Ошибки сети и API библиотека сообщает тем же методом
	if strings.Contains(strings.ToLower(msg), "error") {
		level = slog.LevelWarn
	}
	a.Logger.Log(context.Background(), level, msg)
}
