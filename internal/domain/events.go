package domain

import "time"

// TranscriptParsedEvent публикуется после успешного разбора нового транскрипта.
type TranscriptParsedEvent struct {
	Hash       string    `json:"hash"`
	Records    int       `json:"records"`
	Unresolved int       `json:"unresolved"`
	Authors    []string  `json:"authors"`
	ParsedAt   time.Time `json:"parsed_at"`
}
