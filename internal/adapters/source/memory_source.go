package source

import (
	"fmt"

	"whatsapp-chat-analyzer/internal/ports"
)

// MemorySource реализует интерфейс DataSource для чтения экспорта из памяти
// (например, документа, полученного ботом).
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает текст переписки. Исходный буфер не изменяется.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, fmt.Errorf("данные не установлены")
	}

	// Unpack может вернуть срез исходного буфера, поэтому копируем результат
	text, err := Unpack(s.data)
	if err != nil {
		return nil, err
	}
	dataCopy := make([]byte, len(text))
	copy(dataCopy, text)

	return dataCopy, nil
}
