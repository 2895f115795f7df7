package domain

import "context"

// Collector выгружает сообщения каналов-источников за окно выборки.
// Ошибки отдельных источников не прерывают сбор: такой источник даёт
// пустой список сообщений и имя-заглушку.
type Collector interface {
	Collect(ctx context.Context, sources []Source, window Window) (Transcript, error)
}

// Summarizer строит сводку по переписке. Ошибка генерации не прерывает
// конвейер: вместо сводки возвращается текст с описанием ошибки.
type Summarizer interface {
	Summarize(ctx context.Context, conversation string) string
}

// Splitter нарезает текст на фрагменты, пригодные для отправки транспортом.
type Splitter interface {
	Split(text string) []string
}

// Transport доставляет один фрагмент дайджеста в выходной канал.
type Transport interface {
	Name() string
	Send(ctx context.Context, fragment string) error
}

// SessionTransport — транспорт с жизненным циклом соединения:
// Open устанавливает сессию и дожидается готовности, Close завершает её.
type SessionTransport interface {
	Transport
	Open(ctx context.Context) error
	Close() error
}
