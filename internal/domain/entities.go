package domain

import (
	"fmt"
	"time"
)

// Source описывает канал-источник дайджеста из конфигурации.
type Source struct {
	ChannelID string
}

// UnknownName возвращает имя-заглушку для канала без метаданных.
func (s Source) UnknownName() string {
	return fmt.Sprintf("Unknown-%s", s.ChannelID)
}

// ErrorName возвращает имя-заглушку для канала, метаданные которого не удалось получить.
func (s Source) ErrorName() string {
	return fmt.Sprintf("Error-%s", s.ChannelID)
}

// Message представляет одно сообщение канала.
type Message struct {
	ID          string
	ChannelID   string
	ChannelName string
	Author      string
	Content     string
	Timestamp   time.Time
}

// Window задаёт границы выборки сообщений. Cutoff вычисляется один раз
// на запуск; сообщение попадает в окно только при Timestamp строго позже Cutoff.
type Window struct {
	Now    time.Time
	Cutoff time.Time
}

// NewWindow строит окно выборки за последние hours часов от now.
func NewWindow(now time.Time, hours int) Window {
	now = now.UTC()
	return Window{
		Now:    now,
		Cutoff: now.Add(-time.Duration(hours) * time.Hour),
	}
}

// Contains сообщает, попадает ли момент времени в окно выборки.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.Cutoff)
}

// Transcript содержит объединённую переписку всех источников за окно выборки.
// Messages отсортированы по возрастанию Timestamp, Names перечислены
// в порядке конфигурации источников.
type Transcript struct {
	Messages []Message
	Names    []string
}

// Empty сообщает, что за окно выборки не набралось ни одного сообщения с текстом.
func (t Transcript) Empty() bool {
	return len(t.Messages) == 0
}
