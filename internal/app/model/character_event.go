package model

import "time"

// CharacterCreatedEvent is published after a character has been committed.
type CharacterCreatedEvent struct {
	ID          string    `json:"id"`
	CharacterID int64     `json:"character_id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	CharacterStreamName     = "CHARACTERS"
	CharacterCreatedSubject = "characters.created"
	CharacterStreamMaxBytes = 1024 * 1024 * 64 // 64MB
)
