package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusAlive   = "Alive"
	StatusDead    = "Dead"
	StatusUnknown = "unknown"

	GenderFemale     = "Female"
	GenderMale       = "Male"
	GenderGenderless = "Genderless"
	GenderUnknown    = "unknown"
)

// CharacterRecord is the flat row persisted in the characters table.
type CharacterRecord struct {
	ID           uint                        `gorm:"primaryKey;autoIncrement"`
	Name         string                      `gorm:"size:100;not null"`
	Status       string                      `gorm:"size:16;not null"`
	Species      string                      `gorm:"size:50;not null"`
	Type         string                      `gorm:"size:50;not null"`
	Gender       string                      `gorm:"size:16;not null"`
	OriginName   string                      `gorm:"size:100;not null"`
	OriginURL    string                      `gorm:"type:text;not null"`
	LocationName string                      `gorm:"size:100;not null"`
	LocationURL  string                      `gorm:"type:text;not null"`
	Image        string                      `gorm:"type:text;not null"`
	EpisodeURLs  datatypes.JSONSlice[string] `gorm:"column:episode_urls;not null"`
	URL          string                      `gorm:"type:text;not null"`
	Created      time.Time                   `gorm:"column:created;not null;index:idx_characters_created"`
}

func (CharacterRecord) TableName() string {
	return "characters"
}

// Place is the nested origin/location shape exposed over the API.
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is the API representation of a stored record.
type Character struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   string    `json:"gender"`
	Origin   Place     `json:"origin"`
	Location Place     `json:"location"`
	Image    string    `json:"image"`
	Episode  []string  `json:"episode"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
}

// ToAPI expands the flat row into the nested API shape.
func (r *CharacterRecord) ToAPI() Character {
	episodes := make([]string, len(r.EpisodeURLs))
	copy(episodes, r.EpisodeURLs)
	return Character{
		ID:       int64(r.ID),
		Name:     r.Name,
		Status:   r.Status,
		Species:  r.Species,
		Type:     r.Type,
		Gender:   r.Gender,
		Origin:   Place{Name: r.OriginName, URL: r.OriginURL},
		Location: Place{Name: r.LocationName, URL: r.LocationURL},
		Image:    r.Image,
		Episode:  episodes,
		URL:      r.URL,
		Created:  r.Created,
	}
}

// PlaceInput is the inbound origin/location shape. URL may be omitted.
type PlaceInput struct {
	Name string `json:"name" validate:"required,max=100"`
	URL  string `json:"url,omitempty" validate:"omitempty,http_or_https"`
}

// CreateCharacterRequest is the inbound payload for creating a character.
type CreateCharacterRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Status   string      `json:"status" validate:"required,oneof=Alive Dead unknown"`
	Species  string      `json:"species" validate:"required,max=50"`
	Type     string      `json:"type,omitempty" validate:"max=50"`
	Gender   string      `json:"gender" validate:"required,oneof=Female Male Genderless unknown"`
	Origin   *PlaceInput `json:"origin" validate:"required"`
	Location *PlaceInput `json:"location" validate:"required"`
	Image    string      `json:"image" validate:"required,http_or_https"`
	Episode  []string    `json:"episode,omitempty" validate:"omitempty,dive,http_or_https"`
}

// ToRecord flattens the request into a row. ID, URL and Created are assigned by the store.
func (r *CreateCharacterRequest) ToRecord() *CharacterRecord {
	rec := &CharacterRecord{
		Name:        r.Name,
		Status:      r.Status,
		Species:     r.Species,
		Type:        r.Type,
		Gender:      r.Gender,
		Image:       r.Image,
		EpisodeURLs: datatypes.JSONSlice[string]{},
	}
	if r.Origin != nil {
		rec.OriginName = r.Origin.Name
		rec.OriginURL = r.Origin.URL
	}
	if r.Location != nil {
		rec.LocationName = r.Location.Name
		rec.LocationURL = r.Location.URL
	}
	if len(r.Episode) > 0 {
		rec.EpisodeURLs = append(rec.EpisodeURLs, r.Episode...)
	}
	return rec
}
