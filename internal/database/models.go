package database

import (
	"time"

	"gorm.io/datatypes"
)

// Dictionary is a compiled dictionary
type Dictionary struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex"     json:"name"`
	Description  string    `                                json:"description,omitempty"`
	Source       string    `                                json:"source,omitempty"`
	EntryCount   int       `                                json:"entry_count"`
	MaxPhraseLen int       `                                json:"max_phrase_len"`
	CreatedAt    time.Time `                                json:"created_at"`
	UpdatedAt    time.Time `                                json:"updated_at"`
}

// Entry is one rule of a stored dictionary. Position keeps the input order so
// that duplicate sources resolve the same way after a reload.
type Entry struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"                   json:"-"`
	DictionaryID int64          `gorm:"not null;index:idx_entries_dict_pos,priority:1" json:"-"`
	Position     int            `gorm:"not null;index:idx_entries_dict_pos,priority:2" json:"position"`
	Source       string         `gorm:"not null;index"                             json:"source"`
	Target       string         `gorm:"not null"                                   json:"target"`
	Alternatives datatypes.JSON `                                                  json:"alternatives,omitempty"`
}

// Metadata holds store level key/value pairs
type Metadata struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName overrides the gorm default
func (Metadata) TableName() string { return "metadata" }

// Statistics summarizes the store
type Statistics struct {
	TotalDictionaries int           `json:"total_dictionaries"`
	TotalEntries      int           `json:"total_entries"`
	Dictionaries      []*Dictionary `json:"dictionaries"`
}
