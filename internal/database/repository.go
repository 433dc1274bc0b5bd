package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/palemoky/zhconv/internal/dict"
	"github.com/palemoky/zhconv/internal/loader"
)

// ErrDictionaryNotFound is returned when no dictionary has the given name.
var ErrDictionaryNotFound = errors.New("dictionary not found")

// RepositoryInterface defines the interface for repository operations
type RepositoryInterface interface {
	SaveDictionary(name, description, source string, rules []loader.Rule, batchSize int) (*Dictionary, error)
	GetDictionary(name string) (*Dictionary, error)
	ListDictionaries() ([]*Dictionary, error)
	LoadEntries(name string) ([]dict.Entry, error)
	LoadRules(name string) ([]loader.Rule, error)
	BuildIndex(name string) (*dict.Index, error)
	DeleteDictionary(name string) error
	GetStatistics() (*Statistics, error)
}

var (
	_ RepositoryInterface = (*Repository)(nil)
	_ RepositoryInterface = (*CachedRepository)(nil)
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveDictionary stores rules under name, replacing any dictionary with the
// same name, in a single transaction.
func (r *Repository) SaveDictionary(name, description, source string, rules []loader.Rule, batchSize int) (*Dictionary, error) {
	if name == "" {
		return nil, fmt.Errorf("dictionary name cannot be empty")
	}
	if batchSize <= 0 {
		batchSize = 1000 // Default batch size
	}

	d := &Dictionary{
		Name:        name,
		Description: description,
		Source:      source,
	}

	entries := make([]*Entry, 0, len(rules))
	for i, rule := range rules {
		e := rule.Entry()
		entry := &Entry{
			Position: i,
			Source:   e.Source,
			Target:   e.Target,
		}
		if len(rule.Targets) > 1 {
			alts, err := json.Marshal(rule.Targets[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to marshal alternatives: %w", err)
			}
			entry.Alternatives = datatypes.JSON(alts)
		}
		if n := utf8.RuneCountInString(e.Source); n > d.MaxPhraseLen {
			d.MaxPhraseLen = n
		}
		entries = append(entries, entry)
	}
	d.EntryCount = len(entries)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteByName(tx, name); err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("failed to create dictionary: %w", err)
		}

		for _, e := range entries {
			e.DictionaryID = d.ID
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert entries: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func deleteByName(tx *gorm.DB, name string) error {
	var existing Dictionary
	err := tx.Where("name = ?", name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := tx.Where("dictionary_id = ?", existing.ID).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if err := tx.Delete(&existing).Error; err != nil {
		return fmt.Errorf("failed to delete dictionary: %w", err)
	}
	return nil
}

// GetDictionary returns the dictionary metadata for name.
func (r *Repository) GetDictionary(name string) (*Dictionary, error) {
	var d Dictionary
	err := r.db.Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDictionaries returns every stored dictionary ordered by name.
func (r *Repository) ListDictionaries() ([]*Dictionary, error) {
	var dicts []*Dictionary
	if err := r.db.Order("name").Find(&dicts).Error; err != nil {
		return nil, err
	}
	return dicts, nil
}

func (r *Repository) entries(name string) ([]Entry, error) {
	d, err := r.GetDictionary(name)
	if err != nil {
		return nil, err
	}

	var rows []Entry
	err = r.db.Where("dictionary_id = ?", d.ID).Order("position").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadEntries returns the conversion entries of name in stored order.
func (r *Repository) LoadEntries(name string) ([]dict.Entry, error) {
	rows, err := r.entries(name)
	if err != nil {
		return nil, err
	}

	entries := make([]dict.Entry, len(rows))
	for i, row := range rows {
		entries[i] = dict.Entry{Source: row.Source, Target: row.Target}
	}
	return entries, nil
}

// LoadRules returns the rules of name including alternatives.
func (r *Repository) LoadRules(name string) ([]loader.Rule, error) {
	rows, err := r.entries(name)
	if err != nil {
		return nil, err
	}

	rules := make([]loader.Rule, len(rows))
	for i, row := range rows {
		targets := []string{row.Target}
		if len(row.Alternatives) > 0 {
			var alts []string
			if err := json.Unmarshal(row.Alternatives, &alts); err != nil {
				return nil, fmt.Errorf("entry %d: failed to parse alternatives: %w", row.Position, err)
			}
			targets = append(targets, alts...)
		}
		rules[i] = loader.Rule{Source: row.Source, Targets: targets}
	}
	return rules, nil
}

// BuildIndex loads name and builds its dictionary index.
func (r *Repository) BuildIndex(name string) (*dict.Index, error) {
	entries, err := r.LoadEntries(name)
	if err != nil {
		return nil, err
	}
	return dict.Build(entries), nil
}

// DeleteDictionary removes name and its entries.
func (r *Repository) DeleteDictionary(name string) error {
	if _, err := r.GetDictionary(name); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteByName(tx, name)
	})
}

// GetStatistics returns overall statistics
func (r *Repository) GetStatistics() (*Statistics, error) {
	dicts, err := r.ListDictionaries()
	if err != nil {
		return nil, err
	}

	var count int64
	if err := r.db.Model(&Entry{}).Count(&count).Error; err != nil {
		return nil, err
	}

	return &Statistics{
		TotalDictionaries: len(dicts),
		TotalEntries:      int(count),
		Dictionaries:      dicts,
	}, nil
}
