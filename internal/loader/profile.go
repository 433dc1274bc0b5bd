package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/dict"
)

// ErrInvalidProfile is returned for structurally invalid profiles.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile describes a conversion pipeline, e.g. s2tw.json:
//
//	{
//	  "name": "Simplified Chinese to Traditional Chinese (Taiwan Standard)",
//	  "stages": [
//	    {"dicts": ["STPhrases.txt", "STCharacters.txt"]},
//	    {"dicts": ["TWVariants.txt"]}
//	  ]
//	}
type Profile struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Encoding    string  `json:"encoding,omitempty"`
	Stages      []Stage `json:"stages"`

	// File and Dir locate the profile when it was loaded from disk.
	File string `json:"-"`
	Dir  string `json:"-"`
}

// Stage lists the dictionaries merged into one pass. Later files override
// earlier ones on duplicate sources.
type Stage struct {
	Dicts []string `json:"dicts"`
}

// ParseProfile decodes a profile. fallbackName is used when the document
// carries no name.
func ParseProfile(data []byte, fallbackName string) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if p.Name == "" {
		p.Name = fallbackName
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile reads a profile file. Dictionary paths resolve against the
// directory holding the file.
func LoadProfile(profilePath string) (*Profile, error) {
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := ParseProfile(data, ProfileKey(profilePath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", profilePath, err)
	}
	p.File = profilePath
	p.Dir = filepath.Dir(profilePath)

	return p, nil
}

// LoadProfileFS reads a profile from fsys.
func LoadProfileFS(fsys fs.FS, name string) (*Profile, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := ParseProfile(data, ProfileKey(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// ProfileKey derives a registry key from a profile file name: s2t.json -> s2t.
func ProfileKey(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks the profile shape.
func (p *Profile) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidProfile)
	}
	for i, stage := range p.Stages {
		if len(stage.Dicts) == 0 {
			return fmt.Errorf("%w: stage %d lists no dictionaries", ErrInvalidProfile, i+1)
		}
		for _, name := range stage.Dicts {
			if !fs.ValidPath(path.Clean(name)) {
				return fmt.Errorf("%w: stage %d: invalid dictionary path %q", ErrInvalidProfile, i+1, name)
			}
		}
	}
	if _, err := ParseEncoding(p.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Files returns every dictionary referenced by the profile, in stage order.
// Paths are joined with Dir when the profile was loaded from disk.
func (p *Profile) Files() []string {
	var files []string
	for _, stage := range p.Stages {
		for _, name := range stage.Dicts {
			if p.Dir != "" {
				name = filepath.Join(p.Dir, filepath.FromSlash(name))
			}
			files = append(files, name)
		}
	}
	return files
}

// Build loads every stage from fsys and returns the converter.
func (p *Profile) Build(fsys fs.FS) (*converter.Converter, error) {
	enc, err := ParseEncoding(p.Encoding)
	if err != nil {
		return nil, err
	}

	indexes := make([]*dict.Index, 0, len(p.Stages))
	for i, stage := range p.Stages {
		var entries []dict.Entry
		for _, name := range stage.Dicts {
			loaded, err := LoadDictionaryFS(fsys, path.Clean(name), enc)
			if err != nil {
				return nil, fmt.Errorf("profile %s stage %d: %w", p.Name, i+1, err)
			}
			entries = append(entries, loaded...)
		}
		indexes = append(indexes, dict.Build(entries))
	}

	return converter.New(indexes...).WithName(p.Name), nil
}

// BuildFromDir builds a profile loaded with LoadProfile.
func (p *Profile) BuildFromDir() (*converter.Converter, error) {
	if p.Dir == "" {
		return nil, fmt.Errorf("profile %s was not loaded from disk", p.Name)
	}
	return p.Build(os.DirFS(p.Dir))
}

// DiscoverProfiles loads every *.json profile in dir, keyed by file stem.
func DiscoverProfiles(dir string) (map[string]*Profile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	sort.Strings(matches)

	profiles := make(map[string]*Profile, len(matches))
	for _, match := range matches {
		p, err := LoadProfile(match)
		if err != nil {
			return nil, err
		}
		profiles[ProfileKey(match)] = p
	}

	return profiles, nil
}
