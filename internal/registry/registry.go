// Package registry resolves profile names to converters. Converters come from
// the built-in dictionaries, from profiles discovered in a directory, or from
// the compiled dictionary store ("store:<name>"). A registered converter is
// never mutated; reloading swaps in a freshly built one.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/dict"
	"github.com/palemoky/zhconv/internal/dicts"
	"github.com/palemoky/zhconv/internal/loader"
	"github.com/palemoky/zhconv/internal/logger"
)

// StorePrefix selects a dictionary from the compiled store.
const StorePrefix = "store:"

// ErrUnknownProfile is returned by Get for names no source provides.
var ErrUnknownProfile = dicts.ErrUnknownProfile

// Store is the part of the dictionary store the registry reads.
type Store interface {
	BuildIndex(name string) (*dict.Index, error)
	ListDictionaries() ([]*database.Dictionary, error)
}

// Registry maps profile names to converters. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	convs    map[string]*converter.Converter
	profiles map[string]string // key -> profile file, for directory profiles

	store       Store
	defaultName string
	log         *zap.Logger
}

// New creates a registry. store may be nil.
func New(defaultName string, store Store) *Registry {
	if defaultName == "" {
		defaultName = dicts.ProfileS2T
	}
	return &Registry{
		convs:       make(map[string]*converter.Converter),
		profiles:    make(map[string]string),
		store:       store,
		defaultName: defaultName,
		log:         logger.Named("registry"),
	}
}

// DefaultName returns the profile used for empty names.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Default returns the default converter.
func (r *Registry) Default() (*converter.Converter, error) {
	return r.Get(r.defaultName)
}

// Get returns the converter for name, building it on first use. An empty name
// selects the default profile.
func (r *Registry) Get(name string) (*converter.Converter, error) {
	if name == "" {
		name = r.defaultName
	}

	r.mu.RLock()
	conv, ok := r.convs[name]
	r.mu.RUnlock()
	if ok {
		return conv, nil
	}

	conv, err := r.resolve(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.convs[name]; ok {
		return existing, nil
	}
	r.convs[name] = conv

	return conv, nil
}

func (r *Registry) resolve(name string) (*converter.Converter, error) {
	if dictName, ok := strings.CutPrefix(name, StorePrefix); ok {
		return r.fromStore(dictName)
	}
	return dicts.Get(name)
}

func (r *Registry) fromStore(name string) (*converter.Converter, error) {
	if r.store == nil {
		return nil, fmt.Errorf("%w: %s%s (no store configured)", ErrUnknownProfile, StorePrefix, name)
	}
	idx, err := r.store.BuildIndex(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s%s: %v", ErrUnknownProfile, StorePrefix, name, err)
	}
	return converter.New(idx).WithName(StorePrefix + name), nil
}

// Register installs conv under name, replacing any previous converter.
func (r *Registry) Register(name string, conv *converter.Converter) {
	r.mu.Lock()
	r.convs[name] = conv
	r.mu.Unlock()
}

// LoadDir builds every *.json profile in dir and registers it under its file
// stem. Directory profiles shadow built-ins of the same name. Nothing is
// registered when any profile fails to build.
func (r *Registry) LoadDir(dir string) (int, error) {
	profiles, err := loader.DiscoverProfiles(dir)
	if err != nil {
		return 0, err
	}

	built := make(map[string]*converter.Converter, len(profiles))
	for key, p := range profiles {
		conv, err := p.BuildFromDir()
		if err != nil {
			return 0, fmt.Errorf("failed to build profile %s: %w", key, err)
		}
		built[key] = conv
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, conv := range built {
		r.convs[key] = conv
		r.profiles[key] = profiles[key].File
		r.log.Info("Profile loaded",
			zap.String("profile", key),
			zap.String("dir", dir),
			zap.Int("stages", conv.Stages()),
		)
	}

	return len(built), nil
}

// Reload rebuilds name from its source. The previous converter stays in place
// when the rebuild fails. Built-in profiles are immutable and reload as a
// no-op.
func (r *Registry) Reload(name string) error {
	var (
		conv *converter.Converter
		err  error
	)

	r.mu.RLock()
	profilePath, fromDir := r.profiles[name]
	r.mu.RUnlock()

	switch {
	case fromDir:
		conv, err = reloadProfile(profilePath)
	case strings.HasPrefix(name, StorePrefix):
		if inv, ok := r.store.(interface{ Invalidate(string) }); ok {
			inv.Invalidate(strings.TrimPrefix(name, StorePrefix))
		}
		conv, err = r.fromStore(strings.TrimPrefix(name, StorePrefix))
	default:
		if _, err := dicts.Get(name); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", name, err)
	}

	r.Register(name, conv)
	r.log.Info("Profile reloaded", zap.String("profile", name))

	return nil
}

func reloadProfile(profilePath string) (*converter.Converter, error) {
	p, err := loader.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	return p.BuildFromDir()
}

// Names lists every resolvable profile name, sorted. Stored dictionaries are
// listed with the store prefix.
func (r *Registry) Names() []string {
	seen := make(map[string]struct{})
	for _, name := range dicts.Names() {
		seen[name] = struct{}{}
	}

	r.mu.RLock()
	for name := range r.convs {
		seen[name] = struct{}{}
	}
	r.mu.RUnlock()

	if r.store != nil {
		stored, err := r.store.ListDictionaries()
		if err != nil {
			r.log.Warn("Failed to list stored dictionaries", zap.Error(err))
		}
		for _, d := range stored {
			seen[StorePrefix+d.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Watched returns, for each directory profile, the files it was built from:
// the profile file followed by its dictionaries.
func (r *Registry) Watched() map[string][]string {
	r.mu.RLock()
	paths := make(map[string]string, len(r.profiles))
	for key, p := range r.profiles {
		paths[key] = p
	}
	r.mu.RUnlock()

	watched := make(map[string][]string, len(paths))
	for key, profilePath := range paths {
		files := []string{profilePath}
		if p, err := loader.LoadProfile(profilePath); err == nil {
			files = append(files, p.Files()...)
		}
		watched[key] = files
	}

	return watched
}
