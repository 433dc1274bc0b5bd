// Package dicts provides the built-in conversion profiles. Each converter is
// built on first use and shared by every caller afterwards.
package dicts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/loader"
)

//go:embed data/*.txt data/*.json
var embedded embed.FS

// ErrUnknownProfile is returned for names that are not built in.
var ErrUnknownProfile = errors.New("unknown profile")

const (
	ProfileS2T  = "s2t"  // Simplified to Traditional
	ProfileT2S  = "t2s"  // Traditional to Simplified
	ProfileS2TW = "s2tw" // Simplified to Traditional (Taiwan)
	ProfileTW2S = "tw2s" // Traditional (Taiwan) to Simplified
)

var builtins = map[string]func() (*converter.Converter, error){
	ProfileS2T:  lazy(ProfileS2T),
	ProfileT2S:  lazy(ProfileT2S),
	ProfileS2TW: lazy(ProfileS2TW),
	ProfileTW2S: lazy(ProfileTW2S),
}

func lazy(name string) func() (*converter.Converter, error) {
	return sync.OnceValues(func() (*converter.Converter, error) {
		return build(name)
	})
}

func build(name string) (*converter.Converter, error) {
	p, err := loader.LoadProfileFS(FS(), name+".json")
	if err != nil {
		return nil, err
	}
	return p.Build(FS())
}

// FS returns the embedded dictionaries and profiles.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(fmt.Sprintf("embedded dictionaries missing: %v", err))
	}
	return sub
}

// Names returns the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the built-in converter for name.
func Get(name string) (*converter.Converter, error) {
	get, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return get()
}

func mustGet(name string) *converter.Converter {
	conv, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize %s converter: %v", name, err))
	}
	return conv
}

// S2T converts Simplified Chinese to Traditional Chinese.
func S2T() *converter.Converter { return mustGet(ProfileS2T) }

// T2S converts Traditional Chinese to Simplified Chinese.
func T2S() *converter.Converter { return mustGet(ProfileT2S) }

// S2TW converts Simplified Chinese to Taiwan standard Traditional Chinese.
func S2TW() *converter.Converter { return mustGet(ProfileS2TW) }

// TW2S converts Taiwan standard Traditional Chinese to Simplified Chinese.
func TW2S() *converter.Converter { return mustGet(ProfileTW2S) }

// ToTraditional converts simplified Chinese to traditional Chinese
func ToTraditional(text string) string {
	return S2T().Convert(text)
}

// ToSimplified converts traditional Chinese to simplified Chinese
func ToSimplified(text string) string {
	return T2S().Convert(text)
}
