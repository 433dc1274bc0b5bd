// Package opencc runs the upstream OpenCC dictionaries through
// github.com/liuzl/gocc. It serves as a reference to check zhconv converters
// against, not as a conversion path of its own.
package opencc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/liuzl/gocc"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/dicts"
)

// engines are created on first use; each loads its dictionaries from disk.
var engines = map[string]func() (*gocc.OpenCC, error){
	dicts.ProfileS2T:  lazy(dicts.ProfileS2T),
	dicts.ProfileT2S:  lazy(dicts.ProfileT2S),
	dicts.ProfileS2TW: lazy(dicts.ProfileS2TW),
	dicts.ProfileTW2S: lazy(dicts.ProfileTW2S),
	"s2hk":            lazy("s2hk"),
	"hk2s":            lazy("hk2s"),
	"s2twp":           lazy("s2twp"),
	"tw2sp":           lazy("tw2sp"),
}

func lazy(conversion string) func() (*gocc.OpenCC, error) {
	return sync.OnceValues(func() (*gocc.OpenCC, error) {
		cc, err := gocc.New(conversion)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s converter: %w", conversion, err)
		}
		return cc, nil
	})
}

// Supported returns the profiles the reference engine knows, sorted.
func Supported() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func engine(profile string) (*gocc.OpenCC, error) {
	get, ok := engines[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dicts.ErrUnknownProfile, profile)
	}
	return get()
}

// Convert converts text with the upstream dictionaries of profile.
func Convert(profile, text string) (string, error) {
	cc, err := engine(profile)
	if err != nil {
		return "", err
	}
	return cc.Convert(text)
}

// Difference is an input on which a converter and upstream OpenCC disagree.
type Difference struct {
	Line     int    `json:"line"`
	Input    string `json:"input"`
	Got      string `json:"got"`
	Upstream string `json:"upstream"`
}

// Compare converts every text with conv and with upstream profile and returns
// the texts whose results differ, in input order. Line numbers start at 1.
func Compare(conv *converter.Converter, profile string, texts []string) ([]Difference, error) {
	cc, err := engine(profile)
	if err != nil {
		return nil, err
	}

	var diffs []Difference
	for i, text := range texts {
		want, err := cc.Convert(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if got := conv.Convert(text); got != want {
			diffs = append(diffs, Difference{Line: i + 1, Input: text, Got: got, Upstream: want})
		}
	}

	return diffs, nil
}
