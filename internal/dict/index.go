// Package dict implements the phrase dictionary index used for longest-match
// script conversion.
//
// An Index is a two-level structure: a map keyed by the first character of a
// source phrase, whose values hold the remaining characters of every source
// sharing that first character together with the distinct remainder lengths,
// longest first. Finding the longest phrase at a position therefore costs one
// map probe per distinct length, never a scan of the dictionary.
package dict

import (
	"sort"
	"unicode/utf8"
)

// Entry is one dictionary rule mapping a source phrase to its replacement.
type Entry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Stats describes a built index.
type Stats struct {
	Entries      int `json:"entries"`
	Groups       int `json:"groups"`
	Skipped      int `json:"skipped"`
	Duplicates   int `json:"duplicates"`
	MaxPhraseLen int `json:"max_phrase_len"` // in characters
}

// group holds every source phrase starting with the same character.
type group struct {
	tails   map[string]string // remaining characters -> target
	lengths []int             // distinct tail byte lengths, longest first
}

// Index is an immutable phrase dictionary. The zero value and a nil *Index
// never match anything.
type Index struct {
	groups map[rune]*group
	stats  Stats
}

// Build creates an index from entries in input order. Entries with an empty
// or invalid UTF-8 source are skipped. When two entries share a source the
// later one wins.
func Build(entries []Entry) *Index {
	idx := &Index{groups: make(map[rune]*group)}

	for _, e := range entries {
		if e.Source == "" || !utf8.ValidString(e.Source) {
			idx.stats.Skipped++
			continue
		}

		first, size := utf8.DecodeRuneInString(e.Source)
		g, ok := idx.groups[first]
		if !ok {
			g = &group{tails: make(map[string]string)}
			idx.groups[first] = g
		}

		tail := e.Source[size:]
		if _, exists := g.tails[tail]; exists {
			idx.stats.Duplicates++
		} else {
			g.lengths = append(g.lengths, len(tail))
			if n := utf8.RuneCountInString(e.Source); n > idx.stats.MaxPhraseLen {
				idx.stats.MaxPhraseLen = n
			}
		}
		g.tails[tail] = e.Target
	}

	for _, g := range idx.groups {
		g.lengths = distinctDescending(g.lengths)
		idx.stats.Entries += len(g.tails)
	}
	idx.stats.Groups = len(idx.groups)

	return idx
}

func distinctDescending(lengths []int) []int {
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	out := lengths[:0]
	for i, n := range lengths {
		if i == 0 || n != lengths[i-1] {
			out = append(out, n)
		}
	}
	return out
}

// LongestMatch reports the longest source phrase that starts at byte offset
// offset of text. size is the number of bytes the phrase covers in text.
func (idx *Index) LongestMatch(text string, offset int) (size int, target string, ok bool) {
	if idx == nil || offset < 0 || offset >= len(text) {
		return 0, "", false
	}

	first, width := utf8.DecodeRuneInString(text[offset:])
	if first == utf8.RuneError && width <= 1 {
		return 0, "", false
	}

	g, ok := idx.groups[first]
	if !ok {
		return 0, "", false
	}

	start := offset + width
	for _, n := range g.lengths {
		if start+n > len(text) {
			continue
		}
		if target, ok := g.tails[text[start:start+n]]; ok {
			return width + n, target, true
		}
	}

	return 0, "", false
}

// Lookup returns the target registered for exactly source.
func (idx *Index) Lookup(source string) (string, bool) {
	if idx == nil || source == "" {
		return "", false
	}
	first, size := utf8.DecodeRuneInString(source)
	g, ok := idx.groups[first]
	if !ok {
		return "", false
	}
	target, ok := g.tails[source[size:]]
	return target, ok
}

// Len returns the number of distinct source phrases.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.stats.Entries
}

// Stats returns build statistics.
func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	return idx.stats
}

// Entries returns every rule of the index sorted by source.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}

	entries := make([]Entry, 0, idx.stats.Entries)
	for first, g := range idx.groups {
		prefix := string(first)
		for tail, target := range g.tails {
			entries = append(entries, Entry{Source: prefix + tail, Target: target})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Source < entries[j].Source
	})

	return entries
}
