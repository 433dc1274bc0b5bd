package dict

import (
	"strings"
	"unicode/utf8"
)

// Segment is one step of a scan: either a matched phrase replaced by Target,
// or a single character copied through unchanged.
type Segment struct {
	Offset  int    `json:"offset"` // byte offset in the scanned text
	Size    int    `json:"size"`   // bytes consumed
	Runes   int    `json:"runes"`  // characters consumed
	Target  string `json:"target"`
	Matched bool   `json:"matched"`
}

// step consumes one segment of text at pos: the longest phrase starting
// there, or else one character (one byte when the UTF-8 is invalid).
func (idx *Index) step(text string, pos int) (size int, target string, matched bool) {
	if size, target, ok := idx.LongestMatch(text, pos); ok {
		return size, target, true
	}
	_, size = utf8.DecodeRuneInString(text[pos:])
	return size, text[pos : pos+size], false
}

// Scan walks text left to right, calling fn for every segment. At each
// position the longest matching phrase is replaced; otherwise exactly one
// character is passed through. Invalid UTF-8 passes through a byte at a time.
func (idx *Index) Scan(text string, fn func(Segment)) {
	for pos := 0; pos < len(text); {
		size, target, matched := idx.step(text, pos)
		runes := 1
		if matched {
			runes = utf8.RuneCountInString(text[pos : pos+size])
		}
		fn(Segment{
			Offset:  pos,
			Size:    size,
			Runes:   runes,
			Target:  target,
			Matched: matched,
		})
		pos += size
	}
}

// Replace performs one greedy longest-match pass over text. It takes the same
// steps as Scan and concatenates their targets.
func (idx *Index) Replace(text string) string {
	if idx.Len() == 0 || text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for pos := 0; pos < len(text); {
		size, target, _ := idx.step(text, pos)
		b.WriteString(target)
		pos += size
	}

	return b.String()
}
