package dict

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIndex() *Index {
	return Build([]Entry{
		{"A", "a'"},
		{"B", "b'"},
		{"C", "c'"},
		{"ABC", "abc'"},
		{"ABCD", "abcd'"},
		{"DDD", "ddd'"},
		{"BB", "bb'"},
	})
}

func TestLongestMatch(t *testing.T) {
	idx := fixtureIndex()

	tests := []struct {
		name       string
		text       string
		offset     int
		wantSize   int
		wantTarget string
		wantOK     bool
	}{
		{name: "single character", text: "A", wantSize: 1, wantTarget: "a'", wantOK: true},
		{name: "shorter phrase when longer does not fit", text: "BXX", wantSize: 1, wantTarget: "b'", wantOK: true},
		{name: "three character phrase", text: "ABCX", wantSize: 3, wantTarget: "abc'", wantOK: true},
		{name: "longest of several", text: "ABCDEFG", wantSize: 4, wantTarget: "abcd'", wantOK: true},
		{name: "unknown first character", text: "X", wantOK: false},
		{name: "prefix of a phrase only", text: "DD", wantOK: false},
		{name: "falls back from partial longer phrase", text: "ABX", wantSize: 1, wantTarget: "a'", wantOK: true},
		{name: "non-zero offset", text: "XBB", offset: 1, wantSize: 2, wantTarget: "bb'", wantOK: true},
		{name: "offset past end", text: "A", offset: 1, wantOK: false},
		{name: "negative offset", text: "A", offset: -1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, target, ok := idx.LongestMatch(tt.text, tt.offset)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestLongestMatchMultibyte(t *testing.T) {
	idx := Build([]Entry{
		{"头", "頭"},
		{"头发", "頭髮"},
		{"发", "發"},
	})

	size, target, ok := idx.LongestMatch("头发很长", 0)
	require.True(t, ok)
	assert.Equal(t, len("头发"), size)
	assert.Equal(t, "頭髮", target)

	size, target, ok = idx.LongestMatch("出发", len("出"))
	require.True(t, ok)
	assert.Equal(t, len("发"), size)
	assert.Equal(t, "發", target)
}

func TestBuild(t *testing.T) {
	t.Run("duplicate source last wins", func(t *testing.T) {
		idx := Build([]Entry{{"A", "X"}, {"A", "Y"}})
		assert.Equal(t, "Y", idx.Replace("A"))
		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, 1, idx.Stats().Duplicates)
	})

	t.Run("malformed entries skipped", func(t *testing.T) {
		idx := Build([]Entry{{"", "X"}, {"\xff", "Y"}, {"A", "Z"}})
		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, 2, idx.Stats().Skipped)
		assert.Equal(t, "Z\xff", idx.Replace("A\xff"))
	})

	t.Run("empty dictionary", func(t *testing.T) {
		idx := Build(nil)
		assert.Equal(t, 0, idx.Len())
		_, _, ok := idx.LongestMatch("A", 0)
		assert.False(t, ok)
	})

	t.Run("stats", func(t *testing.T) {
		stats := fixtureIndex().Stats()
		assert.Equal(t, 7, stats.Entries)
		assert.Equal(t, 4, stats.Groups)
		assert.Equal(t, 4, stats.MaxPhraseLen)
	})

	t.Run("empty target deletes", func(t *testing.T) {
		idx := Build([]Entry{{"-", ""}})
		assert.Equal(t, "ab", idx.Replace("a-b"))
	})
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "abc", idx.Replace("abc"))
	assert.Nil(t, idx.Entries())
	_, ok := idx.Lookup("a")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	idx := fixtureIndex()

	target, ok := idx.Lookup("ABC")
	require.True(t, ok)
	assert.Equal(t, "abc'", target)

	_, ok = idx.Lookup("AB")
	assert.False(t, ok)
	_, ok = idx.Lookup("")
	assert.False(t, ok)
}

func TestEntries(t *testing.T) {
	idx := Build([]Entry{{"B", "2"}, {"AB", "3"}, {"A", "1"}, {"B", "4"}})
	assert.Equal(t, []Entry{{"A", "1"}, {"AB", "3"}, {"B", "4"}}, idx.Entries())
}

func TestReplace(t *testing.T) {
	idx := Build([]Entry{
		{"A", "a"},
		{"B", "b"},
		{"ABC", "xxx"},
	})

	tests := []struct {
		input string
		want  string
	}{
		{"A", "a"},
		{"AB", "ab"},
		{"ABC", "xxx"},
		{"ABABCA", "abxxxa"},
		{"AXBXAB", "aXbXab"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Replace(tt.input))
		})
	}
}

func TestReplaceProperties(t *testing.T) {
	t.Run("longest match precedence", func(t *testing.T) {
		idx := Build([]Entry{{"AB", "X"}, {"A", "Y"}})
		assert.Equal(t, "X", idx.Replace("AB"))
	})

	t.Run("unmatched passthrough", func(t *testing.T) {
		idx := Build([]Entry{{"A", "X"}})
		assert.Equal(t, "ZX", idx.Replace("ZA"))
	})

	t.Run("identity on empty dictionary", func(t *testing.T) {
		idx := Build([]Entry{})
		for _, s := range []string{"", "abc", "简体中文", "混合text文字123"} {
			assert.Equal(t, s, idx.Replace(s))
		}
	})
}

func TestScanTotality(t *testing.T) {
	idx := fixtureIndex()

	inputs := []string{"", "ABCDEFG", "XXDDDBBA", "简体ABC中文", "A\xffB\xfe", strings.Repeat("ABCD", 50)}
	for _, input := range inputs {
		var bytes, runes int
		var out strings.Builder
		next := 0
		idx.Scan(input, func(seg Segment) {
			assert.Equal(t, next, seg.Offset, "segments must be contiguous")
			next += seg.Size
			bytes += seg.Size
			runes += seg.Runes
			out.WriteString(seg.Target)
		})
		assert.Equal(t, len(input), bytes)
		assert.Equal(t, utf8.RuneCountInString(input), runes)
		assert.Equal(t, idx.Replace(input), out.String(), "Replace concatenates the Scan targets")
	}
}

func TestScanSegments(t *testing.T) {
	idx := Build([]Entry{{"头发", "頭髮"}})

	var segs []Segment
	idx.Scan("剪头发", func(seg Segment) { segs = append(segs, seg) })

	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Offset: 0, Size: 3, Runes: 1, Target: "剪"}, segs[0])
	assert.Equal(t, Segment{Offset: 3, Size: 6, Runes: 2, Target: "頭髮", Matched: true}, segs[1])
}

func TestConcurrentReaders(t *testing.T) {
	idx := fixtureIndex()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, "abcd'abc'", idx.Replace("ABCDABC"))
			}
		}()
	}
	wg.Wait()
}
