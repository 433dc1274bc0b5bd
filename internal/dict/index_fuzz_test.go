package dict

import (
	"testing"
	"unicode/utf8"
)

// FuzzReplace checks that a pass never panics, consumes the whole input and
// keeps valid UTF-8 valid.
func FuzzReplace(f *testing.F) {
	f.Add("简体中文")
	f.Add("床前明月光")
	f.Add("头发")
	f.Add("")
	f.Add("123abc!@#")
	f.Add("混合text文字123")
	f.Add("\xff\xfe头")

	idx := Build([]Entry{
		{"头", "頭"},
		{"头发", "頭髮"},
		{"发", "發"},
		{"简", "簡"},
		{"体", "體"},
		{"文字", "文字"},
	})

	f.Fuzz(func(t *testing.T, input string) {
		result := idx.Replace(input)

		if utf8.ValidString(input) && !utf8.ValidString(result) {
			t.Errorf("Replace(%q) returned invalid UTF-8: %q", input, result)
		}

		var consumed int
		idx.Scan(input, func(seg Segment) { consumed += seg.Size })
		if consumed != len(input) {
			t.Errorf("Scan(%q) consumed %d bytes, want %d", input, consumed, len(input))
		}
	})
}
