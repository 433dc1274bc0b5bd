// Package loader reads OpenCC style text dictionaries and conversion profiles.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/palemoky/zhconv/internal/dict"
)

// maxLineSize bounds a single dictionary line
const maxLineSize = 1 << 20

// Encoding names the character encoding of a dictionary file.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingGBK     Encoding = "gbk"
	EncodingGB18030 Encoding = "gb18030"
	EncodingBig5    Encoding = "big5"
)

// ParseEncoding maps a user supplied name to an Encoding. Empty means UTF-8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "gbk", "cp936":
		return EncodingGBK, nil
	case "gb18030":
		return EncodingGB18030, nil
	case "big5", "big-5", "cp950":
		return EncodingBig5, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", s)
	}
}

func (e Encoding) decoder() *encoding.Decoder {
	switch e {
	case EncodingGBK:
		return simplifiedchinese.GBK.NewDecoder()
	case EncodingGB18030:
		return simplifiedchinese.GB18030.NewDecoder()
	case EncodingBig5:
		return traditionalchinese.Big5.NewDecoder()
	default:
		return unicode.UTF8.NewDecoder()
	}
}

// NewReader wraps r so that it yields UTF-8. A leading UTF-8 BOM is dropped.
func (e Encoding) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(e.decoder()))
}

// Rule is one dictionary line with every listed alternative.
type Rule struct {
	Source  string
	Targets []string
}

// Entry returns the rule as used for conversion: the first target wins.
func (r Rule) Entry() dict.Entry {
	e := dict.Entry{Source: r.Source}
	if len(r.Targets) > 0 {
		e.Target = r.Targets[0]
	}
	return e
}

// Entries reduces rules to conversion entries, keeping their order.
func Entries(rules []Rule) []dict.Entry {
	if rules == nil {
		return nil
	}
	entries := make([]dict.Entry, len(rules))
	for i, r := range rules {
		entries[i] = r.Entry()
	}
	return entries
}

// ParseRules reads one rule per line in the form
//
//	source<TAB>target[ alternative ...]
//
// Lines without a TAB are ignored.
func ParseRules(r io.Reader) ([]Rule, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var rules []Rule
	first := true
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		if rule, ok := parseLine(line); ok {
			rules = append(rules, rule)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	return rules, nil
}

// ParseDictionary reads a dictionary keeping only the first target of each
// rule.
func ParseDictionary(r io.Reader) ([]dict.Entry, error) {
	rules, err := ParseRules(r)
	if err != nil {
		return nil, err
	}
	return Entries(rules), nil
}

// ParseString parses an in-memory dictionary.
func ParseString(s string) []dict.Entry {
	var rules []Rule
	for _, line := range strings.Split(strings.TrimPrefix(s, "\ufeff"), "\n") {
		if rule, ok := parseLine(strings.TrimSuffix(line, "\r")); ok {
			rules = append(rules, rule)
		}
	}
	return Entries(rules)
}

func parseLine(line string) (Rule, bool) {
	source, rest, ok := strings.Cut(line, "\t")
	if !ok {
		return Rule{}, false
	}
	targets := strings.Split(rest, " ")
	return Rule{Source: source, Targets: targets}, true
}

// LoadRules reads a dictionary file in the given encoding.
func LoadRules(path string, enc Encoding) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rules, err := ParseRules(enc.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadDictionary reads a dictionary file in the given encoding.
func LoadDictionary(path string, enc Encoding) ([]dict.Entry, error) {
	rules, err := LoadRules(path, enc)
	if err != nil {
		return nil, err
	}
	return Entries(rules), nil
}

// LoadDictionaryFS reads a dictionary from fsys.
func LoadDictionaryFS(fsys fs.FS, name string, enc Encoding) ([]dict.Entry, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := ParseDictionary(enc.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return entries, nil
}
