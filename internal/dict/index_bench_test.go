package dict

import (
	"fmt"
	"strings"
	"testing"
)

func benchEntries(n int) []Entry {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		r := rune(0x4e00 + i%2000)
		entries = append(entries, Entry{
			Source: strings.Repeat(string(r), 1+i%4) + fmt.Sprint(i%7),
			Target: string(r + 1),
		})
	}
	return entries
}

func BenchmarkBuild(b *testing.B) {
	entries := benchEntries(20000)

	b.ResetTimer()
	for b.Loop() {
		_ = Build(entries)
	}
}

func BenchmarkReplace(b *testing.B) {
	idx := Build([]Entry{
		{"觉", "覺"}, {"晓", "曉"}, {"处", "處"}, {"闻", "聞"}, {"鸟", "鳥"},
		{"来", "來"}, {"风", "風"}, {"声", "聲"}, {"尽", "盡"}, {"黄", "黃"},
		{"穷", "窮"}, {"层", "層"}, {"楼", "樓"}, {"千里", "千里"},
	})

	testCases := []struct {
		name  string
		input string
	}{
		{"short", "简体中文"},
		{"medium", "床前明月光，疑是地上霜。举头望明月，低头思故乡。"},
		{"long", "春眠不觉晓，处处闻啼鸟。夜来风雨声，花落知多少。白日依山尽，黄河入海流。欲穷千里目，更上一层楼。"},
		{"mixed", "测试text混合123内容"},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			b.ResetTimer()
			for b.Loop() {
				_ = idx.Replace(tc.input)
			}
		})
	}
}
