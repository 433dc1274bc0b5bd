package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A\tB\nAB\tX\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B\tC\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"builtin profile", []string{"-p", "s2t", "头发", "中国"}, "頭髮\n中國\n"},
		{"dictionary stages", []string{"--dict", filepath.Join(dir, "a.txt"), "--dict", filepath.Join(dir, "b.txt"), "ABA"}, "XC\n"},
		{"merged stage", []string{"--dict", filepath.Join(dir, "a.txt") + "," + filepath.Join(dir, "b.txt"), "ABA"}, "XB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newConvertCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestConvertStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newConvertCmd()
	cmd.SetArgs([]string{"-p", "t2s"})
	cmd.SetIn(bytes.NewBufferString("乾隆乾淨\n測試\n"))
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "乾隆干净\n测试\n", out.String())
}

func TestConvertExplain(t *testing.T) {
	var out bytes.Buffer
	cmd := newConvertCmd()
	cmd.SetArgs([]string{"--explain", "头发"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "頭髮\n")
	assert.Contains(t, out.String(), "头发")
}

func TestConvertFiles(t *testing.T) {
	t.Run("separate output", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "book.txt")
		out := filepath.Join(dir, "book.t.txt")
		require.NoError(t, os.WriteFile(in, []byte("头发\n"), 0o644))

		cmd := newConvertCmd()
		cmd.SetArgs([]string{"-p", "s2t", "-i", in, "-o", out})
		require.NoError(t, cmd.Execute())

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "頭髮\n", string(got))
	})

	t.Run("in place", func(t *testing.T) {
		dir := t.TempDir()
		book := filepath.Join(dir, "book.txt")
		require.NoError(t, os.WriteFile(book, []byte("头发\n"), 0o644))

		cmd := newConvertCmd()
		cmd.SetArgs([]string{"-p", "s2t", "-i", book, "-o", book})
		require.NoError(t, cmd.Execute())

		got, err := os.ReadFile(book)
		require.NoError(t, err)
		assert.Equal(t, "頭髮\n", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files left behind")
	})

	t.Run("missing input keeps output", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.txt")
		require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))

		cmd := newConvertCmd()
		cmd.SetArgs([]string{"-i", filepath.Join(dir, "missing.txt"), "-o", out})
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		assert.Error(t, cmd.Execute())

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(got))
	})
}
