// Package converter applies an ordered pipeline of dictionary indexes to text.
package converter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/palemoky/zhconv/internal/dict"
)

// Converter is an immutable pipeline of dictionary passes. Each stage is
// applied exactly once, to the output of the previous stage.
type Converter struct {
	name   string
	stages []*dict.Index
}

// New creates a converter from indexes in pipeline order. Nil indexes are
// dropped; no indexes at all yields an identity converter.
func New(indexes ...*dict.Index) *Converter {
	stages := make([]*dict.Index, 0, len(indexes))
	for _, idx := range indexes {
		if idx != nil {
			stages = append(stages, idx)
		}
	}
	return &Converter{stages: stages}
}

// WithName returns a copy of c carrying a display name. Stages are shared.
func (c *Converter) WithName(name string) *Converter {
	return &Converter{name: name, stages: c.stages}
}

// Name returns the display name, if any.
func (c *Converter) Name() string {
	return c.name
}

// Stages returns the number of passes.
func (c *Converter) Stages() int {
	return len(c.stages)
}

// Stats returns the build statistics of every stage in order.
func (c *Converter) Stats() []dict.Stats {
	stats := make([]dict.Stats, len(c.stages))
	for i, idx := range c.stages {
		stats[i] = idx.Stats()
	}
	return stats
}

// Convert runs text through every stage.
func (c *Converter) Convert(text string) string {
	for _, idx := range c.stages {
		text = idx.Replace(text)
	}
	return text
}

// ConvertArray converts each element of texts.
func (c *Converter) ConvertArray(texts []string) []string {
	result := make([]string, len(texts))
	for i, text := range texts {
		result[i] = c.Convert(text)
	}
	return result
}

// Trace returns the segments produced by each stage, in stage order. Each
// stage scans the concatenated targets of the previous one.
func (c *Converter) Trace(text string) [][]dict.Segment {
	trace := make([][]dict.Segment, 0, len(c.stages))
	for _, idx := range c.stages {
		var (
			segs []dict.Segment
			next strings.Builder
		)
		idx.Scan(text, func(seg dict.Segment) {
			segs = append(segs, seg)
			next.WriteString(seg.Target)
		})
		trace = append(trace, segs)
		text = next.String()
	}
	return trace
}

// ConvertReader streams r to w one line at a time. Line endings are kept as
// is, so phrases spanning a newline are not matched.
func (c *Converter) ConvertReader(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReaderSize(r, 64*1024)
	bw := bufio.NewWriterSize(w, 64*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if _, werr := bw.WriteString(c.Convert(line)); werr != nil {
				return fmt.Errorf("failed to write output: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
