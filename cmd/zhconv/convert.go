package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/processor"
)

func newConvertCmd() *cobra.Command {
	var (
		profile  string
		dicts    []string
		encoding string
		input    string
		output   string
		explain  bool
	)

	cmd := &cobra.Command{
		Use:   "convert [text...]",
		Short: "Convert text from arguments, a file or stdin",
		Example: `  zhconv convert 头发
  zhconv convert -p t2s -i book.txt -o book.s.txt
  echo 中国 | zhconv convert -p s2tw
  zhconv convert --dict STPhrases.txt,STCharacters.txt --dict TWVariants.txt 头发`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			conv, err := e.converterFor(profile, dicts, encoding)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if input != "" && output != "" && len(args) == 0 {
				_, err := processor.ConvertFile(ctx, conv, input, output)
				return err
			}

			in := cmd.InOrStdin()
			if input != "" && len(args) == 0 {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			if len(args) > 0 {
				return convertArgs(conv, args, out, explain)
			}

			return conv.ConvertReader(ctx, in, out)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Conversion profile (default from config, s2t)")
	cmd.Flags().StringArrayVar(&dicts, "dict", nil, "Dictionary files for one stage, comma separated; repeat for more stages")
	cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "Encoding of --dict files (utf-8, gbk, gb18030, big5)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout); may be the input file")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show the phrases matched by each stage")

	return cmd
}

func convertArgs(conv *converter.Converter, args []string, out io.Writer, explain bool) error {
	w := bufio.NewWriter(out)
	for _, arg := range args {
		if _, err := fmt.Fprintln(w, conv.Convert(arg)); err != nil {
			return err
		}
		if explain {
			if err := w.Flush(); err != nil {
				return err
			}
			if err := printTrace(out, conv, arg); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// printTrace renders the matched segments of every stage.
func printTrace(out io.Writer, conv *converter.Converter, text string) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Stage", "Offset", "Source", "Target"})

	for stage, segs := range conv.Trace(text) {
		var next strings.Builder
		for _, seg := range segs {
			if seg.Matched {
				err := table.Append([]string{
					fmt.Sprint(stage + 1),
					fmt.Sprint(seg.Offset),
					text[seg.Offset : seg.Offset+seg.Size],
					seg.Target,
				})
				if err != nil {
					return err
				}
			}
			next.WriteString(seg.Target)
		}
		text = next.String()
	}

	return table.Render()
}
