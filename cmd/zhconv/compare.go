package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/palemoky/zhconv/internal/opencc"
)

func newCompareCmd() *cobra.Command {
	var (
		profile  string
		upstream string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "compare [text...]",
		Short: "Compare a profile with upstream OpenCC",
		Long: "Convert every argument, or every line of the input, with both the selected profile " +
			"and the upstream OpenCC dictionaries, and list the lines where they differ.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if profile == "" {
				profile = e.reg.DefaultName()
			}
			if upstream == "" {
				upstream = profile
			}

			conv, err := e.reg.Get(profile)
			if err != nil {
				return err
			}

			texts := args
			if len(texts) == 0 {
				texts, err = readLines(cmd, input)
				if err != nil {
					return err
				}
			}

			diffs, err := opencc.Compare(conv, upstream, texts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				fmt.Fprintf(out, "%d lines, no differences\n", len(texts))
				return nil
			}

			table := tablewriter.NewWriter(out)
			table.Header([]string{"Line", "Input", profile, "OpenCC " + upstream})
			for _, d := range diffs {
				if err := table.Append([]string{fmt.Sprint(d.Line), d.Input, d.Got, d.Upstream}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			return fmt.Errorf("%d of %d lines differ", len(diffs), len(texts))
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile to check (default from config, s2t)")
	cmd.Flags().StringVar(&upstream, "upstream", "", "Upstream OpenCC conversion (default same as profile)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (default stdin)")

	return cmd
}

func readLines(cmd *cobra.Command, path string) ([]string, error) {
	in := cmd.InOrStdin()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
