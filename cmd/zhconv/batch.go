package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/palemoky/zhconv/internal/processor"
)

func newBatchCmd() *cobra.Command {
	var (
		profile string
		exts    []string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Convert every matching file of a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			conv, err := e.reg.Get(profile)
			if err != nil {
				return err
			}

			jobs, err := processor.PlanDirectory(args[0], args[1], exts)
			if err != nil {
				return err
			}

			if workers == 0 {
				workers = e.cfg.Convert.Workers
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := processor.NewProcessor(conv, workers).Process(ctx, jobs)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "converted %d files (%d bytes) in %s, %d failed\n",
					result.Files, result.Bytes, result.Duration.Round(time.Millisecond), result.Failed)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Conversion profile (default from config, s2t)")
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "File extensions to convert (default common text formats)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent workers (0 = number of CPUs)")

	return cmd
}
