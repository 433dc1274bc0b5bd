package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/loader"
	"github.com/palemoky/zhconv/internal/logger"
)

func newCompileCmd() *cobra.Command {
	var (
		name        string
		description string
		encoding    string
		batchSize   int
	)

	cmd := &cobra.Command{
		Use:   "compile <dictionary.txt>...",
		Short: "Store text dictionaries in the SQLite dictionary store",
		Long: "Merge one or more OpenCC-format dictionaries, later files overriding earlier ones, " +
			"and save them as one named dictionary. Use it as profile store:<name>.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if e.db == nil {
				return errors.New("no store configured: pass --store or set ZHCONV_STORE")
			}

			enc, err := loader.ParseEncoding(encoding)
			if err != nil {
				return err
			}

			var rules []loader.Rule
			for _, file := range args {
				loaded, err := loader.LoadRules(file, enc)
				if err != nil {
					return err
				}
				logger.Debug("Loaded dictionary", zap.String("file", file), zap.Int("rules", len(loaded)))
				rules = append(rules, loaded...)
			}

			if name == "" {
				name = loader.ProfileKey(args[0])
			}

			repo := database.NewRepository(e.db)
			d, err := repo.SaveDictionary(name, description, sourceList(args), rules, batchSize)
			if err != nil {
				return fmt.Errorf("failed to save dictionary: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %s: %d entries, longest phrase %d characters\n",
				d.Name, d.EntryCount, d.MaxPhraseLen)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Dictionary name (default first file name)")
	cmd.Flags().StringVar(&description, "description", "", "Dictionary description")
	cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "Encoding of the input files (utf-8, gbk, gb18030, big5)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Rows per insert")

	return cmd
}

func sourceList(files []string) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return strings.Join(names, ",")
}
