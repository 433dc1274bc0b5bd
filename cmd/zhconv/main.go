package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/config"
	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/dict"
	"github.com/palemoky/zhconv/internal/loader"
	"github.com/palemoky/zhconv/internal/logger"
	"github.com/palemoky/zhconv/internal/registry"
)

var (
	configPath string
	profileDir string
	storePath  string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zhconv",
		Short: "Chinese script variant converter",
		Long:  "Convert text between Simplified, Traditional and regional Chinese variants with longest-match dictionaries",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile-dir", "", "Directory of extra *.json profiles")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Compiled dictionary store (SQLite)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newConvertCmd(),
		newBatchCmd(),
		newCompileCmd(),
		newDictsCmd(),
		newProfilesCmd(),
		newCompareCmd(),
	)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// env holds what the subcommands share: a registry and, when configured, an
// open store.
type env struct {
	cfg *config.Config
	reg *registry.Registry
	db  *database.DB
}

func (e *env) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

// loadEnv applies config, then flags, and builds the registry.
func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if profileDir != "" {
		cfg.Dictionary.ProfileDir = profileDir
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	e := &env{cfg: cfg}

	var store registry.Store
	if cfg.Store.Path != "" {
		e.db, err = database.Open(cfg.Store.Path, cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		if err := e.db.Migrate(); err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to migrate store: %w", err)
		}
		store = database.NewCachedRepository(database.NewRepository(e.db))
	}

	e.reg = registry.New(cfg.Dictionary.DefaultProfile, store)
	if cfg.Dictionary.ProfileDir != "" {
		n, err := e.reg.LoadDir(cfg.Dictionary.ProfileDir)
		if err != nil {
			e.Close()
			return nil, err
		}
		logger.Debug("Loaded profiles", zap.String("dir", cfg.Dictionary.ProfileDir), zap.Int("count", n))
	}

	return e, nil
}

// converterFor returns the converter named by profile, or an ad-hoc one when
// dict files are given. Each dict flag value is one stage; comma separated
// files within a value are merged, later files overriding earlier ones.
func (e *env) converterFor(profile string, stages []string, encoding string) (*converter.Converter, error) {
	if len(stages) == 0 {
		return e.reg.Get(profile)
	}

	enc, err := loader.ParseEncoding(encoding)
	if err != nil {
		return nil, err
	}

	indexes := make([]*dict.Index, 0, len(stages))
	for _, stage := range stages {
		var entries []dict.Entry
		for _, file := range strings.Split(stage, ",") {
			loaded, err := loader.LoadDictionary(strings.TrimSpace(file), enc)
			if err != nil {
				return nil, err
			}
			entries = append(entries, loaded...)
		}
		indexes = append(indexes, dict.Build(entries))
	}

	return converter.New(indexes...).WithName("custom"), nil
}
