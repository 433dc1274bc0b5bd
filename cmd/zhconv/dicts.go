package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/palemoky/zhconv/internal/database"
)

func newDictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dicts",
		Short: "Inspect the dictionary store",
	}
	cmd.AddCommand(newDictsListCmd(), newDictsShowCmd(), newDictsDeleteCmd())
	return cmd
}

func openRepo() (*env, *database.Repository, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, nil, err
	}
	if e.db == nil {
		e.Close()
		return nil, nil, errors.New("no store configured: pass --store or set ZHCONV_STORE")
	}
	return e, database.NewRepository(e.db), nil
}

func newDictsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := repo.GetStatistics()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Name", "Entries", "Longest", "Source", "Updated"})
			for _, d := range stats.Dictionaries {
				err := table.Append([]string{
					d.Name,
					fmt.Sprint(d.EntryCount),
					fmt.Sprint(d.MaxPhraseLen),
					d.Source,
					d.UpdatedAt.Format("2006-01-02 15:04"),
				})
				if err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d dictionaries, %d entries\n", stats.TotalDictionaries, stats.TotalEntries)
			return nil
		},
	}
}

func newDictsShowCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the entries of a stored dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer e.Close()

			rules, err := repo.LoadRules(args[0])
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Source", "Target", "Alternatives"})
			for i, rule := range rules {
				if limit > 0 && i >= limit {
					break
				}
				if err := table.Append([]string{rule.Source, rule.Targets[0], strings.Join(rule.Targets[1:], " ")}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			if limit > 0 && len(rules) > limit {
				fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d entries\n", limit, len(rules))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show (0 = all)")

	return cmd
}

func newDictsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer e.Close()

			return repo.DeleteDictionary(args[0])
		},
	}
}
