package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/logger"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List conversion profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Profile", "Stages", "Entries", "Longest", "Description"})

			for _, name := range e.reg.Names() {
				conv, err := e.reg.Get(name)
				if err != nil {
					logger.Warn("Skipping profile", zap.String("profile", name), zap.Error(err))
					continue
				}

				entries, longest := 0, 0
				for _, s := range conv.Stats() {
					entries += s.Entries
					longest = max(longest, s.MaxPhraseLen)
				}

				if name == e.reg.DefaultName() {
					name += " *"
				}
				err = table.Append([]string{
					name,
					fmt.Sprint(conv.Stages()),
					fmt.Sprint(entries),
					fmt.Sprint(longest),
					conv.Name(),
				})
				if err != nil {
					return err
				}
			}

			return table.Render()
		},
	}
}
