package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mvm/internal/config"
)

func newVersionCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if *jsonOutput {
				return printJSON(map[string]string{
					"version": config.Version,
					"commit":  config.Commit,
					"date":    config.Date,
				})
			}
			fmt.Printf("mvm %s\ncommit: %s\nbuilt at: %s\n", config.Version, config.Commit, config.Date)
			return nil
		},
	}
}
