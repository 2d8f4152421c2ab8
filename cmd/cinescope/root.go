package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cinescope",
		Short:         "Browse movies and manage favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch ctx.output {
			case outputAuto, outputTable, outputJSON:
			default:
				return fmt.Errorf("invalid --output %q (want auto, table or json)", ctx.output)
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&ctx.output, "output", "o", outputAuto, "Output format: auto, table or json")

	rootCmd.AddCommand(newBrowseCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newFavoritesCommand(ctx))

	return rootCmd
}
