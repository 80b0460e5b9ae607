package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/dgramchunk/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check dgramctl config files",
	}

	var outPath string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(outPath, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	initCmd.Flags().StringVar(&outPath, "out", "dgramctl.toml", "output path for the config template")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the file passed with --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootArgs.configPath == "" {
				return fmt.Errorf("--config is required")
			}
			// loading already validated the file
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s (max_datagram_size=%d)\n", rootArgs.configPath, rootArgs.cfg.MaxDatagramSize)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
