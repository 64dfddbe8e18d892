package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amberpipe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watch_dir:    %s\n", cfg.Paths.WatchDir)
			fmt.Fprintf(out, "output_dir:   %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "staging_dir:  %s\n", cfg.Paths.StagingDir)
			fmt.Fprintf(out, "header_dir:   %s\n", cfg.Paths.HeaderDir)
			fmt.Fprintf(out, "compiled_dir: %s\n", cfg.Paths.CompiledDir)
			fmt.Fprintf(out, "log_dir:      %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "socket:       %s\n", cfg.Paths.SocketPath)
			fmt.Fprintf(out, "api_bind:     %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "target size:  %dx%d\n", cfg.Processing.TargetWidth, cfg.Processing.TargetHeight)
			fmt.Fprintf(out, "lod levels:   %d\n", cfg.Processing.LODLevels)
			fmt.Fprintf(out, "max parallel: %d\n", cfg.Processing.MaxParallel)
			fmt.Fprintf(out, "segmenter:    enabled=%t endpoint=%s\n", cfg.Segmenter.Enabled, cfg.Segmenter.Endpoint)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if ctx.configFlag != nil && *ctx.configFlag != "" {
				path, err = config.ExpandPath(*ctx.configFlag)
				if err != nil {
					return err
				}
			}
			if !force {
				if _, _, exists, statErr := config.Load(path); statErr == nil && exists {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(initCmd)
	return configCmd
}
