package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/bugsqa/internal/app"
	configapp "github.com/doeshing/bugsqa/internal/application/config"
	configinfra "github.com/doeshing/bugsqa/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bugsqa configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(container),
		newConfigPathCommand(container),
		newConfigInitCommand(container),
		newConfigValidateCommand(container),
		newConfigDiffCommand(container),
	)

	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newConfigPathCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ConfigLoader == nil {
				return errors.New(ErrConfigLoaderUnavailable)
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}
}

func newConfigInitCommand(container *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfiguration(cmd.OutOrStdout(), container, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

// newConfigValidateCommand creates the 'config validate' subcommand
func newConfigValidateCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
}

// newConfigDiffCommand creates the 'config diff' subcommand
func newConfigDiffCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show diff versus default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigurationDiff(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

// showConfiguration displays the full configuration in YAML format
func showConfiguration(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Fprint(out, string(data))
	return nil
}

func initConfiguration(out io.Writer, container *app.Container, force bool) error {
	loader := container.ConfigLoader
	if loader == nil {
		return errors.New(ErrConfigLoaderUnavailable)
	}

	path := loader.Path()
	if _, err := os.Stat(path); err == nil && !force {
		// Loading writes defaults for a missing file, so a plain init usually lands here.
		fmt.Fprintf(out, "Configuration already exists at %s (use --force to overwrite)\n", path)
		return nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := loader.Reset(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	fmt.Fprintf(out, "Configuration written to %s\n", path)
	return nil
}

// showConfigurationDiff shows the difference between current and default configuration
func showConfigurationDiff(ctx context.Context, out io.Writer, container *app.Container) error {
	currentConfig, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current configuration: %w", err)
	}

	defaultConfig, err := configinfra.Defaults()
	if err != nil {
		return err
	}
	diff := cmp.Diff(defaultConfig, currentConfig)

	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}

	fmt.Fprintln(out, diff)
	return nil
}
