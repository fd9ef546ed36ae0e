package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/app"
	configapp "github.com/doeshing/bugsqa/internal/application/config"
)

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(container *app.Container) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and select analysis models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	modelsCmd.AddCommand(
		newModelsListCommand(container),
		newModelsCheckCommand(container),
		newModelsUseCommand(container),
	)

	return modelsCmd
}

// newModelsListCommand creates the 'models list' subcommand
func newModelsListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

// newModelsCheckCommand creates the 'models check' subcommand
func newModelsCheckCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "check [name]",
		Short: "Check that a model's backend can be built (no request is sent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if _, err := container.Analyzer(cmd.Context(), name); err != nil {
				return err
			}
			if name == "" {
				name = container.Config.Preferences.DefaultModel
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is ready\n", name)
			return nil
		},
	}
}

// newModelsUseCommand creates the 'models use' subcommand
func newModelsUseCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set default model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDefaultModel(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// listModels prints configured models; the default is marked with '*'.
func listModels(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(cfg.Models) == 0 {
		fmt.Fprintln(out, MsgNoModelsConfigured)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tBACKEND\tMODEL\tCREDENTIAL")
	for _, model := range cfg.Models {
		marker := ""
		if model.Name == cfg.Preferences.DefaultModel {
			marker = "*"
		}
		credential := model.AuthEnvVar
		if credential == "" {
			credential = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, model.Name, model.Backend, model.ModelID, credential)
	}
	return w.Flush()
}

func setDefaultModel(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	loader := container.ConfigLoader
	if loader == nil {
		return errors.New(ErrConfigLoaderUnavailable)
	}
	cfg, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.SetDefaultModel(name); err != nil {
		return err
	}
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	fmt.Fprintf(out, "Default model set to %s\n", name)
	return nil
}
