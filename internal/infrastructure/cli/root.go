package cli

import (
	"context"
	"fmt"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/app"
	"github.com/doeshing/bugsqa/internal/infrastructure/cli/commands"
	"github.com/doeshing/bugsqa/internal/pkg/filesystem"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	var model string
	shellCmd := newShellCommand(container, &model)

	root := &cobra.Command{
		Use:   "bugsqa",
		Short: "Bugs.qa - AI bug analysis assistant",
		Long: "Bugs.qa sends error messages, screenshots and source files to an AI service,\n" +
			"keeps a session history of the analyses and builds statistics and reports from it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellCmd.RunE(cmd, args)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = container.Logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")

	root.AddCommand(shellCmd)
	root.AddCommand(newAnalyzeCommand(container, &model))
	root.AddCommand(commands.NewLanguagesCommand())
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewModelsCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}

func newShellCommand(container *app.Container, model *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive analysis session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := container.Analyzer(ctx, *model)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          shellPrompt,
				HistoryFile:     filesystem.AppPath("shell_history"),
				AutoComplete:    shellCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("start shell: %w", err)
			}
			defer rl.Close()

			out := cmd.OutOrStdout()
			shell := NewShell(ShellConfig{
				Session:   container.NewSession(svc),
				Reader:    rl,
				Out:       rl.Stdout(),
				Markdown:  markdownFor(out, container.Config.Preferences.RenderMarkdown),
				Reports:   container.ReportWriter,
				ReportDir: container.Config.Report.OutputDir,
				Exporters: container.ExporterFor,
				Spinner:   isTerminal(out),
			})
			return shell.Run(ctx)
		},
	}
}
