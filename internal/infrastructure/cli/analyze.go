package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/app"
	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
)

type analyzeFlags struct {
	image      string
	file       string
	severity   string
	language   string
	complexity string
	depth      int
	report     string
}

func newAnalyzeCommand(container *app.Container, model *string) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [description...]",
		Short: "Analyze a single bug report and exit",
		Long: "Analyze one error description, screenshot (--image) or source file (--file).\n" +
			"Pass '-' as the description to read it from stdin.",
		Example: `  bugsqa analyze "TypeError: Cannot read properties of undefined (reading 'map')"
  bugsqa analyze --image crash.png --severity High
  go test ./... 2>&1 | bugsqa analyze - --language Go --report ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := flags.submission(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := container.Analyzer(ctx, *model)
			if err != nil {
				return err
			}
			sess := container.NewSession(svc)
			if err := flags.apply(cmd, sess); err != nil {
				return err
			}

			return runAnalyze(ctx, cmd.OutOrStdout(), container, sess, sub, flags.report)
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "Screenshot to analyze (png, jpg)")
	cmd.Flags().StringVar(&flags.file, "file", "", "Source file to analyze")
	cmd.Flags().StringVarP(&flags.severity, "severity", "s", "", "Severity: Low|Medium|High|Critical")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Language (see 'bugsqa languages')")
	cmd.Flags().StringVarP(&flags.complexity, "complexity", "c", "", "Complexity: Beginner|Intermediate|Advanced")
	cmd.Flags().IntVarP(&flags.depth, "depth", "d", domain.DefaultAnalysisDepth, "Analysis depth from 1 (quick fix) to 5 (deep dive)")
	cmd.Flags().StringVar(&flags.report, "report", "", "Also write a markdown report into this directory")
	cmd.MarkFlagsMutuallyExclusive("image", "file")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, container *app.Container, sess *session.Session, sub session.Submission, reportDir string) error {
	var spinnerOut io.Writer
	if isTerminal(out) {
		spinnerOut = out
	}
	outcome, err := Submit(ctx, sess, sub, spinnerOut)
	if err != nil {
		return err
	}

	render := NewRenderer(out, markdownFor(out, container.Config.Preferences.RenderMarkdown))
	render.Outcome(outcome)

	if reportDir != "" {
		path, err := SaveReport(sess, container.ReportWriter, reportDir)
		if err != nil {
			return err
		}
		render.Success("Report saved to %s", path)
	}
	if outcome.Failed {
		return fmt.Errorf("analysis of bug #%d failed", outcome.Record.Sequence)
	}
	return nil
}

func (f analyzeFlags) submission(args []string, stdin io.Reader) (session.Submission, error) {
	switch {
	case f.image != "":
		if len(args) > 0 {
			return session.Submission{}, fmt.Errorf("%w: --image takes no description", domain.ErrValidation)
		}
		return LoadImage(f.image)
	case f.file != "":
		if len(args) > 0 {
			return session.Submission{}, fmt.Errorf("%w: --file takes no description", domain.ErrValidation)
		}
		return LoadSourceFile(f.file)
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(io.LimitReader(stdin, domain.MaxSourceFileBytes))
		if err != nil {
			return session.Submission{}, fmt.Errorf("read stdin: %w", err)
		}
		return session.Submission{Kind: domain.KindText, Text: string(data)}, nil
	case len(args) == 0:
		return session.Submission{}, fmt.Errorf("%w: describe the bug, or pass --image or --file", domain.ErrValidation)
	default:
		return session.Submission{Kind: domain.KindText, Text: strings.Join(args, " ")}, nil
	}
}

// apply overrides configured preferences with the flags the user actually set.
func (f analyzeFlags) apply(cmd *cobra.Command, sess *session.Session) error {
	overrides := []struct {
		flag  string
		value string
	}{
		{"severity", f.severity},
		{"language", f.language},
		{"complexity", f.complexity},
		{"depth", fmt.Sprint(f.depth)},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := sess.Set(o.flag, o.value); err != nil {
			return err
		}
	}
	return nil
}
