package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/version"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show bugsqa version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}
			displayVersionInformation(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func displayVersionInformation(out io.Writer) {
	fmt.Fprintf(out, "bugsqa %s (%s/%s)\n", version.Version, runtime.GOOS, runtime.GOARCH)
	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}
	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
}
