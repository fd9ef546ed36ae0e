package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/domain"
)

// NewLanguagesCommand lists the languages a bug can be classified as.
func NewLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range domain.Languages {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
			return nil
		},
	}
}
