package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doeshing/bugsqa/internal/app"
	"github.com/doeshing/bugsqa/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d check(s) failed, first: %s", len(failed), failed[0].Name)
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			statusColor(check.Status).Sprint(strings.ToUpper(string(check.Status))),
			check.Name,
			check.Details)
	}
}

func statusColor(status domain.HealthStatus) *color.Color {
	switch status {
	case domain.HealthOK:
		return color.New(color.FgGreen)
	case domain.HealthWarn:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
