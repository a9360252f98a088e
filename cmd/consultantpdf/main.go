// Package main is the entry point for the consultant directory PDF generator.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"consultantpdf/config"
	"consultantpdf/internal/app"
	"consultantpdf/internal/logging"
)

type flags struct {
	plan       string
	speciality string
	coverStart string
	output     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and maps its error to an exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	code := app.ExitCode(err)
	if code > 1 {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "consultantpdf",
		Short:         "Generate a PDF list of consultants for a speciality and plan",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&f.plan, "plan", "p", "", "plan name, matched case-insensitively (default from report.default_plan)")
	cmd.Flags().StringVarP(&f.speciality, "speciality", "s", "", "speciality code or name, e.g. DERM or Dermatology")
	cmd.Flags().StringVar(&f.coverStart, "cover-start", "", "plan cover start date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output PDF path (default consultants_<speciality>_<plan>.pdf)")
	return cmd
}

func run(cmd *cobra.Command, f flags, stdout, stderr io.Writer) error {
	result, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := result.Config

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if result.Source != "" {
		logger.Debug("config loaded", "path", result.Source)
	}

	application, err := app.New(app.Config{AppConfig: cfg, Logger: logger, Stdout: stdout})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	}()

	_, err = application.Run(cmd.Context(), app.Options{
		Speciality: f.speciality,
		Plan:       f.plan,
		CoverStart: f.coverStart,
		Output:     f.output,
		Overview:   cmd.Flags().NFlag() == 0,
		Usage:      strings.TrimRight(cmd.UsageString(), "\n"),
	})
	return err
}
