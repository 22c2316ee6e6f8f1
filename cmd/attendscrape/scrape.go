// cmd/attendscrape/scrape.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/output"
	"github.com/valpere/AttendScrapexter/internal/scraper"
	"github.com/valpere/AttendScrapexter/internal/utils"
	"github.com/valpere/AttendScrapexter/pkg/api"
)

// passwordEnv is read when --password is not given, keeping it out of shell history.
const passwordEnv = "ATTENDSCRAPE_PASSWORD"

type scrapeOptions struct {
	username  string
	password  string
	format    string
	out       string
	serverURL string
}

func newScrapeCmd(global *globalOptions) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape -u ROLL_NUMBER",
		Short: "Log in and print attendance",
		Long: "Log in to the portal with a local headless Chrome, or through a running\n" +
			"attendscrape server with --server, and print the attendance summary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.username, "username", "u", "", "roll number (required)")
	f.StringVarP(&opts.password, "password", "p", "", "password (default $"+passwordEnv+")")
	f.StringVarP(&opts.format, "format", "f", "", "output format: json, csv, xlsx, yaml (default from --out extension, else json)")
	f.StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")
	f.StringVar(&opts.serverURL, "server", "", "use a running attendscrape server instead of a local browser")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runScrape(cmd *cobra.Command, global *globalOptions, opts *scrapeOptions) error {
	if opts.password == "" {
		opts.password = os.Getenv(passwordEnv)
	}
	if opts.password == "" {
		return fmt.Errorf("password required: pass --password or set $%s", passwordEnv)
	}

	format, err := resolveFormat(opts.format, opts.out)
	if err != nil {
		return err
	}
	if format == output.FormatXLSX && opts.out == "" {
		return fmt.Errorf("xlsx output needs --out")
	}

	var result *attendance.AttendanceResult
	if opts.serverURL != "" {
		result, err = scrapeRemote(cmd.Context(), opts)
	} else {
		result, err = scrapeLocal(cmd.Context(), global, opts)
	}
	if err != nil {
		return err
	}

	manager := output.NewManager()
	if opts.out != "" {
		if err := manager.WriteFile(format, opts.out, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d courses, overall %.2f%% written to %s\n",
			len(result.Courses), result.OverallPercentage, opts.out)
		return nil
	}
	return manager.Write(format, cmd.OutOrStdout(), result)
}

func resolveFormat(flag, out string) (output.OutputFormat, error) {
	if flag != "" {
		return output.ParseFormat(flag)
	}
	if f, ok := output.FormatFromPath(out); ok {
		return f, nil
	}
	return output.FormatJSON, nil
}

func scrapeLocal(ctx context.Context, global *globalOptions, opts *scrapeOptions) (*attendance.AttendanceResult, error) {
	cfg, err := global.loadConfig()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if global.verbose {
		level = "debug"
	}
	logger, err := utils.NewZapLogger(utils.LogConfig{Level: level, Format: "console", Stderr: true})
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	factory, err := scraper.NewFactory(cfg)
	if err != nil {
		return nil, err
	}

	messages := apperrors.NewMessageHandler(global.verbose)
	fail := func(err error) error {
		fmt.Fprint(os.Stderr, messages.FormatErrorForCLI(err))
		return &exitError{code: messages.ExitCode(err), err: err}
	}

	pool := factory.NewPool(logger)
	if err := pool.Start(ctx); err != nil {
		return nil, fail(err)
	}
	defer pool.Stop()

	service := factory.NewService(pool, nil, logger)
	result, err := service.ScrapeAttendance(ctx, opts.username, opts.password)
	if err != nil {
		return nil, fail(err)
	}
	return result, nil
}

func scrapeRemote(ctx context.Context, opts *scrapeOptions) (*attendance.AttendanceResult, error) {
	client, err := api.NewClient(api.ClientConfig{BaseURL: opts.serverURL})
	if err != nil {
		return nil, err
	}

	result, err := client.ScrapeAttendance(ctx, opts.username, opts.password)
	if err != nil {
		return nil, remoteExit(os.Stderr, err)
	}
	return result, nil
}

// remoteExit maps server answers onto the same exit codes a local scrape uses.
func remoteExit(stderr io.Writer, err error) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	fmt.Fprintf(stderr, "✗ %s\n", apiErr.Detail)

	code := 1
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		code = 2
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		code = 4
	}
	return &exitError{code: code, err: err}
}
