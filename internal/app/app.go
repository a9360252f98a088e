// Package app wires configuration, cache, fetcher and renderer together and
// runs one report invocation.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"consultantpdf/config"
	"consultantpdf/internal/cache"
	"consultantpdf/internal/directory"
	"consultantpdf/internal/httpclient"
	"consultantpdf/internal/report"
	"consultantpdf/internal/resolve"
	"consultantpdf/internal/resource"
	"consultantpdf/internal/upstream"
)

// CoverStartLayout is the accepted --cover-start format.
const CoverStartLayout = "2006-01-02"

// App holds the dependencies of one invocation.
type App struct {
	config    *config.Config
	cache     cache.Cache
	metrics   *resource.Metrics
	directory *directory.Directory
	logger    *slog.Logger
	stdout    io.Writer
	now       func() time.Time

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the options for creating an App.
type Config struct {
	// AppConfig is the loaded application configuration.
	AppConfig *config.Config

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Stdout receives listings and the success line.
	Stdout io.Writer
}

// Options are the per-run filters taken from the command line.
type Options struct {
	Speciality string
	Plan       string
	CoverStart string
	Output     string

	// Overview is set when no flag was given: print Usage and both listings.
	Overview bool
	Usage    string
}

// Result describes a generated report.
type Result struct {
	OutputPath string
	Speciality directory.Speciality
	Plan       string
	Rows       []report.Row
}

// New creates an App. The caller must call Shutdown to release the cache and
// flush metrics.
func New(cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if cfg.Stdout == nil {
		return nil, fmt.Errorf("stdout is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.AppConfig

	c, err := cache.New(appCfg.Cache)
	if err != nil {
		// The run still works against the remote API and fallback files.
		logger.Warn("cache unavailable, continuing without persistence", "cache_type", appCfg.Cache.Type, "error", err)
		c = cache.NewLocalCache("")
	}

	httpCfg := httpclient.WithTimeouts(appCfg.HTTPTimeout(), time.Duration(appCfg.HTTP.ResponseHeaderTimeout)*time.Second)
	remote := upstream.NewClient(appCfg.API.BaseURL, httpclient.NewHTTPClient(&httpCfg), appCfg.API.UserAgent)

	var metrics *resource.Metrics
	if appCfg.Metrics.Enabled {
		metrics = resource.NewMetrics()
	}

	fetcher := resource.NewFetcher(c, remote, metrics, logger)

	logger.Debug("app initialized",
		"cache_type", appCfg.Cache.Type,
		"cache_max_age", appCfg.CacheMaxAge(),
		"base_url", appCfg.API.BaseURL,
		"fallback_dir", appCfg.Fallback.Dir,
	)

	return &App{
		config:    appCfg,
		cache:     c,
		metrics:   metrics,
		directory: directory.New(fetcher, resource.NewCatalog(appCfg)),
		logger:    logger,
		stdout:    cfg.Stdout,
		now:       time.Now,
	}, nil
}

// Run executes one invocation. It returns a nil Result when only listings
// were printed.
func (a *App) Run(ctx context.Context, opts Options) (*Result, error) {
	coverStart, err := a.coverStart(opts.CoverStart)
	if err != nil {
		return nil, err
	}

	specs, err := a.directory.Specialities(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Overview {
		plans, err := a.directory.Plans(ctx, coverStart)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(a.stdout, opts.Usage)
		fmt.Fprintln(a.stdout)
		printPlans(a.stdout, "Available plans:", plans)
		fmt.Fprintln(a.stdout)
		printSpecialities(a.stdout, "Available specialities:", specs)
		return nil, nil
	}

	if opts.Speciality == "" {
		printSpecialities(a.stdout, "Available specialities:", specs)
		return nil, nil
	}

	spec, err := resolve.ResolveSpeciality(opts.Speciality, specs)
	if err != nil {
		printSpecialities(a.stdout, "Unknown speciality. Choose one of:", specs)
		return nil, err
	}

	plans, err := a.directory.Plans(ctx, coverStart)
	if err != nil {
		return nil, err
	}
	planInput := opts.Plan
	if planInput == "" {
		planInput = a.config.Report.DefaultPlan
	}
	plan, err := resolve.ResolvePlan(planInput, plans)
	if err != nil {
		printPlans(a.stdout, "Unknown plan. Choose one of:", plans)
		return nil, err
	}

	hospitals, err := a.directory.Hospitals(ctx)
	if err != nil {
		return nil, err
	}
	consultants, err := a.directory.Consultants(ctx, spec.Code)
	if err != nil {
		return nil, err
	}

	rows := report.BuildRows(consultants, hospitals)
	path := opts.Output
	if path == "" {
		path = filepath.Join(a.config.Report.OutputDir, report.DefaultFilename(spec.Code, plan))
	}

	doc := report.Document{Speciality: spec.Name, Plan: plan, Rows: rows}
	if err := report.RenderFile(path, doc); err != nil {
		return nil, err
	}
	a.logger.Info("report rendered", "speciality", spec.Code, "plan", plan, "rows", len(rows), "path", path)
	fmt.Fprintf(a.stdout, "PDF generated successfully: %s\n", path)

	return &Result{OutputPath: path, Speciality: spec, Plan: plan, Rows: rows}, nil
}

func (a *App) coverStart(input string) (string, error) {
	if input == "" {
		return a.now().Format(CoverStartLayout), nil
	}
	t, err := time.Parse(CoverStartLayout, input)
	if err != nil {
		return "", fmt.Errorf("invalid --cover-start %q: expected YYYY-MM-DD", input)
	}
	return t.Format(CoverStartLayout), nil
}

// Shutdown writes the metrics textfile when enabled and closes the cache.
// It is idempotent; every step is attempted and failures are joined.
func (a *App) Shutdown(_ context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	var errs []error

	if a.metrics != nil {
		// Metrics are best-effort; a failed textfile never fails the run.
		if err := a.metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
			a.logger.Warn("failed to write metrics textfile", "path", a.config.Metrics.Textfile, "error", err)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ExitCode maps a Run error to the process exit status: 0 on success, 1 for
// an unknown speciality or plan, 2 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var unknownSpec *resolve.UnknownSpecialityError
	var unknownPlan *resolve.UnknownPlanError
	if errors.As(err, &unknownSpec) || errors.As(err, &unknownPlan) {
		return 1
	}
	return 2
}

// IsUsageError reports whether err was already explained to the user on stdout.
func IsUsageError(err error) bool {
	return ExitCode(err) == 1
}
