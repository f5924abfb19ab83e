package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zjrosen/strata/internal/app"
	"github.com/zjrosen/strata/internal/config"
	"github.com/zjrosen/strata/internal/counter"
	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/log"
	"github.com/zjrosen/strata/internal/metrics"
	"github.com/zjrosen/strata/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. The terminal's OSC 11 reply otherwise
	// races with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".strata/config.yaml"

var (
	version = "dev"

	cfgFile     string
	debugFlag   bool
	stepFlag    int
	noWatch     bool
	metricsAddr string

	cfg     config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "A layered domain registry with a counter playground",
	Long: `strata hosts an in-process domain of systems, models and utilities wired
together by an event bus, bindable properties and commands/queries.

Running strata without a subcommand opens an interactive counter built on
that domain.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .strata/config.yaml or ~/.config/strata/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log (also STRATA_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.Flags().IntVar(&stepFlag, "step", 0, "override counter.step")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"do not reload the config file when it changes")
}

// resolveConfigPath picks the config file, creating the default one in the
// working directory when none exists. "" means built-in defaults only.
func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(localConfigPath); err == nil {
		return localConfigPath
	}
	if p := config.DefaultPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if err := config.WriteDefaultConfig(localConfigPath); err != nil {
		return ""
	}
	return localConfigPath
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfgPath = resolveConfigPath()
	loaded, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("step") {
		if stepFlag == 0 {
			return fmt.Errorf("%w: --step must not be 0", config.ErrInvalid)
		}
		loaded.Counter.Step = stepFlag
	}
	if debugFlag || os.Getenv("STRATA_DEBUG") != "" {
		loaded.Debug = true
	}
	if loaded.Tracing.Enabled && loaded.Tracing.Exporter == tracing.ExporterFile && loaded.Tracing.FilePath == "" {
		loaded.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	cfg = loaded
	return nil
}

func initLogging(toFile bool) (func(), error) {
	if !cfg.Debug {
		return func() {}, nil
	}
	var (
		cleanup func()
		err     error
	)
	if toFile {
		cleanup, err = log.InitWithTeaLog(cfg.LogPath, "strata")
	} else {
		cleanup = log.InitWriter(os.Stderr)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing log: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	return cleanup, nil
}

// services holds what buildDomain started so it can be shut down.
type services struct {
	domain   *domain.Domain
	provider *tracing.Provider
	registry *prometheus.Registry
	server   *http.Server
}

// buildDomain creates the counter domain with tracing and metrics
// middleware configured from cfg.
func buildDomain() (*services, error) {
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	d := counter.New(cfg, domain.WithMiddleware(
		tracing.NewDomainMiddleware(provider.Tracer()),
		metrics.NewMiddleware(m),
	))

	rt := &services{domain: d, provider: provider, registry: reg}
	if metricsAddr != "" {
		rt.serveMetrics(metricsAddr)
	}
	return rt, nil
}

func (rt *services) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	rt.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorErr(log.CatUI, "metrics server stopped", err, "addr", addr)
		}
	}()
	log.Info(log.CatUI, "serving metrics", "addr", addr)
}

func (rt *services) shutdown() error {
	rt.domain.Teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	if rt.server != nil {
		errs = append(errs, rt.server.Shutdown(ctx))
	}
	errs = append(errs, rt.provider.Shutdown(ctx))
	return errors.Join(errs...)
}

func runApp(_ *cobra.Command, _ []string) error {
	cleanup, err := initLogging(true)
	if err != nil {
		return err
	}
	defer cleanup()

	rt, err := buildDomain()
	if err != nil {
		return err
	}

	path := cfgPath
	if path != "" {
		path, _ = filepath.Abs(path)
	}
	model := app.New(rt.domain, app.Options{
		Config:     cfg,
		ConfigPath: path,
		Watch:      !noWatch,
		Ticks:      true,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if shutdownErr := rt.shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
