package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
	"github.com/lehigh-university-libraries/bggsearch/internal/catalog"
	"github.com/lehigh-university-libraries/bggsearch/internal/config"
	"github.com/lehigh-university-libraries/bggsearch/internal/gallery"
	"github.com/lehigh-university-libraries/bggsearch/internal/images"
	"github.com/lehigh-university-libraries/bggsearch/internal/logging"
	"github.com/lehigh-university-libraries/bggsearch/internal/results"
	"github.com/spf13/cobra"
)

// app carries the configuration shared by every subcommand
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "bggsearch",
		Short: "Search BoardGameGeek from a launcher with cached game icons",
		Long: `bggsearch searches the BoardGameGeek catalog and prints launcher result items.

Each game is shown with its representative image, downloaded once and cached
on disk so repeated searches for the same game need no extra requests.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config file (default ~/.config/bggsearch/config.yaml, env BGG_CONFIG)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	// Add subcommands
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newCacheCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}

// init loads configuration and installs the logger. Logs go to stderr so
// stdout stays reserved for launcher output.
func (a *app) init(stderr io.Writer) error {
	path := a.configPath
	if path == "" {
		path = strings.TrimSpace(os.Getenv("BGG_CONFIG"))
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.HTTP.Timeout}
}

func (a *app) openStore() (cache.Store, error) {
	store, err := cache.Open(cache.Options{
		Backend: a.cfg.Cache.Backend,
		Path:    a.cfg.Cache.Path,
		Lock:    a.cfg.Cache.Lock,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open icon cache: %w", err)
	}
	return store, nil
}

func (a *app) newResolver(store cache.Store) *images.Resolver {
	hc := a.httpClient()
	lister := gallery.NewClient(a.cfg.Images.APIBaseURL, gallery.WithHTTPClient(hc))
	return images.NewResolver(lister, store,
		images.WithIconDir(a.cfg.Images.Dir),
		images.WithHTTPClient(hc),
		images.WithLogger(a.logger),
	)
}

func (a *app) newAssembler(store cache.Store) *results.Assembler {
	searcher := catalog.NewClient(a.cfg.Catalog.BaseURL, catalog.WithHTTPClient(a.httpClient()))
	return results.NewAssembler(searcher, a.newResolver(store),
		results.WithIsolatedFailures(a.cfg.Search.IsolateIconErrors),
		results.WithLogger(a.logger),
	)
}
