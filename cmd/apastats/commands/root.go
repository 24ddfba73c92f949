package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"apastats/lib/browser"
	"apastats/lib/configutil"
	"apastats/lib/runstore"
	"apastats/lib/runstore/db"
	"apastats/lib/scrapers/apaleague"
	"apastats/lib/serviceutil"
	"apastats/lib/sqliteutil"
	"apastats/lib/statcache"
	"apastats/services/apastats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apastats",
	Short: "apastats extracts player and team stats from the APA member portal.",
}

var jsonOut *bool

func init() {
	jsonOut = rootCmd.PersistentFlags().Bool("json", false, "Print raw JSON instead of tables.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type CredentialsConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BrowserConfig struct {
	Headless       bool   `json:"headless"`
	TimeoutMs      int    `json:"timeout_ms"`
	UserAgent      string `json:"user_agent"`
	ExecutablePath string `json:"executable_path"`
}

type ScrapingConfig struct {
	MaxRetries  int `json:"max_retries"`
	DelayMinMs  int `json:"delay_min_ms"`
	DelayMaxMs  int `json:"delay_max_ms"`
	ScrollLimit int `json:"scroll_limit"`
}

// Config mirrors apastats.json5. Anything left out falls back to the
// portal defaults baked into the libraries.
type Config struct {
	BaseURL     string            `json:"base_url"`
	League      string            `json:"league"`
	Credentials CredentialsConfig `json:"credentials"`
	Browser     BrowserConfig     `json:"browser"`
	Scraping    ScrapingConfig    `json:"scraping"`
	StateDir    string            `json:"state_dir"`
	HistoryDB   string            `json:"history_db"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfigDefault("apastats.json5", Config{
		BaseURL:  apaleague.DefaultBaseURL,
		League:   apaleague.DefaultLeague,
		StateDir: apaleague.DefaultStateDir().Root,
		Browser: BrowserConfig{
			TimeoutMs: 30_000,
			UserAgent: apaleague.DefaultUserAgent,
		},
		Scraping: ScrapingConfig{
			MaxRetries:  3,
			DelayMinMs:  2000,
			DelayMaxMs:  4000,
			ScrollLimit: 30,
		},
	})
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(cfg.StateDir, "history.db")
	}
	return cfg
}

// newService launches chromium with the saved storage state and wires
// the full stack behind the orchestrator. The returned cleanup closes
// the browser and the history db.
func newService(ctx context.Context, cfg Config) (apastats.Service, func()) {
	stateDir := apaleague.StateDir{Root: cfg.StateDir}
	err := stateDir.EnsureLayout()
	if err != nil {
		serviceutil.Fatal("failed to create state dir", err)
	}

	timeout := time.Duration(cfg.Browser.TimeoutMs) * time.Millisecond
	engine, err := browser.Launch(ctx, browser.Options{
		Headless:       cfg.Browser.Headless,
		UserAgent:      cfg.Browser.UserAgent,
		StatePath:      stateDir.BrowserStateFile(),
		Timeout:        timeout,
		ExecutablePath: cfg.Browser.ExecutablePath,
	})
	if err != nil {
		serviceutil.Fatal("failed to launch browser", err)
	}

	client := apaleague.NewClient(engine, apaleague.Options{
		BaseURL:       cfg.BaseURL,
		League:        cfg.League,
		StateDir:      stateDir,
		ActionTimeout: timeout,
		MaxRetries:    cfg.Scraping.MaxRetries,
		ScrollLimit:   cfg.Scraping.ScrollLimit,
		DelayMin:      time.Duration(cfg.Scraping.DelayMinMs) * time.Millisecond,
		DelayMax:      time.Duration(cfg.Scraping.DelayMaxMs) * time.Millisecond,
	})

	cache, err := statcache.NewFileStore(stateDir.CacheDir())
	if err != nil {
		serviceutil.Fatal("failed to open cache", err)
	}
	history, err := sqliteutil.OpenDB(db.Schema, cfg.HistoryDB)
	if err != nil {
		serviceutil.Fatal("failed to open history db", err)
	}

	svc := apastats.NewService(client, cache, runstore.NewStore(history), cfg.League)
	cleanup := func() {
		history.Close()
		engine.Close(context.Background())
	}
	return svc, cleanup
}

// openCache opens the file cache without paying for a browser launch,
// for the commands that only touch local state.
func openCache(cfg Config) statcache.FileStore {
	cache, err := statcache.NewFileStore(apaleague.StateDir{Root: cfg.StateDir}.CacheDir())
	if err != nil {
		serviceutil.Fatal("failed to open cache", err)
	}
	return cache
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// cell renders an optional stat, parse gaps show up as a dash.
func cell[T any](v *T) any {
	if v == nil {
		return "-"
	}
	return *v
}
