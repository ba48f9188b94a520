// Package cli implements the stackplan command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplan/pkg/buildinfo"
	"github.com/matzehuels/stackplan/pkg/calendar"
	pio "github.com/matzehuels/stackplan/pkg/io"
	"github.com/matzehuels/stackplan/pkg/schedule"
	"github.com/matzehuels/stackplan/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackplan"

	envRedisAddr = "STACKPLAN_REDIS_ADDR"
	envMongoURI  = "STACKPLAN_MONGO_URI"
	envStore     = "STACKPLAN_STORE"
	envScope     = "STACKPLAN_SCOPE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	store store.Config
	scope string
	today string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackplan schedules projects along their critical path",
		Long:         `Stackplan is a CLI tool for scheduling project tasks. It computes earliest and latest dates with the critical path method, books shared resources and keeps schedule snapshots in a file, Redis or MongoDB store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.store.Backend, "store", envOr(envStore, store.BackendFile), "snapshot store: none, file, redis or mongo")
	flags.StringVar(&c.store.Dir, "store-dir", "", "directory of the file store (default $XDG_CACHE_HOME/stackplan)")
	flags.StringVar(&c.store.RedisURL, "redis-addr", envOr(envRedisAddr, "localhost:6379"), "redis address (host:port)")
	flags.StringVar(&c.store.MongoURI, "mongo-uri", envOr(envMongoURI, "mongodb://localhost:27017"), "mongodb connection string")
	flags.StringVar(&c.scope, "scope", os.Getenv(envScope), "key prefix separating workspaces in a shared store")
	flags.StringVar(&c.today, "today", "", "date used as today for status changes (YYYY-MM-DD)")

	// Register all subcommands
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.criticalCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Scheduler Factory
// =============================================================================

// clock returns the clock selected by --today.
func (c *CLI) clock() (calendar.Clock, error) {
	if c.today == "" {
		return calendar.SystemClock{}, nil
	}
	d, err := calendar.Parse(c.today)
	if err != nil {
		return nil, fmt.Errorf("--today: %w", err)
	}
	return calendar.FixedClock(d), nil
}

// openProject reads a project file and schedules it.
func (c *CLI) openProject(path string) (*schedule.Scheduler, error) {
	clock, err := c.clock()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	s, err := pio.ImportFile(path, nil, schedule.WithLogger(c.Logger), schedule.WithClock(clock))
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Scheduled %d tasks", s.Graph().Len()))
	return s, nil
}

// openStore connects to the configured snapshot store. Network backends show
// a spinner while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	c.Logger.Debug("opening store", "backend", c.store.Backend)
	switch c.store.Backend {
	case store.BackendRedis, store.BackendMongo:
		spinner := newSpinnerWithContext(ctx, os.Stderr, "Connecting to "+c.store.Backend+"...")
		spinner.Start()
		st, err := store.Open(ctx, c.store)
		spinner.Stop()
		return st, err
	default:
		return store.Open(ctx, c.store)
	}
}

func (c *CLI) keyer() store.Keyer {
	if c.scope == "" {
		return store.NewDefaultKeyer()
	}
	return store.NewScopedKeyer(store.NewDefaultKeyer(), c.scope)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
