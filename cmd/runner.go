package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/feed"
	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/repositories"
	"github.com/desertthunder/roster/internal/shared"
	"github.com/desertthunder/roster/internal/team"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store, broker and gateway are opened on first use so commands that need none of
// them (setup, help) never touch the database or the network.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	broker  feed.Broker
	store   *repositories.Store
	gateway notify.Gateway
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      *repositories.Store
	Broker     feed.Broker
	Gateway    notify.Gateway
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		broker:     opts.Broker,
		gateway:    opts.Gateway,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, seedCommand, reconcileCommand, teamCommand, songsCommand, noticesCommand, eventsCommand,
		notifyCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. to keep log lines out of a running TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Store opens the database, runs migrations and connects the change feed on first use.
func (r *Runner) Store(ctx context.Context) (*repositories.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	if r.broker == nil {
		broker, err := feed.New(ctx, r.config.Feed, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect change feed: %w", err)
		}
		r.broker = broker
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.store = repositories.NewStore(db, r.broker, r.logger)
	return r.store, nil
}

// Gateway builds the configured notification gateway on first use.
func (r *Runner) Gateway(ctx context.Context) (notify.Gateway, error) {
	if r.gateway != nil {
		return r.gateway, nil
	}
	gw, err := notify.New(ctx, r.config.Notifications, r.httpClient, r.logger)
	if err != nil {
		return nil, err
	}
	r.gateway = gw
	return gw, nil
}

func (r *Runner) team(ctx context.Context) (*team.Service, *repositories.Store, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, nil, err
	}
	return team.NewService(store, r.logger), store, nil
}

// Close releases whatever the runner opened.
func (r *Runner) Close() error {
	if q, ok := r.gateway.(io.Closer); ok {
		q.Close()
	}
	if r.broker != nil {
		r.broker.Close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
