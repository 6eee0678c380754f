package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/services"
	"github.com/calegria/shotwork/internal/shared"
	"github.com/calegria/shotwork/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	service  *tasks.TaskService
	resolver services.MediaResolver
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Service  *tasks.TaskService
	Resolver services.MediaResolver
	Logger   *log.Logger
	Output   io.Writer
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

	return &Runner{
		config:   opts.Config,
		service:  opts.Service,
		resolver: opts.Resolver,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, taskCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// requireService guards task commands that need a configured engine.
func (r *Runner) requireService() error {
	if r.service == nil {
		return fmt.Errorf("%w: task service not initialized, run 'shotwork setup database' first", shared.ErrServiceUnavailable)
	}
	return nil
}

// actor resolves the acting user for a command: --actor/--role flags when
// given, the [actor] config section otherwise.
func (r *Runner) actor(cmd *cli.Command) (models.Actor, error) {
	id := cmd.String("actor")
	if id == "" {
		id = r.config.Actor.ID
	}
	role := models.Role(cmd.String("role"))
	if role == "" {
		role = models.Role(r.config.Actor.Role)
	}

	if id == "" {
		return models.Actor{}, fmt.Errorf("%w: actor id (--actor or [actor] config)", shared.ErrMissingArgument)
	}
	if !role.Valid() {
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}

	return models.Actor{ActorID: id, Role: role}, nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
