package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"p2composite/internal/app"
	"p2composite/internal/config"
	appErrors "p2composite/internal/errors"
	"p2composite/internal/infra/fetch"
	"p2composite/internal/infra/fs"
	"p2composite/internal/infra/p2"
	"p2composite/internal/logging"
	"p2composite/internal/presentation"
	"p2composite/internal/tui"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitCommandLine = 255
	ExitRun         = 256
)

// Env carries the process streams and the repository adapters.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Store  app.RepositoryStore
	Fetch  app.Fetcher
	// Interactive enables the progress display on Stderr.
	Interactive bool
}

// DefaultEnv wires the OS streams to the file and HTTP adapters.
func DefaultEnv() Env {
	fetcher := fetch.New()
	return Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Store:       p2.Store{Fetcher: fetcher, FS: fs.OSFS{}},
		Fetch:       fetcher,
		Interactive: isTerminal(os.Stderr),
	}
}

func NewRootCommand(env Env, code *int) *cobra.Command {
	return &cobra.Command{
		Use:   "p2composite -location repositoryURI [options]",
		Short: "Create, modify and list p2 composite repositories",
		// Options are single-dash and case-insensitive, which pflag cannot
		// express; config.Parse handles them.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = Run(cmd.Context(), env, args)
			return nil
		},
	}
}

// Execute runs the command and returns the process exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	if args == nil {
		args = []string{}
	}
	code := ExitOK
	cmd := NewRootCommand(env, &code)
	cmd.SetArgs(args)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitCommandLine
	}
	return code
}

// Run parses args and performs the update or the listing.
func Run(ctx context.Context, env Env, args []string) int {
	printer := presentation.Printer{Out: env.Stdout, Err: env.Stderr}

	cfg, err := config.Parse(args)
	if errors.Is(err, config.ErrHelp) {
		printer.PrintUsage()
		return ExitOK
	}
	if err != nil {
		printer.PrintError(appErrors.UserMessage(appErrors.Wrap(appErrors.InvalidArgs, "parse", "", err)))
		printer.PrintUsage()
		return ExitCommandLine
	}

	logger := logging.New(env.Stderr, cfg.Verbose)
	for _, line := range presentation.Warnings(cfg.Ignored) {
		logger.Verbosef("%s", line)
	}

	application := &app.CompositeApplication{
		Store:   env.Store,
		Fetcher: env.Fetch,
		Logger:  logger,
	}
	apply(application, cfg)

	if cfg.List {
		children, err := application.Children(ctx)
		if err != nil {
			return fail(printer, err)
		}
		printer.PrintChildren(children)
		return ExitOK
	}

	// Verbose lines would tear the progress display.
	if env.Interactive && !cfg.Verbose {
		err = tui.Run(ctx, env.Stderr, cfg.Destinations[0].Location.String(), func(ctx context.Context, r tui.Reporter) error {
			application.OnStep = r.Step
			application.OnVerify = r.Verify
			return application.Run(ctx)
		})
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		return fail(printer, err)
	}
	return ExitOK
}

// apply hands the parsed configuration to the application.
func apply(a *app.CompositeApplication, cfg config.Config) {
	for _, d := range cfg.Destinations {
		a.AddDestination(d)
	}
	for _, c := range cfg.Add {
		a.AddChild(c)
	}
	for _, c := range cfg.Remove {
		a.RemoveChild(c)
	}
	if cfg.Comparator != "" {
		a.SetComparator(cfg.Comparator)
	}
	if cfg.FailOnExists {
		a.SetFailOnExists(true)
	}
}

func fail(printer presentation.Printer, err error) int {
	printer.PrintError(appErrors.UserMessage(err))
	printer.PrintUsage()
	return ExitRun
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
