package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/criteria/cli/cmd"
	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
	"github.com/ardnew/criteria/pkg"
)

// CLI is the top-level command-line interface.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Bind  bindConfig  `embed:"" group:"bind"`

	Source  []string         `help:"Expression file(s), one expression per line, or '-' for stdin" name:"source" short:"s" type:"existingfile"`
	Version kong.VersionFlag `help:"Print version and exit"                                                   short:"V"`

	Eval  cmd.Eval  `cmd:"" default:"withargs" help:"Evaluate expressions"`
	Bench cmd.Bench `cmd:""                    help:"Time repeated evaluation of one expression"`
	Repl  cmd.Repl  `cmd:""                    help:"Evaluate expressions interactively"`
	Set   cmd.Set   `cmd:""                    help:"Store a variable in the --db binding store"`
}

// Run parses args and executes the selected command. The exit function is
// called with the exit code when kong exits early, for example after --help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) (err error) {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancelCause(ctx)
	defer func() { cancel(err) }()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{
			cli.Log.group(), cli.Pprof.group(), cli.Bind.group(),
		}),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	defer cli.Pprof.start(ctx)()

	scope, release, err := cli.Bind.scope(ctx)
	defer releaseScope(release, &err)

	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithScope(ctx, scope)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)

	log.TraceContext(ctx, "run", slog.String("command", ktx.Command()))

	if err := ktx.Run(ctx, &cli); err != nil {
		return lang.WrapError(err).With(slog.String("command", ktx.Command()))
	}

	return nil
}
