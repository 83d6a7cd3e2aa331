package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/scipunch/packard/config"
	"github.com/scipunch/packard/fetcher"
	"github.com/scipunch/packard/fetcher/types"
	"github.com/scipunch/packard/filter"
	"github.com/scipunch/packard/pipeline"
	"github.com/scipunch/packard/progress"
	"github.com/scipunch/packard/render"
)

type cli struct {
	Config       string         `help:"Path to a TOML config." default:"${config_path}"`
	Verbose      bool           `help:"Show resolved settings and debug logs." short:"v"`
	Count        *uint32        `help:"Number of items to show (default ${default_count})." short:"c"`
	SelectedList string         `help:"Feed list to read." short:"l"`
	SkipAmount   *uint32        `help:"Number of most recent items to skip." short:"s"`
	Timeout      *time.Duration `help:"Per-feed fetch timeout, e.g. 10s. No timeout by default."`
}

func (c cli) overrides() config.Overrides {
	return config.Overrides{
		Count:        c.Count,
		SkipAmount:   c.SkipAmount,
		SelectedList: c.SelectedList,
		Timeout:      c.Timeout,
	}
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("packard"),
		kong.Description("Read the latest entries of a list of RSS feeds."),
		kong.Vars{
			"config_path":   config.DefaultPath(),
			"default_count": fmt.Sprint(config.DefaultCount),
		},
	)

	setupLogging(args.Verbose || os.Getenv("DEBUG") != "")

	conf, err := loadConfig(args.Config, config.DefaultPath())
	if err != nil {
		log.Fatal(err)
	}

	params, err := conf.Resolve(args.overrides())
	if err != nil {
		log.Fatalf("failed to resolve settings from %s: %s", args.Config, err)
	}
	slog.Debug("resolved settings",
		"list", params.List,
		"count", params.Count,
		"skip", params.Skip,
		"timeout", params.Timeout,
		"sources", params.Sources,
		"filters", params.Filters)

	filters, err := filter.New(conf.Filters)
	if err != nil {
		log.Fatalf("failed to initialize filters: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink types.Progress = types.NopProgress{}
	finish := func() {}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		sink, finish = progress.Run(len(params.Sources), os.Stderr)
	}

	res := pipeline.Run(ctx, pipeline.Options{
		Sources:     params.Sources,
		Count:       params.Count,
		Skip:        params.Skip,
		Fetcher:     fetcher.FromParams(params),
		Progress:    sink,
		Filters:     filters,
		FilterNames: params.Filters,
	})
	finish()

	if ctx.Err() != nil {
		slog.Info("interrupted by user, exiting")
		return
	}

	if len(res.Failures) > 0 {
		errs := make([]error, len(res.Failures))
		for i, f := range res.Failures {
			errs[i] = f
		}
		slog.Debug("several feeds were not fetched", "feeds", errors.Join(errs...))
	}

	if err := render.NewPrinter(os.Stdout).Print(res.Items); err != nil {
		log.Fatalf("failed to print feed items: %s", err)
	}
}

// loadConfig reads the config at path. A missing file at the default location
// is created with default values, which still leave no list selected.
func loadConfig(path, defaultPath string) (config.Config, error) {
	conf, err := config.Read(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultPath {
		if err := config.Write(path, conf); err != nil {
			return conf, fmt.Errorf("failed to write default config with %w", err)
		}
		return conf, nil
	}
	if err != nil {
		return conf, fmt.Errorf("failed to read config with %w", err)
	}
	return conf, nil
}

func setupLogging(debug bool) {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "packard",
		Level:  charmlog.InfoLevel,
	})
	if debug {
		logger.SetLevel(charmlog.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}
