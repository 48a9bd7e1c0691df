// Command seasonsync switches the data core to a season and backfills it, in process,
// against the same configuration as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	flag "github.com/spf13/pflag"

	"github.com/preston-bernstein/nba-stats-service/internal/config"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/server"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

const appVersion = "dev"

const closeTimeout = 10 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	season     string
	configFile string
	syncOnly   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("seasonsync", flag.ContinueOnError)
	fs.StringVarP(&opts.season, "season", "s", "", "season to switch to, e.g. 2025-26 (default: the season in progress)")
	fs.StringVarP(&opts.configFile, "config", "c", os.Getenv("CONFIG_FILE"), "YAML config file")
	fs.BoolVar(&opts.syncOnly, "sync-only", false, "backfill without invalidating other seasons")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.season == "" {
		opts.season = timeutil.SeasonForDate(time.Now().In(timeutil.LocationOrDefault("")))
	}
	season, err := timeutil.NormalizeSeason(opts.season)
	if err != nil {
		return options{}, err
	}
	opts.season = season
	return opts, nil
}

// run writes the rollover result, or the sync report with --sync-only, to out as JSON.
// The core is closed on every path.
func run(ctx context.Context, args []string, out io.Writer) (err error) {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "nba-stats-seasonsync",
		Version: appVersion,
		Output:  os.Stderr,
	})

	core, err := server.OpenCore(ctx, cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("open core: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		err = errors.Join(err, core.Close(closeCtx))
	}()

	var result any
	if opts.syncOnly {
		result, err = core.Syncer.Sync(ctx, opts.season)
	} else {
		result, err = core.Syncer.Rollover(ctx, opts.season)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return errors.Join(err, encErr)
	}
	return err
}
