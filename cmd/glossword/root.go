package main

import (
	"context"
	"fmt"
	"io"

	"github.com/japaniel/glossword/pkg/cachedir"
	"github.com/japaniel/glossword/pkg/config"
	"github.com/japaniel/glossword/pkg/convert"
	"github.com/japaniel/glossword/pkg/db"
	"github.com/japaniel/glossword/pkg/fetch"
	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/japaniel/glossword/pkg/logging"
	"github.com/japaniel/glossword/pkg/lookup"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type options struct {
	etymology  bool
	refresh    bool
	clearCache bool
	noCache    bool
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "glossword [flags] <word>...",
		Short: "Look up the definition or etymology of an English word",
		Long: `glossword prints the dictionary definition of a word or phrase, or its
etymology with --etymology. Results are kept in a local cache so repeated
lookups work offline.`,
		Version: gloss.Version(),
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.clearCache {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.etymology, "etymology", "e", false, "look up the etymology instead of the definition")
	f.BoolVarP(&opts.refresh, "fetch-update", "f", false, "fetch the entry again and update the cache")
	f.BoolVar(&opts.clearCache, "clear-cache", false, "delete the cache directory and exit")
	f.BoolVar(&opts.noCache, "no-cache", false, "neither read nor write the cache")
	f.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, opts options, args []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Format: cfg.Log.Format, Output: stderr})

	dirPath, dirErr := cachedir.Resolve(cfg.Cache.Dir)
	if opts.clearCache {
		if dirErr != nil {
			return dirErr
		}
		if err := cachedir.New(afero.NewOsFs(), dirPath).Clear(); err != nil {
			return err
		}
		fmt.Fprintln(stderr, "Cache directory deleted")
		return nil
	}

	conv, err := convert.NewPandoc(cfg.Converter.Command)
	if err != nil {
		return err
	}
	fetcher := fetch.New(fetch.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		Logger:    log,
	})

	svcOpts := []lookup.Option{
		lookup.WithLogger(log),
		lookup.WithSites(lookup.Sites{
			DefinitionURL: cfg.Sites.DefinitionURL,
			EtymologyURL:  cfg.Sites.EtymologyURL,
		}),
	}
	if p, ok := newProgress(stderr); ok {
		svcOpts = append(svcOpts, lookup.WithProgress(p))
	}

	switch {
	case opts.noCache || cfg.Cache.Disabled:
		log.Debug().Msg("cache disabled")
	case dirErr != nil:
		log.Debug().Err(dirErr).Msg("no cache directory")
	default:
		if cache := openCache(ctx, log, cachedir.New(afero.NewOsFs(), dirPath)); cache != nil {
			defer cache.Close()
			svcOpts = append(svcOpts, lookup.WithCache(cache))
		}
	}

	svc := lookup.NewService(fetcher, conv, svcOpts...)
	return svc.Run(ctx, stdout, lookup.Request{
		Word:    gloss.JoinWords(args),
		Mode:    gloss.ModeFor(opts.etymology),
		Refresh: opts.refresh,
	})
}

// openCache returns nil when the cache cannot be used. Lookups then go
// straight to the network.
func openCache(ctx context.Context, log zerolog.Logger, dir *cachedir.Dir) *db.Cache {
	if err := dir.Ensure(); err != nil {
		log.Debug().Err(err).Msg("cache unavailable")
		return nil
	}
	cache, err := db.Open(ctx, dir.DBPath())
	if err != nil {
		log.Debug().Err(err).Str("path", dir.DBPath()).Msg("cache unavailable")
		return nil
	}
	return cache
}
