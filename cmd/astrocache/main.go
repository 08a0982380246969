// Command astrocache inspects and maintains an astrocache installation.
//
//	astrocache [-config file] info [-dir d]...
//	astrocache [-config file] cleanup [-max-age 720h]
//	astrocache [-config file] clear (-name n | -all)
//	astrocache [-config file] mem
//	astrocache recommend
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/astrocache"
	"github.com/hupe1980/astrocache/cache"
	"github.com/hupe1980/astrocache/memory"
	"golang.org/x/sync/errgroup"
)

var errUsage = errors.New("usage")

type arrayFlags []string

func (a *arrayFlags) String() string {
	return fmt.Sprintf("%v", *a)
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("astrocache", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file")
	verbose := global.Bool("v", false, "debug logging")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: astrocache [-config file] [-v] <info|cleanup|clear|mem|recommend> [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := astrocache.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "astrocache:", err)
		return 1
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := astrocache.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).WithComponent("cli")

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "info":
		err = runInfo(ctx, cfg, rest, stdout, stderr)
	case "cleanup":
		err = runCleanup(ctx, cfg, logger, rest, stdout, stderr)
	case "clear":
		err = runClear(ctx, cfg, logger, rest, stdout, stderr)
	case "mem":
		err = runMem(ctx, cfg, logger, stdout)
	case "recommend":
		n := memory.RecommendCacheSize()
		fmt.Fprintf(stdout, "%s\t(%d bytes)\n", humanize.IBytes(n), n)
	default:
		fmt.Fprintf(stderr, "astrocache: unknown command %q\n", cmd)
		global.Usage()
		return 2
	}

	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	case err != nil:
		fmt.Fprintln(stderr, "astrocache:", err)
		return 1
	}
	return 0
}

type dirReport struct {
	dir     string
	entries []cache.EntryInfo
}

func runInfo(ctx context.Context, cfg astrocache.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var dirs arrayFlags
	fs.Var(&dirs, "dir", "cache directory to scan (repeatable, default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(dirs) == 0 {
		dirs = append(dirs, cfg.CacheDir)
	}

	reports := make([]dirReport, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := cache.New(dir, cache.WithMaxAge(cfg.MaxAge.Duration()), cache.WithoutCreate()).Info()
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			reports[i] = dirReport{dir: dir, entries: entries}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		var total int64
		for _, e := range r.entries {
			total += e.Size
		}
		fmt.Fprintf(tw, "%s\t%d entries\t%s\n", r.dir, len(r.entries), humanize.IBytes(uint64(total)))
		for _, e := range r.entries {
			name, state := e.Name, e.Codec+"/"+e.Compression
			if e.Corrupt {
				name, state = e.File, "corrupt"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				name, humanize.IBytes(uint64(e.Size)), humanize.Time(e.ModTime), state)
		}
	}
	return tw.Flush()
}

func runCleanup(ctx context.Context, cfg astrocache.Config, logger *astrocache.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	maxAge := fs.Duration("max-age", cfg.MaxAge.Duration(), "remove entries older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store := cache.New(cfg.CacheDir, cache.WithMaxAge(cfg.MaxAge.Duration()), cache.WithoutCreate())
	n, err := store.CleanupOldEntries(*maxAge)
	logger.LogCleanup(ctx, store.Dir(), n, err)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %d entries older than %s\n", n, *maxAge)
	return nil
}

func runClear(ctx context.Context, cfg astrocache.Config, logger *astrocache.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "", "remove every fingerprint variant of this entry name")
	all := fs.Bool("all", false, "remove the whole cache directory contents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*name == "") == !*all {
		fmt.Fprintln(stderr, "clear: exactly one of -name or -all is required")
		return errUsage
	}

	store := cache.New(cfg.CacheDir, cache.WithoutCreate())
	var (
		n   int
		err error
	)
	if *all {
		n, err = store.ClearAll()
	} else {
		n, err = store.Clear(*name)
	}
	logger.LogClear(ctx, *name, n, err)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %d entries\n", n)
	return nil
}

func runMem(ctx context.Context, cfg astrocache.Config, logger *astrocache.Logger, stdout io.Writer) error {
	tk, err := astrocache.Open(cfg, astrocache.WithLogger(logger))
	if err != nil {
		return err
	}
	tk.ReportMemory(ctx)
	if err := tk.Governor().WriteReport(stdout, nil); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "recommended budget\t%s\n", humanize.IBytes(tk.Governor().RecommendCacheSize()))
	return nil
}
