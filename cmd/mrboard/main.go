package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drewdunne/mrboard/internal/config"
	"github.com/drewdunne/mrboard/internal/dashboard"
	"github.com/drewdunne/mrboard/internal/logging"
	"github.com/drewdunne/mrboard/internal/poller"
	"github.com/drewdunne/mrboard/internal/provider"
	"github.com/drewdunne/mrboard/internal/registry"
	"github.com/drewdunne/mrboard/internal/render"
	"github.com/drewdunne/mrboard/internal/server"
	"github.com/joho/godotenv"
)

var version = "0.1.0"

const usage = "usage: mrboard [flags] <username>"

// cleanupInterval is how often old log files are swept.
const cleanupInterval = time.Hour

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("mrboard v%s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		log.SetOutput(os.Stderr)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("mrboard: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mrboard", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file (optional)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	once := fs.Bool("once", false, "Render a single table and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	username := fs.Arg(0)
	if username == "" {
		fs.Usage()
		return fmt.Errorf("%w (%s)", config.ErrMissingUsername, usage)
	}

	// Load .env file if specified or exists
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("Warning: could not load env file %s: %v", *envFile, err)
		}
	} else {
		godotenv.Load(".env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.Dir != "" {
		writer := logging.NewWriter(cfg.Logging.Dir)
		log.SetOutput(writer)
		defer func() {
			log.SetOutput(os.Stderr)
			writer.Close()
		}()

		scheduler := logging.NewCleanupScheduler(logging.NewCleaner(cfg.Logging.Dir, cfg.Logging.RetentionDays), cleanupInterval)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	reg, err := registry.New(cfg)
	if err != nil {
		return err
	}
	p, err := reg.Selected(cfg)
	if err != nil {
		return err
	}

	viewer, err := findViewer(ctx, p, username, cfg.RequestTimeout())
	if err != nil {
		return err
	}
	log.Printf("Resolved %s to user %d on %s", viewer.Username, viewer.ID, p.Name())

	board := dashboard.NewBoard(p,
		dashboard.WithReviewMaxAge(cfg.Review.MaxAgeDays),
		dashboard.WithPolicy(dashboard.Policy{
			BotUsername:  cfg.Scoring.BotUsername,
			MainBranches: cfg.Scoring.MainBranches,
		}),
		dashboard.WithConcurrency(cfg.Poll.Concurrency),
	)

	renderer := render.New(stdout, board.Policy(), renderOptions(cfg, stdout, *once))

	pl := poller.New(board, renderer, *viewer,
		poller.WithInterval(cfg.PollInterval()),
		poller.WithExitOnError(cfg.Poll.ExitOnError),
	)

	if *once {
		return pl.RunOnce(ctx)
	}

	if cfg.Status.Addr != "" {
		srv := server.New(cfg.Status.Addr, pl)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Printf("[Server] %v", err)
			}
		}()
	}

	return pl.Run(ctx)
}

func findViewer(ctx context.Context, p provider.Provider, username string, timeout time.Duration) (*provider.User, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	viewer, err := p.FindUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", username, err)
	}
	return viewer, nil
}

// renderOptions enables terminal features only when stdout is a terminal.
func renderOptions(cfg *config.Config, stdout io.Writer, once bool) render.Options {
	opts := render.Options{
		ReferenceWidth: cfg.Display.ReferenceWidth,
		AuthorWidth:    cfg.Display.AuthorWidth,
		AssigneeWidth:  cfg.Display.AssigneeWidth,
		TitleWidth:     cfg.Display.TitleWidth,
	}

	f, ok := stdout.(*os.File)
	if !ok || !render.IsTerminal(f) {
		return opts
	}

	opts.Color = cfg.Display.Color
	opts.Hyperlinks = cfg.Display.Hyperlinks
	opts.Clear = !once
	opts.TerminalWidth = func() int { return render.TerminalWidth(f) }
	return opts
}
