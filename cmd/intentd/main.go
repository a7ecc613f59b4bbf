// ABOUTME: CLI entry point for intentd, the developer intent classifier
// ABOUTME: Builds the engine, its event fan-out, and config hot-reload for serve and watch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/intentd/internal/termfix"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mauromedda/intentd/internal/broadcast"
	"github.com/mauromedda/intentd/internal/clock"
	"github.com/mauromedda/intentd/internal/config"
	"github.com/mauromedda/intentd/internal/eventbus"
	"github.com/mauromedda/intentd/internal/intent"
	pilog "github.com/mauromedda/intentd/internal/log"
	"github.com/mauromedda/intentd/internal/mode/interactive"
	"github.com/mauromedda/intentd/internal/mode/rpc"
	"github.com/mauromedda/intentd/internal/statusline"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errClientGone ends serve mode when the client closes stdin.
var errClientGone = errors.New("client closed input")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session is the engine plus its fan-out, shared by serve and watch.
type session struct {
	args  cliArgs
	paths []string

	mu       sync.Mutex // guards settings; reload runs on watcher goroutines
	settings *config.Settings

	engine  *intent.Engine
	bus     *eventbus.Bus[intent.Transition]
	watcher *config.Watcher
}

func newSession(ctx context.Context, args cliArgs) (*session, error) {
	s := &session{args: args, paths: configPaths(args)}
	settings, err := config.LoadFiles(s.paths...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	s.settings = settings
	applyLogLevel(settings.LogLevel, args.verbose)

	s.engine = intent.NewEngine(intent.Config{
		Interval:   s.interval(settings),
		Thresholds: settings.EngineThresholds(),
	})
	s.bus = eventbus.New[intent.Transition]()

	fwd := broadcast.New(settings.Broadcast.Command, settings.BroadcastTimeout())
	if fwd.HasCommand() {
		s.bus.Subscribe(fwd.Handler(ctx))
	}

	s.watcher = config.NewWatcher(clock.Real{}, s.paths, s.reload)
	return s, nil
}

// current returns the most recently loaded settings.
func (s *session) current() *config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *session) interval(settings *config.Settings) time.Duration {
	if s.args.interval > 0 {
		return s.args.interval
	}
	return settings.EngineInterval()
}

// reload re-reads the config files and applies thresholds, interval, and log
// level to the running engine. A broken file keeps the previous settings.
func (s *session) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := config.LoadFiles(s.paths...)
	if err != nil {
		pilog.Warn("config: reload failed, keeping previous settings: %v", err)
		return
	}
	s.settings = settings
	applyLogLevel(settings.LogLevel, s.args.verbose)
	s.engine.SetThresholds(settings.EngineThresholds())
	s.engine.SetInterval(s.interval(settings))
	pilog.Info("config: reloaded")
}

// startHub serves the websocket hub on g when broadcast.listen is set. The
// server shuts down when ctx ends.
func (s *session) startHub(ctx context.Context, g *errgroup.Group) {
	settings := s.current()
	listen := settings.Broadcast.Listen
	if listen == "" {
		return
	}
	hub := broadcast.NewHub(s.engine, settings.Broadcast.Origins)
	s.bus.Subscribe(hub.Publish)
	srv := &http.Server{
		Addr:              listen,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		pilog.Info("hub: listening on %s", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket hub: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func (s *session) close() {
	s.watcher.Stop()
	s.engine.Stop()
	s.bus.Close()
}

func runServe(ctx context.Context, args cliArgs) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.close()

	router := rpc.NewRouter()
	srv := rpc.NewServer(os.Stdin, os.Stdout, router.Handle)
	rpc.RegisterHandlers(router, &rpc.Deps{Engine: s.engine, Observer: s.bus.Publish})
	s.bus.Subscribe(eventbus.Handler[intent.Transition](srv.TransitionNotifier()))

	if err := s.engine.Start(s.bus.Publish); err != nil {
		return fmt.Errorf("start intent engine: %w", err)
	}
	pilog.Info("intentd %s serving on stdio (interval %s)", version, s.engine.Interval())

	g, gctx := errgroup.WithContext(ctx)
	s.startHub(gctx, g)
	s.watcher.Start()
	g.Go(func() error {
		return serveUntilDone(gctx, srv)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.engine.Stop()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, errClientGone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveUntilDone runs the server until stdin closes or ctx ends. A read
// blocked on stdin cannot be interrupted, so on cancellation the server
// goroutine is abandoned to process exit.
func serveUntilDone(ctx context.Context, srv *rpc.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()
	select {
	case err := <-errc:
		if err == nil {
			return errClientGone
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runWatch(ctx context.Context, args cliArgs) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("watch needs an interactive terminal")
	}

	// The editor owns the terminal; logs go to a file.
	if err := os.MkdirAll(config.GlobalDir(), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", config.GlobalDir(), err)
	}
	logPath := filepath.Join(config.GlobalDir(), "intentd.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()
	defer pilog.SetOutput(pilog.SetOutput(f))

	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.close()

	settings := s.current()
	badge := statusline.NewBadge(s.engine.CurrentIntent().Key, settings.Badge.Compact, settings.Badge.Width)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	s.startHub(gctx, g)
	s.watcher.Start()
	g.Go(func() error {
		defer cancel()
		return interactive.Run(gctx, interactive.Deps{
			Engine: s.engine,
			Bus:    s.bus,
			Badge:  badge,
		})
	})
	return g.Wait()
}

// configPaths returns the files to load: the --config file alone, or the
// global then project settings.
func configPaths(args cliArgs) []string {
	if args.config != "" {
		return []string{args.config}
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return config.Files(cwd)
}

// applyLogLevel sets the level from config; --verbose always wins.
func applyLogLevel(name string, verbose bool) {
	if verbose {
		pilog.SetLevel(pilog.LevelDebug)
		return
	}
	lvl, ok := pilog.ParseLevel(name)
	if !ok {
		pilog.Warn("config: unknown log_level %q, using info", name)
	}
	pilog.SetLevel(lvl)
}
