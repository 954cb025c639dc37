package command

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/config"
	"github.com/yndnr/trainly-go/internal/cli/connection"
	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/core/service"
	"github.com/yndnr/trainly-go/internal/infra/tlsroots"
	"github.com/yndnr/trainly-go/internal/storage"
	"github.com/yndnr/trainly-go/internal/telemetry/logger"
	"github.com/yndnr/trainly-go/internal/telemetry/metric"
)

// Runtime is the object graph shared by every command of one process.
// There is exactly one SessionManager per Runtime.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string
	Wide       bool
	// LogLevelPinned is set when a flag chose the log level; config
	// reloads then leave it alone.
	LogLevelPinned bool

	Logger   logger.Logger
	Metrics  *metric.Registry
	Tokens   *storage.TokenStore
	Identity *connection.IdentityClient
	Session  *service.SessionManager

	In  io.Reader
	Out io.Writer
	Err io.Writer

	lines       *bufio.Reader
	prompter    prompter
	unsubscribe func()
}

// RuntimeOptions configures NewRuntime.
type RuntimeOptions struct {
	ConfigPath string
	// Overrides are dotted config keys applied over file and environment.
	Overrides map[string]any
	Wide      bool

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// HTTPClient replaces the default transport, mainly for tests.
	HTTPClient *http.Client
}

// NewRuntime wires config, logging, metrics, the token store, the identity
// client and the session manager. An unusable token store is not an
// error: the session then simply has no persisted token.
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath, opts.Overrides)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.Err,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	reg := metric.NewRegistry()

	backend, err := storage.Open(storage.Options{
		Backend:    cfg.Storage.Backend,
		Path:       cfg.StoragePath(),
		Passphrase: cfg.Storage.Passphrase,
		Logger:     logger.Slog(log),
	})
	if err != nil {
		log.Warn("token storage unavailable, continuing without persistence",
			"backend", cfg.Storage.Backend, "error", err)
		backend = storage.NewNoneBackend()
	}
	tokens := storage.NewTokenStore(backend, storage.WithLogger(log), storage.WithMetrics(reg))

	tlsConfig, err := tlsroots.ClientConfigFor(cfg.Identity.CAFile)
	if err != nil {
		return nil, err
	}
	clientOpts := []connection.ClientOption{
		connection.WithTLSConfig(tlsConfig),
		connection.WithTimeout(cfg.Identity.Timeout),
		connection.WithRateLimit(cfg.Identity.RateLimit, cfg.Identity.RateBurst),
		connection.WithClientMetrics(reg),
		connection.WithClientLogger(log),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, connection.WithHTTPClient(opts.HTTPClient))
	}
	hc := connection.NewHTTPClient(cfg.Server, clientOpts...)
	identity := connection.NewIdentityClient(hc, tokens, connection.Endpoints{
		Login:    cfg.Identity.LoginPath,
		Register: cfg.Identity.RegisterPath,
		Me:       cfg.Identity.MePath,
	})

	session := service.NewSessionManager(identity, tokens,
		service.WithLogger(log),
		service.WithMetrics(reg),
		service.WithLoginRoute(cfg.Routes.Login),
		service.WithKeepTokenOnUnavailable(cfg.Session.KeepTokenOnUnavailable),
	)
	if err := reg.Register(metric.NewSessionCollector(session)); err != nil {
		return nil, err
	}

	_, pinned := opts.Overrides["log.level"]
	rt := &Runtime{
		Config:         cfg,
		ConfigPath:     cfgPath,
		Wide:           opts.Wide,
		LogLevelPinned: pinned,
		Logger:         log,
		Metrics:        reg,
		Tokens:         tokens,
		Identity:       identity,
		Session:        session,
		In:             opts.In,
		Out:            opts.Out,
		Err:            opts.Err,
		lines:          bufio.NewReader(opts.In),
	}
	rt.prompter = stdPrompter{rt}
	rt.unsubscribe = session.Subscribe(rt.navigate)
	return rt, nil
}

// navigate is the presentation layer's reaction to session events.
func (rt *Runtime) navigate(ev service.Event) {
	if ev.Kind != service.EventLoggedOut {
		return
	}
	output.Hint(rt.Err, "Signed out. Sign in again at %s (trainly-cli login).", ev.Route)
}

// Close releases the token store.
func (rt *Runtime) Close() error {
	if rt.unsubscribe != nil {
		rt.unsubscribe()
	}
	return rt.Tokens.Close()
}

// lazyRuntime builds the Runtime on first use and initializes the session
// once.
type lazyRuntime struct {
	flags *GlobalFlags
	// shared is set by the shell so nested command runs keep the runtime.
	shared bool

	mu sync.Mutex
	rt *Runtime
}

func (l *lazyRuntime) get(c *cli.Context) (*Runtime, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rt == nil {
		rt, err := NewRuntime(RuntimeOptions{
			ConfigPath: l.flags.ConfigPath,
			Overrides:  l.flags.Overrides(),
			Wide:       l.flags.Wide,
			In:         c.App.Reader,
			Out:        c.App.Writer,
			Err:        c.App.ErrWriter,
		})
		if err != nil {
			return nil, err
		}
		l.rt = rt
	}

	l.rt.Session.Initialize(contextOf(c))
	return l.rt, nil
}

func (l *lazyRuntime) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rt == nil {
		return nil
	}
	err := l.rt.Close()
	l.rt = nil
	if errors.Is(err, storage.ErrUnavailable) {
		return nil
	}
	return err
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
