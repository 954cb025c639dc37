package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/trainly-go/internal/core/domain"
	"github.com/yndnr/trainly-go/internal/telemetry/logger"
	"github.com/yndnr/trainly-go/internal/telemetry/metric"
)

// Messages stored in SessionState.Error when the service gave no detail.
const (
	LoginFailedMessage    = "Login failed. Please check your credentials."
	RegisterFailedMessage = "Registration failed. Please try again."
)

// DefaultLoginRoute is where the presentation layer goes after logout.
const DefaultLoginRoute = "/login"

// Operation names used in logs and metrics.
const (
	opInitialize = "initialize"
	opLogin      = "login"
	opRegister   = "register"
	opLogout     = "logout"
)

// IdentityService is the remote identity API the manager relies on.
// Login and Register return the issued token without storing it. The
// conditional store and clear evaluate cond atomically with the write, so
// the manager can tie every token write to the session it belongs to.
type IdentityService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, name string) (string, error)
	FetchCurrentUser(ctx context.Context) (*domain.Identity, error)
	StoreTokenIf(ctx context.Context, token string, cond func() bool) bool
	ClearToken(ctx context.Context)
	ClearTokenIf(ctx context.Context, cond func() bool) bool
}

// TokenReader reports whether a token is stored. It never fails: an
// unusable store reads as empty.
type TokenReader interface {
	Get(ctx context.Context) (string, bool)
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *SessionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records operation outcomes in r.
func WithMetrics(r *metric.Registry) Option {
	return func(m *SessionManager) {
		m.metrics = r
	}
}

// WithLoginRoute sets the route carried by EventLoggedOut.
func WithLoginRoute(route string) Option {
	return func(m *SessionManager) {
		if route != "" {
			m.loginRoute = route
		}
	}
}

// WithKeepTokenOnUnavailable keeps the stored token when the startup
// identity check fails only because the service could not be reached.
// The session is still anonymous for this process.
func WithKeepTokenOnUnavailable(keep bool) Option {
	return func(m *SessionManager) {
		m.keepTokenOnUnavailable = keep
	}
}

// SessionManager owns the client session.
//
// Every transition is applied under one mutex, so a snapshot never mixes
// fields of two transitions. No lock is held while talking to the identity
// service. Token writes go through the identity service's conditional
// store and clear, whose conditions take the mutex briefly; the manager
// never calls the identity service with the mutex held.
type SessionManager struct {
	identity IdentityService
	tokens   TokenReader
	logger   logger.Logger
	metrics  *metric.Registry

	loginRoute             string
	keepTokenOnUnavailable bool

	initGroup singleflight.Group
	initDone  atomic.Bool

	mu    sync.Mutex
	state domain.SessionState
	// authInFlight counts running Login/Register calls.
	authInFlight int
	initializing bool
	// epoch advances on every Logout; an auth call that started in an
	// older epoch is superseded and may not store its token.
	epoch uint64
	// generation advances whenever User is written by Login, Register or
	// Logout.
	generation uint64
	// tokenGen advances whenever an auth call stores a token.
	tokenGen uint64

	emitMu   sync.Mutex
	subMu    sync.RWMutex
	subs     map[uint64]func(Event)
	subOrder []uint64
	nextSub  uint64
}

// NewSessionManager creates a manager in the uninitialized phase.
func NewSessionManager(identity IdentityService, tokens TokenReader, opts ...Option) *SessionManager {
	m := &SessionManager{
		identity:   identity,
		tokens:     tokens,
		logger:     logger.Discard(),
		loginRoute: DefaultLoginRoute,
		subs:       make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the session.
func (m *SessionManager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// User returns a copy of the current identity, or nil.
func (m *SessionManager) User() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User.Clone()
}

// LoginRoute returns the route carried by EventLoggedOut.
func (m *SessionManager) LoginRoute() string {
	return m.loginRoute
}

// Initialize reconciles the stored token with the identity service. It
// runs at most once per manager; concurrent callers wait for the same
// run, later callers return immediately. Failures are never surfaced: the
// session simply ends up anonymous.
//
// The reconciliation is shared by every waiting caller, so it ignores
// cancellation of ctx and is bounded by the identity client's timeout.
func (m *SessionManager) Initialize(ctx context.Context) {
	if m.initDone.Load() {
		m.metrics.RecordSessionOp(opInitialize, metric.OutcomeNoop)
		return
	}

	runCtx := context.WithoutCancel(ctx)
	m.initGroup.Do(opInitialize, func() (any, error) {
		if m.initDone.Load() {
			return nil, nil
		}
		m.reconcile(runCtx)
		return nil, nil
	})
}

func (m *SessionManager) reconcile(ctx context.Context) {
	log := m.logger.WithContext(ctx).With("op", opInitialize)

	m.mu.Lock()
	m.initializing = true
	m.refreshLoading()
	startGeneration := m.generation
	startTokenGen := m.tokenGen
	m.unlockAndPublish()

	var user *domain.Identity
	outcome := metric.OutcomeSuccess

	if _, ok := m.tokens.Get(ctx); !ok {
		log.Debug("no stored token, starting anonymous")
		outcome = metric.OutcomeNoop
	} else {
		u, err := m.identity.FetchCurrentUser(ctx)
		switch {
		case err == nil:
			user = u
		case m.keepTokenOnUnavailable && errors.Is(err, domain.ErrIdentityUnavailable):
			log.Info("identity service unreachable, keeping stored token", "error", err)
			outcome = metric.OutcomeFailure
		default:
			outcome = metric.OutcomeFailure
			// A login that stored its token meanwhile owns the store now.
			cleared := m.identity.ClearTokenIf(ctx, func() bool {
				m.mu.Lock()
				defer m.mu.Unlock()
				return m.tokenGen == startTokenGen
			})
			if cleared {
				log.Info("stored token rejected, cleared it", "error", err)
			} else {
				log.Info("stored token rejected, kept the newer login's token", "error", err)
			}
		}
	}

	m.mu.Lock()
	m.initializing = false
	m.state.IsInitialized = true
	if m.generation == startGeneration {
		m.state.User = user
	}
	m.refreshLoading()
	m.initDone.Store(true)
	m.unlockAndPublish()

	m.metrics.RecordSessionOp(opInitialize, outcome)
}

// Login authenticates with email and password. On failure the error is
// both returned and stored in State().Error, and User is left unchanged.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	in := credentials{Email: email, Password: password}
	return m.authenticate(ctx, opLogin, LoginFailedMessage, in, func(ctx context.Context) (string, error) {
		return m.identity.Login(ctx, email, password)
	})
}

// Register creates an account and signs in. Failure handling matches
// Login.
func (m *SessionManager) Register(ctx context.Context, email, password, name string) error {
	in := registration{Email: email, Password: password, Name: name}
	return m.authenticate(ctx, opRegister, RegisterFailedMessage, in, func(ctx context.Context) (string, error) {
		return m.identity.Register(ctx, email, password, name)
	})
}

// authOutcome is the single result of an auth call; it feeds both the
// returned error and the stored state.
type authOutcome struct {
	user *domain.Identity
	err  error
	// superseded is set when a Logout refused the token.
	superseded bool
}

type obtainFunc func(ctx context.Context) (string, error)

func (m *SessionManager) authenticate(ctx context.Context, op, fallback string, in validatable, obtain obtainFunc) error {
	m.mu.Lock()
	m.authInFlight++
	m.state.Error = ""
	m.refreshLoading()
	epoch := m.epoch
	m.unlockAndPublish()

	out := m.runAuth(ctx, epoch, in, obtain)
	return m.completeAuth(ctx, op, fallback, epoch, out)
}

func (m *SessionManager) runAuth(ctx context.Context, epoch uint64, in validatable, obtain obtainFunc) authOutcome {
	if err := in.Validate(); err != nil {
		return authOutcome{err: domain.ErrInvalidInput.WithDetails(err.Error()).WithCause(err)}
	}
	token, err := obtain(ctx)
	if err != nil {
		return authOutcome{err: err}
	}
	// The token is kept only while no Logout has happened since this call
	// started. A token stored before a later Logout is cleared by it.
	stored := m.identity.StoreTokenIf(ctx, token, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch != epoch {
			return false
		}
		m.tokenGen++
		return true
	})
	if !stored {
		return authOutcome{superseded: true}
	}
	user, err := m.identity.FetchCurrentUser(ctx)
	if err != nil {
		return authOutcome{err: err}
	}
	return authOutcome{user: user}
}

func (m *SessionManager) completeAuth(ctx context.Context, op, fallback string, epoch uint64, out authOutcome) error {
	log := m.logger.WithContext(ctx).With("op", op)

	m.mu.Lock()
	m.authInFlight--

	if out.superseded || m.epoch != epoch {
		// A Logout overlapped this call: drop the result.
		m.refreshLoading()
		m.unlockAndPublish()

		log.Info("result discarded after logout", "error", out.err)
		m.metrics.RecordSessionOp(op, metric.OutcomeSuperseded)
		if out.err != nil {
			return domain.ErrSessionSuperseded.WithCause(out.err)
		}
		return domain.ErrSessionSuperseded
	}

	if out.err != nil {
		m.state.Error = failureMessage(out.err, fallback)
	} else {
		m.state.User = out.user
		m.state.Error = ""
		m.generation++
	}
	m.refreshLoading()
	m.unlockAndPublish()

	if out.err != nil {
		log.Info("authentication failed", "error", out.err)
		m.metrics.RecordSessionOp(op, metric.OutcomeFailure)
		return out.err
	}
	log.Info("authenticated", "user_id", out.user.ID)
	m.metrics.RecordSessionOp(op, metric.OutcomeSuccess)
	return nil
}

// Logout ends the session unconditionally: the token is cleared unless a
// login that started after it has already stored its own, User and Error
// are reset, and exactly one EventLoggedOut is emitted. It never
// waits for a running Login or Register; their results are discarded.
// IsInitialized is not changed.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	m.state.User = nil
	m.state.Error = ""
	m.generation++
	tokenGen := m.tokenGen
	m.unlockAndPublish()

	// Tokens stored before the epoch advanced are cleared; a login that
	// started after this Logout and already stored its token keeps it.
	m.identity.ClearTokenIf(ctx, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.tokenGen == tokenGen
	})

	m.logger.WithContext(ctx).Info("logged out", "route", m.loginRoute)
	m.metrics.RecordSessionOp(opLogout, metric.OutcomeSuccess)
	m.publish(Event{Kind: EventLoggedOut, State: m.State(), Route: m.loginRoute})
}

// ClearError resets State().Error. Nothing else changes.
func (m *SessionManager) ClearError() {
	m.mu.Lock()
	if m.state.Error == "" {
		m.mu.Unlock()
		return
	}
	m.state.Error = ""
	m.unlockAndPublish()
}

// refreshLoading derives IsLoading; m.mu must be held.
func (m *SessionManager) refreshLoading() {
	m.state.IsLoading = m.authInFlight > 0 || m.initializing
}

// failureMessage picks the identity service's detail, falling back to a
// fixed message. Local validation text stays in the returned error only.
func failureMessage(err error, fallback string) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
