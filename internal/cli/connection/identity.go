package connection

import (
	"context"
	"net/http"
	"sync"

	"github.com/yndnr/trainly-go/internal/core/domain"
	"github.com/yndnr/trainly-go/internal/storage"
)

// Endpoints are the identity service paths, relative to the base URL.
type Endpoints struct {
	Login    string
	Register string
	Me       string
}

// DefaultEndpoints returns the standard identity service paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    "/auth/login",
		Register: "/auth/register",
		Me:       "/auth/me",
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenResponse is the body returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IdentityClient performs identity operations and keeps the bearer token
// in a TokenStore.
//
// Login and Register only exchange credentials; the caller decides whether
// the token is kept. Reading the stored token and attaching it to a request
// happen under a read lock; storing and clearing take the write lock. A
// request therefore never carries a token that ClearToken has already
// returned from clearing.
type IdentityClient struct {
	http      *HTTPClient
	tokens    *storage.TokenStore
	endpoints Endpoints
	mu        sync.RWMutex
}

// NewIdentityClient creates an identity client. Empty endpoint paths fall
// back to DefaultEndpoints.
func NewIdentityClient(hc *HTTPClient, tokens *storage.TokenStore, endpoints Endpoints) *IdentityClient {
	def := DefaultEndpoints()
	if endpoints.Login == "" {
		endpoints.Login = def.Login
	}
	if endpoints.Register == "" {
		endpoints.Register = def.Register
	}
	if endpoints.Me == "" {
		endpoints.Me = def.Me
	}
	return &IdentityClient{http: hc, tokens: tokens, endpoints: endpoints}
}

// Login exchanges credentials for a token. The token is returned, not
// stored; see StoreTokenIf.
func (c *IdentityClient) Login(ctx context.Context, email, password string) (string, error) {
	return c.obtainToken(ctx, c.endpoints.Login, loginRequest{Email: email, Password: password})
}

// Register creates an account and returns its token without storing it.
func (c *IdentityClient) Register(ctx context.Context, email, password, name string) (string, error) {
	return c.obtainToken(ctx, c.endpoints.Register, registerRequest{Email: email, Password: password, Name: name})
}

func (c *IdentityClient) obtainToken(ctx context.Context, path string, body any) (string, error) {
	var resp TokenResponse
	if err := c.http.Do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", domain.ErrIdentityResponse.WithDetails("response carried no access_token")
	}
	return resp.AccessToken, nil
}

// StoreTokenIf stores token when cond reports true. cond runs under the
// write lock, so no ClearToken can slip between the check and the write.
// A nil cond always stores.
func (c *IdentityClient) StoreTokenIf(ctx context.Context, token string, cond func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cond != nil && !cond() {
		return false
	}
	c.tokens.Set(ctx, token)
	return true
}

// FetchCurrentUser resolves the identity behind the stored token. Without
// a token it fails with domain.ErrUnauthorized and sends nothing.
func (c *IdentityClient) FetchCurrentUser(ctx context.Context) (*domain.Identity, error) {
	var id domain.Identity
	if err := c.Get(ctx, c.endpoints.Me, &id); err != nil {
		return nil, err
	}
	if id.ID == "" {
		return nil, domain.ErrIdentityResponse.WithDetails("identity has no id")
	}
	return &id, nil
}

// Get performs an authenticated GET of path and decodes the body into
// target.
func (c *IdentityClient) Get(ctx context.Context, path string, target any) error {
	req, err := c.authorizedRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	return c.http.Send(req, target)
}

func (c *IdentityClient) authorizedRequest(ctx context.Context, method, path string) (*http.Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tok, ok := c.tokens.Get(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized.WithDetails("no stored token")
	}
	return c.http.NewRequest(ctx, method, path, tok, nil)
}

// ClearToken removes the stored token.
func (c *IdentityClient) ClearToken(ctx context.Context) {
	c.ClearTokenIf(ctx, nil)
}

// ClearTokenIf removes the stored token when cond reports true. Like
// StoreTokenIf, cond runs under the write lock.
func (c *IdentityClient) ClearTokenIf(ctx context.Context, cond func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cond != nil && !cond() {
		return false
	}
	c.tokens.Clear(ctx)
	return true
}

// HasToken reports whether a token is stored.
func (c *IdentityClient) HasToken(ctx context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tokens.Get(ctx)
	return ok
}

// BaseURL returns the identity service base URL.
func (c *IdentityClient) BaseURL() string {
	return c.http.BaseURL()
}
