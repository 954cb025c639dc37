package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/connection"
	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/core/domain"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
				EnvVars: []string{"TRAINLY_PASSWORD"},
			},
		},
		Action: authLogin,
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
				EnvVars: []string{"TRAINLY_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Display name (prompted when omitted)",
			},
		},
		Action: authRegister,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the stored token",
		Action: authLogout,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user",
		Action: authWhoami,
	}
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show session, token and server status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Also print client metrics in Prometheus text format",
			},
		},
		Action: authStatus,
	}
}

// credentialsFrom collects flag values, prompting for the missing ones.
func credentialsFrom(c *cli.Context, rt *Runtime, withName bool) (email, password, name string, err error) {
	email = c.String("email")
	if email == "" {
		if email, err = promptLine(rt, "Email"); err != nil {
			return
		}
	}
	password = c.String("password")
	if password == "" {
		if password, err = promptSecret(rt, "Password"); err != nil {
			return
		}
	}
	if withName {
		name = c.String("name")
		if name == "" {
			name, err = promptLine(rt, "Name")
		}
	}
	return
}

// runAuth shows a spinner around fn when stderr is a terminal and reports
// the session's stored error on failure.
func runAuth(rt *Runtime, message string, fn func() error) error {
	var spinner *output.Spinner
	if isTerminal(rt.Err) {
		spinner = output.NewSpinner(rt.Err, message)
		spinner.Start()
	}

	err := fn()

	if spinner != nil {
		spinner.Stop()
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSessionSuperseded) {
		return err
	}
	// Input rejected before any request names the offending field.
	var apiErr *domain.APIError
	if errors.Is(err, domain.ErrInvalidInput) && !errors.As(err, &apiErr) {
		return errors.New(domain.DetailOf(err))
	}
	// The session records the user-facing message for the same failure.
	if msg := rt.Session.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func authLogin(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	email, password, _, err := credentialsFrom(c, rt, false)
	if err != nil {
		return err
	}

	err = runAuth(rt, "Signing in", func() error {
		return rt.Session.Login(contextOf(c), email, password)
	})
	if err != nil {
		return err
	}

	output.Success(rt.Out, "Signed in as %s", rt.Session.User().DisplayName())
	return nil
}

func authRegister(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	email, password, name, err := credentialsFrom(c, rt, true)
	if err != nil {
		return err
	}

	err = runAuth(rt, "Creating account", func() error {
		return rt.Session.Register(contextOf(c), email, password, name)
	})
	if err != nil {
		return err
	}

	output.Success(rt.Out, "Welcome, %s", rt.Session.User().DisplayName())
	return nil
}

func authLogout(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	rt.Session.Logout(contextOf(c))
	return nil
}

func authWhoami(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	user := rt.Session.User()
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	f, err := formatterFor(c, rt)
	if err != nil {
		return err
	}
	return f.Format(rt.Out, user)
}

// statusView is the status command output.
type statusView struct {
	Phase       domain.Phase `json:"phase" yaml:"phase"`
	User        string       `json:"user,omitempty" yaml:"user,omitempty"`
	UserID      string       `json:"user_id,omitempty" yaml:"user_id,omitempty" table:"wide"`
	Plan        string       `json:"plan,omitempty" yaml:"plan,omitempty"`
	Server      string       `json:"server" yaml:"server"`
	Storage     string       `json:"storage" yaml:"storage"`
	StorageOK   bool         `json:"storage_available" yaml:"storage_available"`
	TokenStored bool         `json:"token_stored" yaml:"token_stored"`
	TokenExpiry string       `json:"token_expiry,omitempty" yaml:"token_expiry,omitempty"`
	LastError   string       `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

func buildStatus(ctx context.Context, rt *Runtime) statusView {
	state := rt.Session.State()
	view := statusView{
		Phase:     state.Phase(),
		Server:    rt.Identity.BaseURL(),
		Storage:   rt.Tokens.Backend(),
		StorageOK: rt.Tokens.Available(ctx),
		LastError: state.Error,
	}
	if state.User != nil {
		view.User = state.User.Email
		view.UserID = state.User.ID
		view.Plan = string(state.User.Plan)
	}

	if tok, ok := rt.Tokens.Get(ctx); ok {
		view.TokenStored = true
		view.TokenExpiry = "unknown"
		if exp, ok := connection.TokenExpiry(tok); ok {
			view.TokenExpiry = exp.Local().Format(time.RFC3339)
			if time.Now().After(exp) {
				view.TokenExpiry += " (expired)"
			}
		}
	}
	return view
}

func authStatus(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	f, err := formatterFor(c, rt)
	if err != nil {
		return err
	}
	if err := f.Format(rt.Out, buildStatus(contextOf(c), rt)); err != nil {
		return err
	}

	if c.Bool("metrics") {
		fmt.Fprintln(rt.Out)
		return rt.Metrics.WriteText(rt.Out)
	}
	return nil
}
