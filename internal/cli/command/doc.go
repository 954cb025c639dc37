// Package command defines the trainly-cli commands with urfave/cli/v2.
//
//   - root.go: App, global flags, Before/After hooks
//   - runtime.go: the per-process object graph (config, logger, token
//     store, identity client, session manager)
//   - auth.go: login, register, logout, whoami, status
//   - plans.go: training plans through the fetch wrapper
//   - config.go: local configuration management
//   - shell.go: interactive mode sharing one runtime
//
// Commands change the session only through the runtime's SessionManager;
// status reads the token store for display.
package command
