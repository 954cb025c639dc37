package config

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validate checks the configuration.
func (c CLIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.Required, is.RequestURL),
		validation.Field(&c.Output, validation.Required, validation.In("table", "json", "yaml")),
		validation.Field(&c.Log),
		validation.Field(&c.Storage),
		validation.Field(&c.Identity),
		validation.Field(&c.Routes),
	)
}

// Validate checks the log settings.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Format, validation.In("text", "json")),
	)
}

// Validate checks the storage settings.
func (c StorageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(BackendFile, BackendBadger, BackendMemory, BackendNone)),
	)
}

// Validate checks the identity client settings.
func (c IdentityConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
		validation.Field(&c.LoginPath, validation.Required),
		validation.Field(&c.RegisterPath, validation.Required),
		validation.Field(&c.MePath, validation.Required),
		validation.Field(&c.PlansPath, validation.Required),
	)
}

// Validate checks the navigation routes.
func (c RoutesConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Login, validation.Required),
	)
}
