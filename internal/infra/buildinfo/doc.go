// Package buildinfo exposes build-time information for trainly-cli.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/trainly-go/internal/infra/buildinfo.Version=v1.0.0"
//
// The version also forms the User-Agent sent to the identity service.
package buildinfo
