package storage

import (
	"fmt"
	"log/slog"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is one of file, badger, memory, none.
	Backend    string
	Path       string
	Passphrase string
	Logger     *slog.Logger
}

// Open creates the backend named in opts.
func Open(opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileBackend(FileOptions{
			Path:       opts.Path,
			Passphrase: opts.Passphrase,
			Logger:     opts.Logger,
		})
	case "badger":
		return NewBadgerBackend(opts.Path, opts.Logger)
	case "memory":
		return NewMemoryBackend(), nil
	case "none":
		return NewNoneBackend(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
