package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// gcDiscardRatio is the value log rewrite threshold used on Close.
const gcDiscardRatio = 0.5

// BadgerBackend stores values in a Badger v3 database.
//
// Badger holds an exclusive directory lock, so a second process opening
// the same directory fails with ErrUnavailable.
type BadgerBackend struct {
	db     *badger.DB
	dir    string
	logger *slog.Logger
}

// NewBadgerBackend opens (or creates) the database in dir.
func NewBadgerBackend(dir string, logger *slog.Logger) (*BadgerBackend, error) {
	if dir == "" {
		return nil, errors.New("storage: badger dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: logger}).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: badger open %s: %v", ErrUnavailable, dir, err)
	}

	logger.Debug("badger token backend opened", "dir", dir)
	return &BadgerBackend{db: db, dir: dir, logger: logger}, nil
}

func (b *BadgerBackend) Name() string { return "badger" }

// Dir returns the database directory.
func (b *BadgerBackend) Dir() string { return b.dir }

// Load returns the value stored under key.
func (b *BadgerBackend) Load(_ context.Context, key string) ([]byte, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, b.classify(err)
	}

	return value, nil
}

// Save stores value under key.
func (b *BadgerBackend) Save(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return b.classify(err)
}

// Delete removes key.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return b.classify(err)
}

// Close reclaims value log space and closes the database.
func (b *BadgerBackend) Close() error {
	for {
		if err := b.db.RunValueLogGC(gcDiscardRatio); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
				b.logger.Debug("badger value log gc", "error", err)
			}
			break
		}
	}

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("badger close: %w", err)
	}
	return nil
}

// Collectors exposes database size gauges for a metrics registry.
func (b *BadgerBackend) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "trainly",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes.",
		}, func() float64 {
			lsm, _ := b.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "trainly",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes.",
		}, func() float64 {
			_, vlog := b.db.Size()
			return float64(vlog)
		}),
	}
}

func (b *BadgerBackend) classify(err error) error {
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface. Badger is
// chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
