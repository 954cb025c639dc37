package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/yndnr/trainly-go/pkg/crypto/adaptive"
	"github.com/yndnr/trainly-go/pkg/token"
)

const (
	credentialsVersion = 1

	kdfKeyFile  = "keyfile"
	kdfArgon2id = "argon2id"

	// sealInfo binds the sealing key to this file format.
	sealInfo = "trainly credentials v1"
)

// credentialsFile is the on-disk document. Each entry is sealed separately
// with its key as additional data, so entries cannot be swapped.
type credentialsFile struct {
	Version int               `json:"version"`
	KDF     string            `json:"kdf"`
	Salt    []byte            `json:"salt,omitempty"`
	Entries map[string][]byte `json:"entries"`
}

// FileOptions configures a FileBackend.
type FileOptions struct {
	// Path of the credentials file.
	Path string
	// KeyPath of the random key file. Defaults to Path + ".key".
	KeyPath string
	// Passphrase, when set, derives the key with Argon2id instead of
	// using a key file.
	Passphrase string
	Logger     *slog.Logger
}

// FileBackend stores sealed values in a single credentials file.
type FileBackend struct {
	opts   FileOptions
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileBackend creates a file backend. Nothing is read or written until
// the first operation.
func NewFileBackend(opts FileOptions) (*FileBackend, error) {
	if opts.Path == "" {
		return nil, errors.New("storage: file path is required")
	}
	if opts.KeyPath == "" {
		opts.KeyPath = opts.Path + ".key"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &FileBackend{opts: opts, logger: opts.Logger}, nil
}

func (b *FileBackend) Name() string { return "file" }

// Path returns the credentials file path.
func (b *FileBackend) Path() string { return b.opts.Path }

// Load returns the value stored under key.
func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.readFile()
	if err != nil {
		return nil, err
	}
	sealed, ok := doc.Entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	sealer, err := b.sealer(doc, false)
	if err != nil {
		return nil, err
	}
	value, err := sealer.Open(sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCorrupt, key, err)
	}
	return value, nil
}

// Save seals value and writes it under key. An unreadable existing file is
// replaced.
func (b *FileBackend) Save(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.readFile()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.logger.Warn("replacing unreadable credentials file", "path", b.opts.Path, "error", err)
		}
		doc = b.newDocument()
	}

	sealer, err := b.sealer(doc, true)
	if err != nil {
		return err
	}
	sealed, err := sealer.Seal(value, []byte(key))
	if err != nil {
		return fmt.Errorf("storage: seal: %w", err)
	}

	doc.Entries[key] = sealed
	return b.writeFile(doc)
}

// Delete removes key. The file is removed once it holds no entries.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.readFile()
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		// Unreadable credentials cannot yield a token; drop them.
		return b.removeFile()
	}

	delete(doc.Entries, key)
	if len(doc.Entries) == 0 {
		return b.removeFile()
	}
	return b.writeFile(doc)
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) newDocument() *credentialsFile {
	doc := &credentialsFile{
		Version: credentialsVersion,
		KDF:     kdfKeyFile,
		Entries: make(map[string][]byte),
	}
	if b.opts.Passphrase != "" {
		doc.KDF = kdfArgon2id
	}
	return doc
}

// readFile returns ErrNotFound for a missing file and ErrCorrupt for one
// that does not parse or was written in another key mode.
func (b *FileBackend) readFile() (*credentialsFile, error) {
	data, err := os.ReadFile(b.opts.Path)
	if err != nil {
		return nil, classifyFSError(err)
	}

	var doc credentialsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != credentialsVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, doc.Version)
	}
	if want := b.newDocument().KDF; doc.KDF != want {
		return nil, fmt.Errorf("%w: written with %s, configured for %s", ErrCorrupt, doc.KDF, want)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string][]byte)
	}
	return &doc, nil
}

func (b *FileBackend) writeFile(doc *credentialsFile) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage: encode credentials: %w", err)
	}
	return writeFileAtomic(b.opts.Path, data)
}

func (b *FileBackend) removeFile() error {
	if err := os.Remove(b.opts.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return classifyFSError(err)
	}
	return nil
}

// sealer returns the sealer for doc. With create set, missing key material
// (key file or salt) is generated.
func (b *FileBackend) sealer(doc *credentialsFile, create bool) (*adaptive.Sealer, error) {
	var master []byte
	switch doc.KDF {
	case kdfArgon2id:
		if len(doc.Salt) == 0 {
			if !create {
				return nil, fmt.Errorf("%w: missing salt", ErrCorrupt)
			}
			salt, err := token.GenerateBytes(adaptive.SaltSize)
			if err != nil {
				return nil, err
			}
			doc.Salt = salt
		}
		key, err := adaptive.DeriveKey(b.opts.Passphrase, doc.Salt)
		if err != nil {
			return nil, err
		}
		master = key
	default:
		key, err := b.loadKey(create)
		if err != nil {
			return nil, err
		}
		master = key
	}

	sealKey, err := adaptive.SubKey(master, sealInfo)
	if err != nil {
		return nil, err
	}
	return adaptive.NewSealer(sealKey)
}

func (b *FileBackend) loadKey(create bool) ([]byte, error) {
	key, err := os.ReadFile(b.opts.KeyPath)
	if err == nil {
		if len(key) != adaptive.KeySize {
			return nil, fmt.Errorf("%w: key file has %d bytes", ErrCorrupt, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, classifyFSError(err)
	}
	if !create {
		return nil, fmt.Errorf("%w: key file missing", ErrCorrupt)
	}

	key, err = token.GenerateBytes(adaptive.KeySize)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(b.opts.KeyPath, key); err != nil {
		return nil, err
	}
	b.logger.Debug("created credentials key", "path", b.opts.KeyPath)
	return key, nil
}

// writeFileAtomic writes data with 0600 permissions via a temp file and
// rename, creating the parent directory with 0700.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return classifyFSError(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return classifyFSError(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func classifyFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
