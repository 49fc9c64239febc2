package accounts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/asad/mailreg/internal/logging"
	"github.com/asad/mailreg/internal/registry"
)

// ErrAccountNotFound is returned when a service edit names an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore defines the operations the CLI and HTTP API run against the
// account registry.
type AccountStore interface {
	// AddAccount creates the account, replacing any existing one with the same email.
	AddAccount(ctx context.Context, email, password string) error

	// RemoveAccount deletes the account. Removing an unknown account is not an error.
	RemoveAccount(ctx context.Context, email string) error

	// GetAccount returns a snapshot of the account and whether it exists.
	GetAccount(ctx context.Context, email string) (registry.Account, bool, error)

	// ListAccounts returns snapshots of all accounts ordered by email.
	ListAccounts(ctx context.Context) ([]registry.Account, error)

	// AccountsMissingService returns snapshots of the accounts not enrolled in service.
	AccountsMissingService(ctx context.Context, service string) ([]registry.Account, error)

	// AddServices enables services on the account, or returns ErrAccountNotFound.
	AddServices(ctx context.Context, email string, services ...string) error

	// RemoveServices disables services on the account, or returns ErrAccountNotFound.
	RemoveServices(ctx context.Context, email string, services ...string) error
}

// FileAccountStore is an AccountStore backed by a single JSON file.
// It keeps the registry in memory behind a mutex and saves the whole
// snapshot after every mutation.
type FileAccountStore struct {
	path    string
	logger  logging.Logger
	mu      sync.RWMutex
	manager *registry.Manager
}

// NewFileAccountStore creates the parent directory of path if needed and
// loads the registry stored there. A missing file starts an empty registry.
func NewFileAccountStore(path string, logger logging.Logger) (*FileAccountStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	manager, err := registry.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load account registry: %w", err)
	}

	logger.Debug("account registry loaded",
		logging.String("path", path),
		logging.Int("accounts", manager.Len()),
	)

	return &FileAccountStore{
		path:    path,
		logger:  logger,
		manager: manager,
	}, nil
}

// save persists the registry. The caller must hold the write lock.
func (s *FileAccountStore) save() error {
	if err := s.manager.Save(s.path); err != nil {
		return fmt.Errorf("failed to save account registry: %w", err)
	}
	s.logger.Debug("account registry saved",
		logging.String("path", s.path),
		logging.Int("accounts", s.manager.Len()),
	)
	return nil
}

func (s *FileAccountStore) AddAccount(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.AddAccount(email, password)
	return s.save()
}

func (s *FileAccountStore) RemoveAccount(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.RemoveAccount(email)
	return s.save()
}

func (s *FileAccountStore) GetAccount(ctx context.Context, email string) (registry.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.manager.GetAccount(email)
	return acc, ok, nil
}

func (s *FileAccountStore) ListAccounts(ctx context.Context) ([]registry.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.manager.ListAccounts(), nil
}

func (s *FileAccountStore) AccountsMissingService(ctx context.Context, service string) ([]registry.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.manager.AccountsMissingService(service), nil
}

func (s *FileAccountStore) AddServices(ctx context.Context, email string, services ...string) error {
	return s.updateServices(email, func(acc *registry.Account) {
		for _, name := range services {
			acc.AddService(name)
		}
	})
}

func (s *FileAccountStore) RemoveServices(ctx context.Context, email string, services ...string) error {
	return s.updateServices(email, func(acc *registry.Account) {
		for _, name := range services {
			acc.RemoveService(name)
		}
	})
}

func (s *FileAccountStore) updateServices(email string, fn func(*registry.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.manager.UpdateAccount(email, fn) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}
	return s.save()
}

// Ensure FileAccountStore implements AccountStore.
var _ AccountStore = (*FileAccountStore)(nil)
