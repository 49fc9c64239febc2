package registry

import "sort"

// Manager owns a collection of accounts keyed by email address.
// The zero value is an empty manager ready to use.
//
// A Manager is not safe for concurrent use. Callers that share one across
// goroutines must serialize every call themselves.
type Manager struct {
	accounts map[string]*Account
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		accounts: make(map[string]*Account),
	}
}

// AddAccount stores a new account under email. An existing account with the
// same email is replaced, services included.
func (m *Manager) AddAccount(email, password string) {
	if m.accounts == nil {
		m.accounts = make(map[string]*Account)
	}
	m.accounts[email] = NewAccount(email, password)
}

// RemoveAccount deletes the account for email if there is one.
func (m *Manager) RemoveAccount(email string) {
	delete(m.accounts, email)
}

// GetAccount returns a snapshot of the account for email.
// The boolean is false when no such account exists.
func (m *Manager) GetAccount(email string) (Account, bool) {
	acc, ok := m.accounts[email]
	if !ok {
		return Account{}, false
	}
	return acc.Clone(), true
}

// UpdateAccount calls fn with the live account for email so it can be
// edited in place, and reports whether the account exists. fn is not called
// for an unknown email. The pointer passed to fn must not be retained.
func (m *Manager) UpdateAccount(email string, fn func(*Account)) bool {
	acc, ok := m.accounts[email]
	if !ok {
		return false
	}
	fn(acc)
	return true
}

// Len returns the number of accounts.
func (m *Manager) Len() int {
	return len(m.accounts)
}

// ListAccounts returns snapshots of all accounts ordered by email.
func (m *Manager) ListAccounts() []Account {
	return m.collect(func(*Account) bool { return true })
}

// AccountsMissingService returns snapshots of every account whose service
// set does not contain service, ordered by email.
func (m *Manager) AccountsMissingService(service string) []Account {
	return m.collect(func(acc *Account) bool {
		return !acc.HasService(service)
	})
}

func (m *Manager) collect(keep func(*Account) bool) []Account {
	result := make([]Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		if keep(acc) {
			result = append(result, acc.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].email < result[j].email
	})
	return result
}
