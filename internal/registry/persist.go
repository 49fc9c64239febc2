package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"go.uber.org/multierr"
)

// fileMode is used when Save creates the registry file. Passwords are
// stored in clear text, so the file is private to its owner.
const fileMode = 0600

// managerJSON is the on-disk shape of a manager.
type managerJSON struct {
	Accounts map[string]*Account `json:"accounts"`
}

// Load reads the registry stored at path.
//
// A missing file is not an error: Load returns an empty manager. A file that
// cannot be read yields an *IOError, and one that cannot be decoded yields a
// *DecodeError. Nothing is recovered from a file that fails to decode.
func Load(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewManager(), nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	m, err := decode(data)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return m, nil
}

// decode builds a manager from the bytes of a registry file. Each account
// is stored under its own email. When a map key differs from the email it
// holds, the key is ignored; if two entries hold the same email, the one
// whose key matches wins, otherwise the first key in sorted order.
func decode(data []byte) (*Manager, error) {
	fields, err := objectFields(data, "accounts")
	if err != nil {
		return nil, err
	}
	var accounts map[string]*Account
	if err := json.Unmarshal(fields["accounts"], &accounts); err != nil {
		return nil, fmt.Errorf("field \"accounts\": %w", err)
	}

	keys := make([]string, 0, len(accounts))
	for key := range accounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	m := NewManager()
	for _, key := range keys {
		acc := accounts[key]
		if acc == nil {
			return nil, fmt.Errorf("account %q is null", key)
		}
		if _, taken := m.accounts[acc.email]; taken && key != acc.email {
			continue
		}
		m.accounts[acc.email] = acc
	}
	return m, nil
}

// Save writes the whole registry to path, creating the file or truncating
// an existing one. The write is not atomic: a crash part way through can
// leave a truncated file behind.
func (m *Manager) Save(path string) (err error) {
	accounts := m.accounts
	if accounts == nil {
		accounts = map[string]*Account{}
	}
	data, err := json.Marshal(managerJSON{Accounts: accounts})
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if err == nil {
			err = f.Close()
			if err != nil {
				err = &IOError{Op: "write", Path: path, Err: err}
			}
		}
	}()

	if _, werr := f.Write(data); werr != nil {
		return &IOError{Op: "write", Path: path, Err: multierr.Append(werr, f.Close())}
	}
	return nil
}
