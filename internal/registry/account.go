package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Account is a single email account and the set of services it is enrolled in.
// The email is fixed at construction; services are added and removed by name.
type Account struct {
	email    string
	password string
	services map[string]bool
}

// NewAccount creates an account with an empty service set.
// Neither the email nor the password is validated.
func NewAccount(email, password string) *Account {
	return &Account{
		email:    email,
		password: password,
		services: make(map[string]bool),
	}
}

// Email returns the account's email address.
func (a *Account) Email() string {
	return a.email
}

// Password returns the account's password.
func (a *Account) Password() string {
	return a.password
}

// AddService enables a service. Adding an enabled service is a no-op.
func (a *Account) AddService(name string) {
	if a.services == nil {
		a.services = make(map[string]bool)
	}
	a.services[name] = true
}

// RemoveService disables a service by deleting it from the set.
// Removing a service that is not present is a no-op.
func (a *Account) RemoveService(name string) {
	delete(a.services, name)
}

// HasService reports whether name is a key of the service set.
func (a *Account) HasService(name string) bool {
	_, ok := a.services[name]
	return ok
}

// Services returns the enabled service names sorted by name.
func (a *Account) Services() []string {
	names := make([]string, 0, len(a.services))
	for name := range a.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy that shares no state with a.
func (a *Account) Clone() Account {
	services := make(map[string]bool, len(a.services))
	for name, enabled := range a.services {
		services[name] = enabled
	}
	return Account{
		email:    a.email,
		password: a.password,
		services: services,
	}
}

// accountJSON is the on-disk shape of an account.
type accountJSON struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Services map[string]bool `json:"services"`
}

// MarshalJSON encodes the account as {"email","password","services"}.
func (a Account) MarshalJSON() ([]byte, error) {
	services := a.services
	if services == nil {
		services = map[string]bool{}
	}
	return json.Marshal(accountJSON{
		Email:    a.email,
		Password: a.password,
		Services: services,
	})
}

// UnmarshalJSON decodes an account. The "email", "password" and "services"
// keys must all be present, spelled exactly, and non-null.
func (a *Account) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data, "email", "password", "services")
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}

	var acc Account
	if err := json.Unmarshal(fields["email"], &acc.email); err != nil {
		return fmt.Errorf("account: field \"email\": %w", err)
	}
	if err := json.Unmarshal(fields["password"], &acc.password); err != nil {
		return fmt.Errorf("account: field \"password\": %w", err)
	}
	if err := json.Unmarshal(fields["services"], &acc.services); err != nil {
		return fmt.Errorf("account: field \"services\": %w", err)
	}

	*a = acc
	return nil
}

// objectFields decodes a JSON object and checks that every name in required
// is one of its keys with a non-null value. Keys are matched exactly, unlike
// struct decoding in encoding/json. Other keys are returned but not checked.
func objectFields(data []byte, required ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, name := range required {
		value, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, fmt.Errorf("missing field %q", name)
		}
	}
	return fields, nil
}
