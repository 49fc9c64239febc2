package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeFile writes a registry file into a fresh temp directory.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty manager, got %d accounts", m.Len())
	}
}

func TestManager_SaveLoadScenario(t *testing.T) {
	m := NewManager()
	m.AddAccount("a@x.com", "p1")
	m.AddAccount("b@y.com", "p2")
	addService(t, m, "a@x.com", "keeta")
	addService(t, m, "b@y.com", "gmail")

	check := func(t *testing.T, m *Manager) {
		t.Helper()
		if m.Len() != 2 {
			t.Fatalf("expected 2 accounts, got %d", m.Len())
		}
		acc, ok := m.GetAccount("a@x.com")
		if !ok {
			t.Fatal("a@x.com should exist")
		}
		if got, want := acc.Services(), []string{"keeta"}; !reflect.DeepEqual(got, want) {
			t.Errorf("expected services %v, got %v", want, got)
		}
		missing := m.AccountsMissingService("keeta")
		if got, want := emails(missing), []string{"b@y.com"}; !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v missing keeta, got %v", want, got)
		}
	}

	check(t, m)

	path := filepath.Join(t.TempDir(), "test.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	check(t, loaded)
	if !reflect.DeepEqual(loaded.ListAccounts(), m.ListAccounts()) {
		t.Errorf("round trip changed the registry:\nwant %+v\ngot  %+v", m.ListAccounts(), loaded.ListAccounts())
	}
}

func TestManager_SaveFileShape(t *testing.T) {
	m := NewManager()
	m.AddAccount("a@x.com", "p1")
	addService(t, m, "a@x.com", "keeta")

	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("saved file is not JSON: %v", err)
	}
	want := map[string]interface{}{
		"accounts": map[string]interface{}{
			"a@x.com": map[string]interface{}{
				"email":    "a@x.com",
				"password": "p1",
				"services": map[string]interface{}{"keeta": true},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestManager_SaveTruncates(t *testing.T) {
	path := writeFile(t, `{"accounts":{"long-address@example.com":{"email":"long-address@example.com","password":"a much longer password","services":{"keeta":true,"gmail":true}}}}`)

	if err := NewManager().Save(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load after overwrite: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected an empty registry, got %d accounts", m.Len())
	}
}

func TestLoad_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"accounts":`},
		{"empty file", ``},
		{"accounts as array", `{"accounts":[]}`},
		{"missing accounts", `{}`},
		{"null accounts", `{"accounts":null}`},
		{"null account", `{"accounts":{"a@x.com":null}}`},
		{"account missing password", `{"accounts":{"a@x.com":{"email":"a@x.com","services":{}}}}`},
		{"top-level key in upper case", `{"ACCOUNTS":{}}`},
		{"top-level key capitalized", `{"Accounts":{"a@x.com":{"email":"a@x.com","password":"p","services":{}}}}`},
		{"account keys in mixed case", `{"accounts":{"a@x.com":{"EMAIL":"a@x.com","Password":"p","SERVICES":{"keeta":true}}}}`},
		{"email not a string", `{"accounts":{"a@x.com":{"email":1,"password":"p","services":{}}}}`},
		{"document is null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)

			m, err := Load(path)
			if m != nil {
				t.Error("expected no manager on decode failure")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if decodeErr.Path != path {
				t.Errorf("expected path %q, got %q", path, decodeErr.Path)
			}
		})
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	path := writeFile(t, `{"version":2,"accounts":{"a@x.com":{"email":"a@x.com","password":"p","services":{"keeta":true},"note":"x"}}}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	acc, ok := m.GetAccount("a@x.com")
	if !ok || !acc.HasService("keeta") {
		t.Errorf("expected a@x.com with keeta, got %+v", acc)
	}
}

func TestLoad_DirectoryIsIOError(t *testing.T) {
	_, err := Load(t.TempDir())

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T: %v", err, err)
	}
	if ioErr.Op != "read" {
		t.Errorf("expected op %q, got %q", "read", ioErr.Op)
	}
}

func TestSave_UnwritablePathIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "accounts.json")

	err := NewManager().Save(path)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T: %v", err, err)
	}
	if ioErr.Op != "write" {
		t.Errorf("expected op %q, got %q", "write", ioErr.Op)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the underlying not-exist error to be wrapped, got %v", err)
	}
}

func TestLoad_KeysAccountsByEmail(t *testing.T) {
	path := writeFile(t, `{"accounts":{
		"old@x.com":{"email":"a@x.com","password":"p1","services":{"keeta":true}},
		"z@x.com":{"email":"b@y.com","password":"stale","services":{}},
		"b@y.com":{"email":"b@y.com","password":"p2","services":{}}
	}}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if got, want := emails(m.ListAccounts()), []string{"a@x.com", "b@y.com"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, ok := m.GetAccount("old@x.com"); ok {
		t.Error("accounts should not be reachable under a key that differs from their email")
	}
	a, _ := m.GetAccount("a@x.com")
	if !a.HasService("keeta") {
		t.Error("a@x.com should keep its services")
	}
	b, _ := m.GetAccount("b@y.com")
	if b.Password() != "p2" {
		t.Errorf("the entry stored under its own email should win, got password %q", b.Password())
	}
}

func TestManager_ZeroValueSaveLoad(t *testing.T) {
	var m Manager
	path := filepath.Join(t.TempDir(), "accounts.json")

	if err := m.Save(path); err != nil {
		t.Fatalf("failed to save empty manager: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load empty registry: %v", err)
	}
	if loaded.Len() != 0 {
		t.Errorf("expected 0 accounts, got %d", loaded.Len())
	}
}
