package accounts

import "github.com/asad/mailreg/internal/registry"

// AccountInfo is the API representation of an account. Passwords are
// never sent back to clients.
type AccountInfo struct {
	Email    string   `json:"email"`
	Services []string `json:"services"`
}

// AccountListResult is the response body of GET /accounts.
type AccountListResult struct {
	Accounts []AccountInfo `json:"Accounts"`

	// Missing is the service used to filter the list (if any).
	Missing string `json:"Missing,omitempty"`
}

// CreateAccountRequest is the request body of PUT /accounts/{email}.
type CreateAccountRequest struct {
	Password string `json:"password"`
}

func newAccountInfo(acc registry.Account) AccountInfo {
	return AccountInfo{
		Email:    acc.Email(),
		Services: acc.Services(),
	}
}

func newAccountInfos(accounts []registry.Account) []AccountInfo {
	infos := make([]AccountInfo, 0, len(accounts))
	for _, acc := range accounts {
		infos = append(infos, newAccountInfo(acc))
	}
	return infos
}
