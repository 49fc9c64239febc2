package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asad/mailreg/internal/core"
	"github.com/asad/mailreg/internal/logging"
	"github.com/asad/mailreg/internal/registry"
)

// AccountService exposes the account registry over HTTP.
type AccountService struct {
	store  AccountStore
	logger logging.Logger
}

// NewAccountService creates a new account service instance.
func NewAccountService(store AccountStore, logger logging.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// Name returns the service identifier.
func (s *AccountService) Name() string {
	return "accounts"
}

// RegisterRoutes sets up HTTP routes for account operations:
//   - GET / - List accounts (?missing={service} lists accounts without it)
//   - GET /{email} - Get account
//   - PUT /{email} - Create or replace account
//   - DELETE /{email} - Delete account
//   - PUT /{email}/services/{service} - Enable service
//   - DELETE /{email}/services/{service} - Disable service
func (s *AccountService) RegisterRoutes(router chi.Router) {
	router.Get("/", s.handleListAccounts)

	router.Get("/{email}", s.handleGetAccount)
	router.Put("/{email}", s.handlePutAccount)
	router.Delete("/{email}", s.handleDeleteAccount)

	router.Put("/{email}/services/{service}", s.handleAddService)
	router.Delete("/{email}/services/{service}", s.handleRemoveService)
}

// handleListAccounts handles GET / to list accounts.
func (s *AccountService) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	missing := r.URL.Query().Get("missing")

	var (
		list []registry.Account
		err  error
	)
	if missing != "" {
		list, err = s.store.AccountsMissingService(r.Context(), missing)
	} else {
		list, err = s.store.ListAccounts(r.Context())
	}
	if err != nil {
		s.logger.Error("failed to list accounts",
			logging.String("missing", missing),
			logging.ErrorField(err),
		)
		s.writeError(w, http.StatusInternalServerError, "InternalError", "Failed to list accounts")
		return
	}

	s.writeJSON(w, http.StatusOK, AccountListResult{
		Accounts: newAccountInfos(list),
		Missing:  missing,
	})
}

// handleGetAccount handles GET /{email} to fetch one account.
func (s *AccountService) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	acc, ok, err := s.store.GetAccount(r.Context(), email)
	if err != nil {
		s.logger.Error("failed to get account",
			logging.String("email", email),
			logging.ErrorField(err),
		)
		s.writeError(w, http.StatusInternalServerError, "InternalError", "Failed to retrieve account")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "AccountNotFound", "account "+email+" does not exist")
		return
	}

	s.writeJSON(w, http.StatusOK, newAccountInfo(acc))
}

// handlePutAccount handles PUT /{email} to create or replace an account.
func (s *AccountService) handlePutAccount(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	defer r.Body.Close()

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "InvalidRequest", "Request body must be {\"password\": \"...\"}")
		return
	}

	if err := s.store.AddAccount(r.Context(), email, req.Password); err != nil {
		s.logger.Error("failed to add account",
			logging.String("email", email),
			logging.ErrorField(err),
		)
		s.writeError(w, http.StatusInternalServerError, "InternalError", "Failed to create account")
		return
	}

	s.logger.Info("account created", logging.String("email", email))
	s.writeJSON(w, http.StatusCreated, AccountInfo{Email: email, Services: []string{}})
}

// handleDeleteAccount handles DELETE /{email}. Deleting an unknown account succeeds.
func (s *AccountService) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := s.store.RemoveAccount(r.Context(), email); err != nil {
		s.logger.Error("failed to remove account",
			logging.String("email", email),
			logging.ErrorField(err),
		)
		s.writeError(w, http.StatusInternalServerError, "InternalError", "Failed to delete account")
		return
	}

	s.logger.Info("account deleted", logging.String("email", email))
	w.WriteHeader(http.StatusNoContent)
}

// handleAddService handles PUT /{email}/services/{service}.
func (s *AccountService) handleAddService(w http.ResponseWriter, r *http.Request) {
	s.editService(w, r, "enabled", s.store.AddServices)
}

// handleRemoveService handles DELETE /{email}/services/{service}.
func (s *AccountService) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	s.editService(w, r, "disabled", s.store.RemoveServices)
}

func (s *AccountService) editService(w http.ResponseWriter, r *http.Request, action string,
	edit func(ctx context.Context, email string, services ...string) error) {
	email := chi.URLParam(r, "email")
	service := chi.URLParam(r, "service")

	if err := edit(r.Context(), email, service); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.writeError(w, http.StatusNotFound, "AccountNotFound", err.Error())
			return
		}
		s.logger.Error("failed to update services",
			logging.String("email", email),
			logging.String("service", service),
			logging.ErrorField(err),
		)
		s.writeError(w, http.StatusInternalServerError, "InternalError", "Failed to update services")
		return
	}

	s.logger.Info("service "+action,
		logging.String("email", email),
		logging.String("service", service),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *AccountService) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", logging.ErrorField(err))
	}
}

// writeError writes an error response in a consistent format.
func (s *AccountService) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// Ensure AccountService implements the Service interface.
var _ core.Service = (*AccountService)(nil)
