package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// AccountHandler handles registration, login and account lookup.
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService service.AccountService, logger *slog.Logger) *AccountHandler {
	if accountService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("accountService cannot be nil for AccountHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AccountHandler{
		accountService: accountService,
		logger:         logger.With(slog.String("component", "account_handler")),
	}
}

// CreateAccount handles POST /accounts.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), service.CreateAccountParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create account")
		return
	}

	log.Info("account created", slog.String("account_id", account.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, accountToResponse(account))
}

// CreateAccessToken handles POST /access-tokens.
func (h *AccountHandler) CreateAccessToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AccessTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	token, err := h.accountService.CreateAccessToken(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create access token")
		return
	}

	log.Debug("access token issued", slog.String("account_id", token.AccountID))
	shared.RespondWithJSON(w, r, http.StatusCreated, AccessTokenResponse{
		AccountID: token.AccountID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
}

// GetAccount handles GET /accounts/{account_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(r.Context(), accountID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get account")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, accountToResponse(account))
}
