package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// Path parameter names shared by the router and the handlers.
const (
	AccountIDParam = "account_id"
	TaskIDParam    = "task_id"
	CommentIDParam = "comment_id"
)

// getAccountIDFromContext returns the account ID placed in the context by
// the authentication middleware.
func getAccountIDFromContext(r *http.Request) (string, bool) {
	return shared.GetAccountID(r.Context())
}

// requireAccountID writes a 401 and returns false when the request carries
// no authenticated account.
func requireAccountID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		log.Warn("account ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return accountID, true
}

// parsePaginationParams reads page and size from the query string. Absent
// values take the defaults; present values below 1 or not integers are a
// bad request.
func parsePaginationParams(r *http.Request) (domain.PaginationParams, error) {
	query := r.URL.Query()

	page, err := queryInt(query.Get("page"), domain.DefaultPage)
	if err != nil || page < 1 {
		return domain.PaginationParams{}, service.NewBadRequestError("Page must be greater than 0", err)
	}
	size, err := queryInt(query.Get("size"), domain.DefaultSize)
	if err != nil || size < 1 {
		return domain.PaginationParams{}, service.NewBadRequestError("Size must be greater than 0", err)
	}

	params, err := domain.NewPaginationParams(page, size)
	if err != nil {
		return domain.PaginationParams{}, service.PaginationError(err, page)
	}
	return params, nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// parseActiveFilter reads the tri-state active filter. Absent means no
// filtering; "true" in any case means true; anything else means false.
func parseActiveFilter(r *http.Request) *bool {
	query := r.URL.Query()
	if !query.Has("active") {
		return nil
	}
	active := strings.EqualFold(query.Get("active"), "true")
	return &active
}

// decodeAndValidate decodes the JSON body into v and runs its validation
// tags.
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return service.NewBadRequestError("Invalid request format", err)
	}
	return shared.ValidateRequest(v)
}

// pathParam returns a chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
