package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

const testAccountHeader = "X-Test-Account"

// testServer wires real services over in-memory stores. Requests name
// their account in testAccountHeader instead of carrying a token.
type testServer struct {
	router   http.Handler
	accounts service.AccountService
	tasks    service.TaskService
	logBuf   *logger.TestLogBuffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log, logBuf := logger.NewTestLogger(t)

	accountStore := memory.NewDocumentStore[domain.Account](store.CollectionAccounts)
	taskStore := memory.NewDocumentStore[domain.Task](store.CollectionTasks)
	commentStore := memory.NewDocumentStore[domain.Comment](store.CollectionComments)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	accountService, err := service.NewAccountService(accountStore, auth.NewBcryptVerifier(4), jwtService, log)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(taskStore, log)
	require.NoError(t, err)
	commentService, err := service.NewCommentService(commentStore, taskStore, log)
	require.NoError(t, err)

	accountHandler := NewAccountHandler(accountService, log)
	taskHandler := NewTaskHandler(taskService, log)
	commentHandler := NewCommentHandler(commentService, log)

	r := chi.NewRouter()
	r.Post("/accounts", accountHandler.CreateAccount)
	r.Post("/access-tokens", accountHandler.CreateAccessToken)
	r.Route("/accounts/{account_id}", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get(testAccountHeader); id != "" {
					r = r.WithContext(shared.WithAccountID(r.Context(), id))
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Get("/", accountHandler.GetAccount)
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Route("/{task_id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.PatchTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Route("/comments", func(r chi.Router) {
					r.Post("/", commentHandler.CreateComment)
					r.Get("/", commentHandler.ListComments)
					r.Get("/{comment_id}", commentHandler.GetComment)
					r.Patch("/{comment_id}", commentHandler.UpdateComment)
					r.Delete("/{comment_id}", commentHandler.DeleteComment)
				})
			})
		})
	})

	return &testServer{
		router:   r,
		accounts: accountService,
		tasks:    taskService,
		logBuf:   logBuf,
	}
}

// do sends a request as accountID. A nil body sends no body; a string body
// is sent verbatim; anything else is JSON encoded.
func (s *testServer) do(t *testing.T, method, path, accountID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set(testAccountHeader, accountID)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out), recorder.Body.String())
	return out
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, recorder).Error
}
