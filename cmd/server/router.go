package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tasker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	accountHandler := api.NewAccountHandler(app.accountService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	commentHandler := api.NewCommentHandler(app.commentService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/accounts", accountHandler.CreateAccount)
		r.Post("/access-tokens", accountHandler.CreateAccessToken)

		// Account-scoped endpoints
		r.Route("/accounts/{"+api.AccountIDParam+"}", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiMiddleware.RequireAccountMatch(api.AccountIDParam))

			r.Get("/", accountHandler.GetAccount)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)

				r.Route("/{"+api.TaskIDParam+"}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Patch("/", taskHandler.PatchTask)
					r.Delete("/", taskHandler.DeleteTask)

					r.Route("/comments", func(r chi.Router) {
						r.Post("/", commentHandler.CreateComment)
						r.Get("/", commentHandler.ListComments)
						r.Get("/{"+api.CommentIDParam+"}", commentHandler.GetComment)
						r.Patch("/{"+api.CommentIDParam+"}", commentHandler.UpdateComment)
						r.Delete("/{"+api.CommentIDParam+"}", commentHandler.DeleteComment)
					})
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}
