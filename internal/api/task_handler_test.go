package api

import (
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "account-a"
	otherID = "account-b"
)

func tasksPath(accountID string) string {
	return "/accounts/" + accountID + "/tasks"
}

func taskPath(accountID, taskID string) string {
	return tasksPath(accountID) + "/" + taskID
}

func createTaskViaAPI(t *testing.T, s *testServer, accountID, title string) TaskResponse {
	t.Helper()
	recorder := s.do(t, http.MethodPost, tasksPath(accountID), accountID, CreateTaskRequest{
		Title:       title,
		Description: title + " description",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	return decodeBody[TaskResponse](t, recorder)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		s := newTestServer(t)
		task := createTaskViaAPI(t, s, ownerID, "write docs")

		assert.NotEmpty(t, task.ID)
		assert.Equal(t, ownerID, task.AccountID)
		assert.Equal(t, "write docs", task.Title)
		assert.True(t, task.Active)
		assert.Nil(t, task.CompletedAt)
	})

	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{name: "empty body", body: "", message: "Request body is required"},
		{name: "missing title", body: map[string]string{"description": "d"}, message: "Title is required"},
		{name: "missing description", body: map[string]string{"title": "t"}, message: "Description is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			recorder := s.do(t, http.MethodPost, tasksPath(ownerID), ownerID, tt.body)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, tt.message, errorMessage(t, recorder))
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		s := newTestServer(t)
		recorder := s.do(t, http.MethodPost, tasksPath(ownerID), "", CreateTaskRequest{Title: "t", Description: "d"})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	task := createTaskViaAPI(t, s, ownerID, "read mail")

	recorder := s.do(t, http.MethodGet, taskPath(ownerID, task.ID), ownerID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, task.ID, decodeBody[TaskResponse](t, recorder).ID)

	recorder = s.do(t, http.MethodGet, taskPath(otherID, task.ID), otherID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "tasks are scoped to their account")
	assert.Equal(t, fmt.Sprintf("Task with id %s not found.", task.ID), errorMessage(t, recorder))
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, createTaskViaAPI(t, s, ownerID, fmt.Sprintf("task %d", i)).ID)
	}
	createTaskViaAPI(t, s, otherID, "not mine")

	recorder := s.do(t, http.MethodPatch, taskPath(ownerID, ids[1]), ownerID, PatchTaskRequest{Action: TaskActionMarkAsDone})
	require.Equal(t, http.StatusOK, recorder.Code)

	tests := []struct {
		name       string
		query      string
		wantIDs    []string
		wantTotal  int
		wantPages  int
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{
			name:      "defaults",
			query:     "",
			wantIDs:   ids,
			wantTotal: 5, wantPages: 1, wantPage: 1, wantSize: 10,
		},
		{
			name:      "second page",
			query:     "?page=2&size=2",
			wantIDs:   ids[2:4],
			wantTotal: 5, wantPages: 3, wantPage: 2, wantSize: 2, wantOffset: 2,
		},
		{
			name:      "past the end",
			query:     "?page=9&size=2",
			wantIDs:   []string{},
			wantTotal: 5, wantPages: 3, wantPage: 9, wantSize: 2, wantOffset: 16,
		},
		{
			name:      "active only",
			query:     "?active=TRUE",
			wantIDs:   []string{ids[0], ids[2], ids[3], ids[4]},
			wantTotal: 4, wantPages: 1, wantPage: 1, wantSize: 10,
		},
		{
			name:      "completed only",
			query:     "?active=false",
			wantIDs:   []string{ids[1]},
			wantTotal: 1, wantPages: 1, wantPage: 1, wantSize: 10,
		},
		{
			name:      "non boolean value means false",
			query:     "?active=yes",
			wantIDs:   []string{ids[1]},
			wantTotal: 1, wantPages: 1, wantPage: 1, wantSize: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := s.do(t, http.MethodGet, tasksPath(ownerID)+tt.query, ownerID, nil)
			require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

			page := decodeBody[PaginatedResponse[TaskResponse]](t, recorder)
			got := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.PaginationParams.Page)
			assert.Equal(t, tt.wantSize, page.PaginationParams.Size)
			assert.Equal(t, tt.wantOffset, page.PaginationParams.Offset)
		})
	}

	t.Run("empty listing encodes items as array", func(t *testing.T) {
		recorder := s.do(t, http.MethodGet, tasksPath("nobody"), "nobody", nil)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"items":[]`)
		assert.Contains(t, recorder.Body.String(), `"total_count":0`)
	})

	invalid := []struct {
		query   string
		message string
	}{
		{query: "?page=0", message: "Page must be greater than 0"},
		{query: "?page=-1", message: "Page must be greater than 0"},
		{query: "?page=abc", message: "Page must be greater than 0"},
		{query: "?size=0", message: "Size must be greater than 0"},
		{query: "?page=1&size=-5", message: "Size must be greater than 0"},
		{query: "?page=4611686018427387904&size=4", message: "Page is too large"},
		{query: fmt.Sprintf("?page=%d&size=2", math.MaxInt), message: "Page is too large"},
	}
	for _, tt := range invalid {
		t.Run("invalid "+tt.query, func(t *testing.T) {
			recorder := s.do(t, http.MethodGet, tasksPath(ownerID)+tt.query, ownerID, nil)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, tt.message, errorMessage(t, recorder))
		})
	}
}

func TestPatchTask(t *testing.T) {
	t.Parallel()

	t.Run("update fields", func(t *testing.T) {
		s := newTestServer(t)
		task := createTaskViaAPI(t, s, ownerID, "draft")

		recorder := s.do(t, http.MethodPatch, taskPath(ownerID, task.ID), ownerID,
			PatchTaskRequest{Title: "final", Description: "final description"})

		require.Equal(t, http.StatusOK, recorder.Code)
		updated := decodeBody[TaskResponse](t, recorder)
		assert.Equal(t, task.ID, updated.ID)
		assert.Equal(t, "final", updated.Title)
		assert.Equal(t, "final description", updated.Description)
		assert.Equal(t, task.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.Active)
	})

	t.Run("update requires both fields", func(t *testing.T) {
		s := newTestServer(t)
		task := createTaskViaAPI(t, s, ownerID, "draft")

		recorder := s.do(t, http.MethodPatch, taskPath(ownerID, task.ID), ownerID, map[string]string{"title": "only"})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Description is required", errorMessage(t, recorder))
	})

	t.Run("mark as done is idempotent", func(t *testing.T) {
		s := newTestServer(t)
		task := createTaskViaAPI(t, s, ownerID, "ship it")

		first := s.do(t, http.MethodPatch, taskPath(ownerID, task.ID), ownerID, PatchTaskRequest{Action: TaskActionMarkAsDone})
		require.Equal(t, http.StatusOK, first.Code)
		done := decodeBody[TaskResponse](t, first)
		assert.False(t, done.Active)
		require.NotNil(t, done.CompletedAt)

		second := s.do(t, http.MethodPatch, taskPath(ownerID, task.ID), ownerID, PatchTaskRequest{Action: TaskActionMarkAsDone})
		require.Equal(t, http.StatusOK, second.Code)
		again := decodeBody[TaskResponse](t, second)
		assert.False(t, again.Active)
		assert.Equal(t, done.CompletedAt, again.CompletedAt)
	})

	t.Run("missing task", func(t *testing.T) {
		s := newTestServer(t)
		recorder := s.do(t, http.MethodPatch, taskPath(ownerID, "nope"), ownerID, PatchTaskRequest{Action: TaskActionMarkAsDone})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		s := newTestServer(t)
		task := createTaskViaAPI(t, s, ownerID, "draft")
		recorder := s.do(t, http.MethodPatch, taskPath(ownerID, task.ID), ownerID, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Request body is required", errorMessage(t, recorder))
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	task := createTaskViaAPI(t, s, ownerID, "obsolete")

	recorder := s.do(t, http.MethodDelete, taskPath(ownerID, task.ID), ownerID, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	recorder = s.do(t, http.MethodGet, taskPath(ownerID, task.ID), ownerID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = s.do(t, http.MethodDelete, taskPath(ownerID, task.ID), ownerID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "second delete reports not found")

	recorder = s.do(t, http.MethodGet, tasksPath(ownerID), ownerID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 0, decodeBody[PaginatedResponse[TaskResponse]](t, recorder).TotalCount)
}
