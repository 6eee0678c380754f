package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/tasks"
	tu "github.com/calegria/shotwork/internal/testing"
)

func setupAPI(t *testing.T) (*BasicRouter, *tu.MockStore, *tu.MockNotifier) {
	t.Helper()

	store := tu.NewMockStore()
	notifier := &tu.MockNotifier{}
	service := tasks.NewTaskService(tasks.TaskServiceOpts{
		Store:    store,
		Notifier: notifier,
		Resolver: &tu.MockResolver{},
	})

	router := NewBasicRouter()
	router.Handler(&HealthHandler{})
	router.Handler(NewTaskHandler(service, &tu.MockResolver{}, nil))
	return router, store, notifier
}

func doRequest(t *testing.T, router *BasicRouter, method, path string, actor *models.Actor, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if actor != nil {
		req.Header.Set("X-Actor-Id", actor.ActorID)
		req.Header.Set("X-Actor-Role", string(actor.Role))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func createTestTask(t *testing.T, router *BasicRouter) *models.Task {
	t.Helper()

	admin := models.Actor{ActorID: "admin-1", Role: models.RoleAdmin}
	recorder := doRequest(t, router, http.MethodPost, "/api/tasks", &admin, map[string]any{
		"title":                 "Site survey",
		"require_sets":          2,
		"video_required":        false,
		"created_photo_file_id": "photo-origin",
	})

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var task models.Task
	if err := json.Unmarshal(recorder.Body.Bytes(), &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}
	return &task
}

func TestHealthHandler(t *testing.T) {
	router, _, _ := setupAPI(t)

	recorder := doRequest(t, router, http.MethodGet, "/health", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", recorder.Code)
	}
}

func TestCreateTask(t *testing.T) {
	router, _, notifier := setupAPI(t)

	t.Run("creates task in New status", func(t *testing.T) {
		task := createTestTask(t, router)

		if task.Status != models.StatusNew {
			t.Errorf("Expected status %s, got %s", models.StatusNew, task.Status)
		}
		if task.CreatedPhoto.FileID != "photo-origin" {
			t.Errorf("Expected created photo photo-origin, got %s", task.CreatedPhoto.FileID)
		}
		if len(notifier.Published()) == 0 {
			t.Error("Expected a created event to be published")
		}
	})

	t.Run("rejects missing actor headers", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks", nil, map[string]any{"title": "x"})
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", recorder.Code)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		bogus := models.Actor{ActorID: "u1", Role: "superuser"}
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks", &bogus, map[string]any{"title": "x"})
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", recorder.Code)
		}
	})

	t.Run("rejects missing title", func(t *testing.T) {
		admin := models.Actor{ActorID: "admin-1", Role: models.RoleAdmin}
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks", &admin, map[string]any{
			"require_sets":          1,
			"created_photo_file_id": "p1",
		})
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", recorder.Code)
		}
	})
}

func TestGetAndListTasks(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)

	t.Run("gets task by id", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID, nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", recorder.Code)
		}

		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.TaskID != task.TaskID {
			t.Errorf("Expected task %s, got %s", task.TaskID, got.TaskID)
		}
	})

	t.Run("returns 404 for unknown id", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks/nope", nil, nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", recorder.Code)
		}
	})

	t.Run("lists tasks with status filter", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks?status=new", nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", recorder.Code)
		}

		var list []*models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &list); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("Expected 1 task, got %d", len(list))
		}
	})

	t.Run("empty filter result is an empty array", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks?status=completed", nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", recorder.Code)
		}
		if body := recorder.Body.String(); body != "[]\n" {
			t.Errorf("Expected empty array, got %q", body)
		}
	})
}

func TestTransitionEndpoint(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}
	lead := models.Actor{ActorID: "lead-1", Role: models.RoleLead}

	t.Run("member receives task", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/transition", &member, map[string]any{"to": "received"})
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.Status != models.StatusReceived {
			t.Errorf("Expected received, got %s", got.Status)
		}
	})

	t.Run("member cannot send received back to new", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/transition", &member, map[string]any{"to": "new"})
		if recorder.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", recorder.Code)
		}
	})

	t.Run("undefined edge is unprocessable", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/transition", &lead, map[string]any{"to": "completed"})
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", recorder.Code)
		}
	})
}

func TestMediaEndpoints(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}

	t.Run("adds photos to a set", func(t *testing.T) {
		for i := range 3 {
			recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/photos", &member, map[string]any{
				"set_index": 0,
				"file_id":   fmt.Sprintf("photo-%d", i),
			})
			if recorder.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
			}
		}

		recorder := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID, nil, nil)
		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.CompletedSets != 1 {
			t.Errorf("Expected 1 completed set, got %d", got.CompletedSets)
		}
	})

	t.Run("duplicate file id conflicts", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/photos", &member, map[string]any{
			"set_index": 0,
			"file_id":   "photo-0",
		})
		if recorder.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d", recorder.Code)
		}
	})

	t.Run("set index out of range is a bad request", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/photos", &member, map[string]any{
			"set_index": 9,
			"file_id":   "photo-x",
		})
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", recorder.Code)
		}
	})

	t.Run("created photo is protected from batch delete", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.TaskID+"/media", &member, map[string]any{
			"file_ids": []string{"photo-1", "photo-origin"},
		})
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", recorder.Code)
		}

		// atomic: the deletable photo must survive the failed batch
		check := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID, nil, nil)
		var got models.Task
		if err := json.Unmarshal(check.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if !got.HasFileID("photo-1") {
			t.Error("Expected photo-1 to survive the failed batch delete")
		}
	})

	t.Run("batch delete removes media and recomputes", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.TaskID+"/media", &member, map[string]any{
			"file_ids": []string{"photo-1", "photo-2"},
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.CompletedSets != 0 {
			t.Errorf("Expected 0 completed sets after delete, got %d", got.CompletedSets)
		}
	})

	t.Run("resolves media url", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID+"/media/photo-0/url", nil, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resolved map[string]string
		if err := json.Unmarshal(recorder.Body.Bytes(), &resolved); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if resolved["url"] == "" {
			t.Error("Expected a resolved url")
		}
	})

	t.Run("unknown media url is 404", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID+"/media/nope/url", nil, nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", recorder.Code)
		}
	})
}

func TestArchiveRestoreDelete(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)

	admin := models.Actor{ActorID: "admin-1", Role: models.RoleAdmin}
	lead := models.Actor{ActorID: "lead-1", Role: models.RoleLead}
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}

	doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/transition", &member, map[string]any{"to": "received"})
	doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/transition", &member, map[string]any{"to": "submitted"})

	t.Run("archive stores pre-archive status", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/archive", &lead, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if !got.Archived || got.PreArchiveStatus != models.StatusSubmitted {
			t.Errorf("Expected archived with pre-archive submitted, got archived=%v pre=%s", got.Archived, got.PreArchiveStatus)
		}
	})

	t.Run("lead cannot restore", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/restore", &lead, nil)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", recorder.Code)
		}
	})

	t.Run("admin restores to pre-archive status", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/restore", &admin, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var got models.Task
		if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.Archived || got.Status != models.StatusSubmitted {
			t.Errorf("Expected restored submitted task, got archived=%v status=%s", got.Archived, got.Status)
		}
	})

	t.Run("member cannot delete", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.TaskID, &member, nil)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", recorder.Code)
		}
	})

	t.Run("admin delete is permanent", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.TaskID, &admin, nil)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", recorder.Code)
		}

		check := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID, nil, nil)
		if check.Code != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", check.Code)
		}
	})
}

func TestLockEndpoints(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)

	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}
	other := models.Actor{ActorID: "member-2", Role: models.RoleMember}
	admin := models.Actor{ActorID: "admin-1", Role: models.RoleAdmin}
	viewer := models.Actor{ActorID: "viewer-1", Role: models.RoleViewer}

	t.Run("viewer cannot lock", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/lock", &viewer, nil)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", recorder.Code)
		}
	})

	t.Run("lock blocks other members", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/lock", &member, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		blocked := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/photos", &other, map[string]any{
			"set_index": 0,
			"file_id":   "photo-a",
		})
		if blocked.Code != http.StatusConflict {
			t.Errorf("Expected 409 for locked task, got %d", blocked.Code)
		}
	})

	t.Run("admin bypasses lock", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/photos", &admin, map[string]any{
			"set_index": 0,
			"file_id":   "photo-admin",
		})
		if recorder.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("only holder or admin may unlock", func(t *testing.T) {
		recorder := doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/unlock", &other, nil)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for non-holder unlock, got %d", recorder.Code)
		}

		recorder = doRequest(t, router, http.MethodPost, "/api/tasks/"+task.TaskID+"/unlock", &member, nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("Expected 200 for holder unlock, got %d", recorder.Code)
		}
	})
}

func TestAllowedActionsEndpoint(t *testing.T) {
	router, _, _ := setupAPI(t)
	task := createTestTask(t, router)
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}

	recorder := doRequest(t, router, http.MethodGet, "/api/tasks/"+task.TaskID+"/actions", &member, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var body struct {
		Allowed []models.Status `json:"allowed"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body.Allowed) != 1 || body.Allowed[0] != models.StatusReceived {
		t.Errorf("Expected [received], got %v", body.Allowed)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := NewBasicRouter()
	router.Use(RateLimit(1, 1))
	router.Handler(&HealthHandler{})

	first := doRequest(t, router, http.MethodGet, "/health", nil, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", first.Code)
	}

	second := doRequest(t, router, http.MethodGet, "/health", nil, nil)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", second.Code)
	}
}
