package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/services"
	"github.com/calegria/shotwork/internal/shared"
	"github.com/calegria/shotwork/internal/tasks"
	"github.com/charmbracelet/log"
)

// TaskHandler exposes the task engine as a JSON API.
//
// Implements the [Handler] interface for registration with a [Router].
type TaskHandler struct {
	service  *tasks.TaskService
	resolver services.MediaResolver
	logger   *log.Logger
}

// NewTaskHandler creates a TaskHandler backed by the given service.
func NewTaskHandler(service *tasks.TaskService, resolver services.MediaResolver, logger *log.Logger) *TaskHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TaskHandler{service: service, resolver: resolver, logger: logger}
}

// Routes returns the path patterns this handler serves.
func (h *TaskHandler) Routes() []string {
	return []string{
		"/api/tasks",
		"/api/tasks/{id}",
		"/api/tasks/{id}/photos",
		"/api/tasks/{id}/videos",
		"/api/tasks/{id}/media",
		"/api/tasks/{id}/media/{fileID}/url",
		"/api/tasks/{id}/transition",
		"/api/tasks/{id}/archive",
		"/api/tasks/{id}/restore",
		"/api/tasks/{id}/actions",
		"/api/tasks/{id}/lock",
		"/api/tasks/{id}/unlock",
	}
}

// ServeHTTP dispatches to the operation matching the request's route and method.
func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch {
	case id == "":
		switch r.Method {
		case http.MethodGet:
			h.listTasks(w, r)
		case http.MethodPost:
			h.createTask(w, r)
		default:
			h.methodNotAllowed(w)
		}
	case r.PathValue("fileID") != "":
		h.requireMethod(w, r, http.MethodGet, h.resolveMedia)
	default:
		h.dispatchTaskRoute(w, r, id)
	}
}

func (h *TaskHandler) dispatchTaskRoute(w http.ResponseWriter, r *http.Request, id string) {
	switch routeSuffix(r.URL.Path) {
	case "photos":
		h.requireMethod(w, r, http.MethodPost, h.addPhoto)
	case "videos":
		h.requireMethod(w, r, http.MethodPost, h.addVideo)
	case "media":
		h.requireMethod(w, r, http.MethodDelete, h.deleteMedia)
	case "transition":
		h.requireMethod(w, r, http.MethodPost, h.transition)
	case "archive":
		h.requireMethod(w, r, http.MethodPost, h.archive)
	case "restore":
		h.requireMethod(w, r, http.MethodPost, h.restore)
	case "actions":
		h.requireMethod(w, r, http.MethodGet, h.allowedActions)
	case "lock":
		h.requireMethod(w, r, http.MethodPost, h.lock)
	case "unlock":
		h.requireMethod(w, r, http.MethodPost, h.unlock)
	default:
		switch r.Method {
		case http.MethodGet:
			h.getTask(w, r)
		case http.MethodDelete:
			h.deleteTask(w, r)
		default:
			h.methodNotAllowed(w)
		}
	}
}

func (h *TaskHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, fn func(http.ResponseWriter, *http.Request)) {
	if r.Method != method {
		h.methodNotAllowed(w)
		return
	}
	fn(w, r)
}

type createTaskRequest struct {
	Title              string `json:"title"`
	RequireSets        int    `json:"require_sets"`
	VideoRequired      bool   `json:"video_required"`
	CreatedPhotoFileID string `json:"created_photo_file_id"`
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.Title, req.RequireSets, req.VideoRequired, req.CreatedPhotoFileID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	var statusFilter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		statusFilter = &status
	}

	var archivedFilter *bool
	if raw := r.URL.Query().Get("archived"); raw != "" {
		archived := raw == "true" || raw == "1"
		archivedFilter = &archived
	}

	list, err := h.service.ListTasks(r.Context(), statusFilter, archivedFilter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Task{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

type mediaRequest struct {
	SetIndex int    `json:"set_index"`
	FileID   string `json:"file_id"`
}

func (h *TaskHandler) addPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req mediaRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.AddPhoto(r.Context(), r.PathValue("id"), req.SetIndex, req.FileID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) addVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req mediaRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.AddVideo(r.Context(), r.PathValue("id"), req.SetIndex, req.FileID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

type deleteMediaRequest struct {
	FileIDs []string `json:"file_ids"`
}

func (h *TaskHandler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteMediaRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.DeleteMediaBatch(r.Context(), r.PathValue("id"), req.FileIDs, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) resolveMedia(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil {
		h.writeError(w, fmt.Errorf("%w: media proxy not configured", shared.ErrServiceUnavailable))
		return
	}

	task, err := h.service.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	fileID := r.PathValue("fileID")
	if !task.HasFileID(fileID) {
		h.writeError(w, fmt.Errorf("%w: %s", shared.ErrMediaNotFound, fileID))
		return
	}

	url, err := h.resolver.Resolve(r.Context(), fileID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"file_id": fileID, "url": url})
}

type transitionRequest struct {
	To models.Status `json:"to"`
}

func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.TransitionTask(r.Context(), r.PathValue("id"), req.To, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) archive(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.service.ArchiveTask)
}

func (h *TaskHandler) restore(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.service.RestoreTask)
}

func (h *TaskHandler) lock(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.service.LockTask)
}

func (h *TaskHandler) unlock(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.service.UnlockTask)
}

func (h *TaskHandler) allowedActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	actions, err := h.service.AllowedActions(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"allowed": actions})
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), r.PathValue("id"), actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// simpleMutation handles endpoints that take no body beyond the actor headers.
func (h *TaskHandler) simpleMutation(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, taskID string, actor models.Actor) (*models.Task, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	task, err := fn(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// actor extracts the pre-resolved actor from request headers.
func (h *TaskHandler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	id := r.Header.Get("X-Actor-Id")
	role := models.Role(r.Header.Get("X-Actor-Role"))

	if id == "" {
		h.writeJSON(w, http.StatusUnauthorized, errorBody("actor", "X-Actor-Id header is required"))
		return models.Actor{}, false
	}
	if !role.Valid() {
		h.writeJSON(w, http.StatusBadRequest, errorBody("actor", fmt.Sprintf("unknown role %q", role)))
		return models.Actor{}, false
	}

	return models.Actor{ActorID: id, Role: role}, true
}

func (h *TaskHandler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("body", "invalid JSON request body"))
		return false
	}
	return true
}

func (h *TaskHandler) methodNotAllowed(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusMethodNotAllowed, errorBody("method", "method not allowed"))
}

func (h *TaskHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps typed engine failures onto HTTP status codes.
//
// Forbidden responses deliberately do not say which roles would have been
// allowed.
func (h *TaskHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	field := "request"

	switch {
	case errors.Is(err, shared.ErrTaskNotFound):
		status, field = http.StatusNotFound, "task_id"
	case errors.Is(err, shared.ErrMediaNotFound):
		status, field = http.StatusNotFound, "file_id"
	case errors.Is(err, shared.ErrForbidden):
		status, field = http.StatusForbidden, "role"
	case errors.Is(err, shared.ErrProtectedMedia):
		status, field = http.StatusForbidden, "file_id"
	case errors.Is(err, shared.ErrTaskLocked):
		status, field = http.StatusConflict, "task_id"
	case errors.Is(err, shared.ErrConflict):
		status, field = http.StatusConflict, "version"
	case errors.Is(err, shared.ErrDuplicateMedia):
		status, field = http.StatusConflict, "file_id"
	case errors.Is(err, shared.ErrVideoAlreadyPresent):
		status, field = http.StatusConflict, "set_index"
	case errors.Is(err, shared.ErrSetIndexOutOfRange):
		status, field = http.StatusBadRequest, "set_index"
	case errors.Is(err, shared.ErrInvalidTransition):
		status, field = http.StatusUnprocessableEntity, "to"
	case errors.Is(err, shared.ErrInvalidInput):
		status, field = http.StatusBadRequest, "request"
	case errors.Is(err, shared.ErrServiceUnavailable):
		status, field = http.StatusBadGateway, "request"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}

	h.writeJSON(w, status, errorBody(field, err.Error()))
}

func errorBody(field, message string) map[string]string {
	return map[string]string{"field": field, "error": message}
}

// routeSuffix returns the final path segment, used to pick the operation for
// task subresource routes.
func routeSuffix(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the path patterns this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP responds with a static OK payload.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
