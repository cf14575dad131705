package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"taskboard/internal/export"
	"taskboard/internal/models"
	"taskboard/internal/stats"
)

// ListTasks returns every stored task.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.store.GetAll(r.Context()))
}

// ReplaceTasks overwrites the whole collection and returns what was persisted.
func (h *Handlers) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tasks []models.Task
	if err := json.NewDecoder(r.Body).Decode(&tasks); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if tasks == nil {
		respondError(w, http.StatusBadRequest, "expected a json array of tasks")
		return
	}

	for _, task := range tasks {
		if task == nil || task.ID() == "" {
			respondError(w, http.StatusBadRequest, "every task needs a string id")
			return
		}
	}

	if err := h.store.Replace(ctx, tasks); err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.store.GetAll(ctx))
}

// CreateTask adds a task. Missing id, status, priority and createdAt are filled in.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil || task == nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	h.fillDefaults(task)

	if err := task.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.AddTask(ctx, task); err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, task)
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.store.Get(r.Context(), taskID(r))
	if !ok {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	h.respondJSON(w, http.StatusOK, task)
}

// UpdateTask merges the supplied fields into an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := taskID(r)

	var updates models.Task
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil || updates == nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if updates.Has(models.FieldID) && updates.ID() != id {
		respondError(w, http.StatusBadRequest, "id cannot be changed")
		return
	}
	if err := updates.ValidateFields(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.store.Get(ctx, id); !ok {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	tasks, err := h.store.UpdateTask(ctx, id, updates)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	for _, task := range tasks {
		if task.ID() == id {
			h.respondJSON(w, http.StatusOK, task)
			return
		}
	}
	// Deleted concurrently between the lookup and the update.
	respondError(w, http.StatusNotFound, "task not found")
}

// DeleteTask removes a task and returns the remaining ones.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.DeleteTask(r.Context(), taskID(r))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, tasks)
}

// VocabularyData is the payload of the vocabulary endpoint.
type VocabularyData struct {
	Statuses   []models.StatusInfo   `json:"statuses"`
	Priorities []models.PriorityInfo `json:"priorities"`
}

// Vocabulary returns the status and priority tables.
func (h *Handlers) Vocabulary(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, VocabularyData{
		Statuses:   models.Statuses(),
		Priorities: models.Priorities(),
	})
}

// Stats returns aggregate figures for the stored tasks.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, stats.Summarize(h.store.GetAll(r.Context()), h.now()))
}

// Export downloads the stored tasks as json, csv or pdf.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, h.store.GetAll(r.Context())); err != nil {
		h.respondServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(format)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// fillDefaults completes a new task with generated and default fields.
func (h *Handlers) fillDefaults(task models.Task) {
	if task.ID() == "" {
		task.SetString(models.FieldID, h.newID())
	}
	if !task.Has(models.FieldStatus) {
		task.SetString(models.FieldStatus, string(models.StatusTodo))
	}
	if !task.Has(models.FieldPriority) {
		task.SetString(models.FieldPriority, string(models.PriorityMedium))
	}
	if !task.Has(models.FieldCreatedAt) {
		task.SetString(models.FieldCreatedAt, h.now().UTC().Format(time.RFC3339))
	}
}
