package handlers

import (
	"net/http"
	"sort"

	"taskboard/internal/models"
	"taskboard/internal/stats"
)

// TaskView is a task prepared for templates.
type TaskView struct {
	ID            string
	Title         string
	Description   string
	DueDate       string
	Status        models.Status
	StatusLabel   string
	Priority      models.Priority
	PriorityLabel string
	PriorityColor string
	Overdue       bool
}

// HomeData holds data for the home page template.
type HomeData struct {
	Title      string
	Filter     string // "all" or a status value
	Sort       string // "" for insertion order, or "priority"
	Tasks      []TaskView
	Statuses   []models.StatusInfo
	Priorities []models.PriorityInfo
}

// StatsData holds data for the statistics page template.
type StatsData struct {
	Title   string
	Summary stats.Summary
}

// AboutData holds data for the about page template.
type AboutData struct {
	Title      string
	Storage    string
	StorageKey string
}

// Home renders the task list, optionally filtered by status and sorted by priority.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = "all"
	}
	if filter != "all" && !models.Status(filter).Valid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	sortBy := r.URL.Query().Get("sort")
	if sortBy != "" && sortBy != "priority" {
		respondError(w, http.StatusBadRequest, "sort must be 'priority'")
		return
	}

	now := h.now()
	views := make([]TaskView, 0)
	for _, task := range h.store.GetAll(ctx) {
		if filter != "all" && task.Status() != models.Status(filter) {
			continue
		}
		views = append(views, TaskView{
			ID:            task.ID(),
			Title:         task.Title(),
			Description:   task.String(models.FieldDescription),
			DueDate:       task.String(models.FieldDueDate),
			Status:        task.Status(),
			StatusLabel:   task.Status().Label(),
			Priority:      task.Priority(),
			PriorityLabel: task.Priority().Label(),
			PriorityColor: task.Priority().Color(),
			Overdue:       task.IsOverdue(now),
		})
	}

	if sortBy == "priority" {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Priority.Order() < views[j].Priority.Order()
		})
	}

	data := HomeData{
		Title:      "Tasks",
		Filter:     filter,
		Sort:       sortBy,
		Tasks:      views,
		Statuses:   models.Statuses(),
		Priorities: models.Priorities(),
	}

	h.render(w, "home.html", data)
}

// StatsPage renders the statistics view.
func (h *Handlers) StatsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "stats.html", StatsData{
		Title:   "Statistics",
		Summary: stats.Summarize(h.store.GetAll(r.Context()), h.now()),
	})
}

// About renders the about view.
func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, "about.html", AboutData{
		Title:      "About",
		Storage:    h.StorageName,
		StorageKey: h.store.Key(),
	})
}

// CreateTaskForm adds a task from the home page form and redirects back.
func (h *Handlers) CreateTaskForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	task := models.Task{}
	task.SetString(models.FieldTitle, r.FormValue("title"))
	for _, field := range []string{models.FieldDescription, models.FieldPriority, models.FieldDueDate} {
		if v := r.FormValue(field); v != "" {
			task.SetString(field, v)
		}
	}
	h.fillDefaults(task)

	if err := task.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.AddTask(r.Context(), task); err != nil {
		h.respondStoreError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UpdateTaskStatusForm changes a task's status from the home page.
func (h *Handlers) UpdateTaskStatusForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := taskID(r)

	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	updates := models.Task{}
	updates.SetString(models.FieldStatus, r.FormValue("status"))
	if err := updates.ValidateFields(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.store.Get(ctx, id); !ok {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	if _, err := h.store.UpdateTask(ctx, id, updates); err != nil {
		h.respondStoreError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteTaskForm removes a task from the home page.
func (h *Handlers) DeleteTaskForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.DeleteTask(r.Context(), taskID(r)); err != nil {
		h.respondStoreError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
