package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
	"tasktracker/internal/service"
	"tasktracker/pkg/logger"
)

type TaskHandler struct {
	base
	tasks *service.TaskService
	now   func() time.Time
}

func NewTaskHandler(tasks *service.TaskService, cookies *middleware.CookieHelper) *TaskHandler {
	return &TaskHandler{base: base{cookies: cookies}, tasks: tasks, now: time.Now}
}

// List serves GET /task: every task, sorted by the sort_by and sort_order query
// parameters, plus the create form for admins.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	return h.renderList(c, fiber.StatusOK, true, newTaskForm(h.now()), nil)
}

// ShowTasks is the read-only listing without the create form.
func (h *TaskHandler) ShowTasks(c *fiber.Ctx) error {
	return h.renderList(c, fiber.StatusOK, false, TaskForm{}, nil)
}

func (h *TaskHandler) renderList(c *fiber.Ctx, status int, showForm bool, form TaskForm, errs []string) error {
	sortBy := c.Query("sort_by")
	sortOrder := c.Query("sort_order", service.SortAsc)

	tasks, err := h.tasks.ListTasks(c.UserContext(), middleware.Principal(c), sortBy, sortOrder)
	if errors.Is(err, models.ErrInvalidSortKey) {
		return h.fail(c, err, c.Path())
	}
	if err != nil {
		return h.fail(c, err, "/dashboard")
	}

	return h.render(c, status, "task", fiber.Map{
		"Tasks":     tasks,
		"ShowForm":  showForm,
		"Form":      form,
		"Options":   formOptions(h.now(), form.DeadlineYear),
		"Errors":    errs,
		"SortKeys":  service.SortKeys(),
		"SortBy":    sortBy,
		"SortOrder": sortOrder,
	})
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if d := policy.IsAllowed(p, policy.ActionCreateTask); !d.Allowed {
		return h.fail(c, d.Err(), "/task")
	}

	form, errs := parseTaskForm(c)
	if errs != nil {
		return h.renderList(c, fiber.StatusUnprocessableEntity, true, form, errs)
	}

	task, err := h.tasks.CreateTask(c.UserContext(), p, form.Input())
	if errors.Is(err, models.ErrInvalidDate) {
		_, message := resolveError(c, err)
		return h.renderList(c, fiber.StatusUnprocessableEntity, true, form, []string{message})
	}
	if err != nil {
		return h.fail(c, err, "/task")
	}

	logger.AuditLogger.Info("Task created",
		zap.Int("task_id", task.ID),
		zap.Int("user_id", p.UserID),
	)
	return h.redirect(c, "/task", middleware.NoticeSuccess, "Task created successfully!")
}

func (h *TaskHandler) EditPage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, "/task")
	}
	task, err := h.tasks.GetTask(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return h.fail(c, err, "/task")
	}
	return h.renderEdit(c, fiber.StatusOK, task, taskFormOf(task), nil)
}

func (h *TaskHandler) Edit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, "/task")
	}
	p := middleware.Principal(c)
	if d := policy.IsAllowed(p, policy.ActionEditTask); !d.Allowed {
		return h.fail(c, d.Err(), "/task")
	}

	form, errs := parseTaskForm(c)
	if errs != nil {
		return h.renderEdit(c, fiber.StatusUnprocessableEntity, &models.Task{ID: id}, form, errs)
	}

	task, err := h.tasks.EditTask(c.UserContext(), p, id, form.Input())
	if errors.Is(err, models.ErrInvalidDate) {
		_, message := resolveError(c, err)
		return h.renderEdit(c, fiber.StatusUnprocessableEntity, &models.Task{ID: id}, form, []string{message})
	}
	if err != nil {
		return h.fail(c, err, "/task")
	}

	logger.AuditLogger.Info("Task updated",
		zap.Int("task_id", task.ID),
		zap.Int("user_id", p.UserID),
	)
	return h.redirect(c, "/task", middleware.NoticeSuccess, "Task updated successfully!")
}

func (h *TaskHandler) renderEdit(c *fiber.Ctx, status int, task *models.Task, form TaskForm, errs []string) error {
	return h.render(c, status, "edit_task", fiber.Map{
		"Task":    task,
		"Form":    form,
		"Options": formOptions(h.now(), form.DeadlineYear),
		"Errors":  errs,
	})
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, "/task")
	}
	p := middleware.Principal(c)
	if err := h.tasks.DeleteTask(c.UserContext(), p, id); err != nil {
		return h.fail(c, err, "/task")
	}

	logger.AuditLogger.Info("Task deleted",
		zap.Int("task_id", id),
		zap.Int("user_id", p.UserID),
	)
	return h.redirect(c, "/task", middleware.NoticeSuccess, "Task deleted successfully!")
}

func (h *TaskHandler) MarkInProgress(c *fiber.Ctx) error {
	return h.transition(c, h.tasks.MarkInProgress, models.StatusInProgress)
}

func (h *TaskHandler) MarkDone(c *fiber.Ctx) error {
	return h.transition(c, h.tasks.MarkDone, models.StatusDone)
}

type transitionFunc func(ctx context.Context, p models.Principal, id int) error

func (h *TaskHandler) transition(c *fiber.Ctx, apply transitionFunc, status models.Status) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, "/task")
	}
	p := middleware.Principal(c)
	if err := apply(c.UserContext(), p, id); err != nil {
		return h.fail(c, err, "/task")
	}

	logger.AuditLogger.Info("Task status changed",
		zap.Int("task_id", id),
		zap.String("status", string(status)),
		zap.Int("user_id", p.UserID),
	)
	return h.redirect(c, "/task", "", "")
}

// UpdateTask resets a task the caller owns. A missing task and a foreign task
// get the same notice.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	const denied = "Task not found or you do not have permission to update it."

	id, err := paramID(c, "id")
	if err != nil {
		return h.redirect(c, "/task", middleware.NoticeDanger, denied)
	}
	p := middleware.Principal(c)
	err = h.tasks.ResetOwnTask(c.UserContext(), p, id)
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
		logger.SecurityLogger.Warn("Task reset refused",
			zap.Int("task_id", id),
			zap.Int("user_id", p.UserID),
		)
		return h.redirect(c, "/task", middleware.NoticeDanger, denied)
	}
	if err != nil {
		return h.fail(c, err, "/task")
	}

	logger.AuditLogger.Info("Task status changed",
		zap.Int("task_id", id),
		zap.String("status", string(models.StatusTodo)),
		zap.Int("user_id", p.UserID),
	)
	return h.redirect(c, "/task", middleware.NoticeSuccess, `Task status updated to "To Do"!`)
}

// MarkTodo is reachable without a session. An unknown task is ignored.
func (h *TaskHandler) MarkTodo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.redirect(c, "/task", "", "")
	}
	p := middleware.Principal(c)
	err = h.tasks.ResetToTodo(c.UserContext(), p, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return h.fail(c, err, "/task")
	}
	if err == nil {
		logger.AuditLogger.Info("Task status changed",
			zap.Int("task_id", id),
			zap.String("status", string(models.StatusTodo)),
			zap.Int("user_id", p.UserID),
		)
	}
	return h.redirect(c, "/task", "", "")
}

func parseTaskForm(c *fiber.Ctx) (TaskForm, []string) {
	var form TaskForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in task form", zap.Error(err))
		return form, []string{"invalid form data"}
	}
	return form, validateForm(form)
}
