package handlers

import (
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/service"
)

type RegisterForm struct {
	Username        string `form:"username" json:"username" validate:"required,max=255"`
	Email           string `form:"email" json:"email" validate:"required,email,max=255"`
	Password        string `form:"password" json:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" validate:"required,min=6,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type TaskForm struct {
	Title         string `form:"title" json:"title" validate:"required,max=255"`
	Description   string `form:"description" json:"description" validate:"required"`
	Priority      string `form:"priority" json:"priority" validate:"required,oneof=Low Medium High"`
	DeadlineYear  int    `form:"deadline_year" json:"deadline_year" validate:"required,min=1,max=9999"`
	DeadlineMonth int    `form:"deadline_month" json:"deadline_month" validate:"required,min=1,max=12"`
	DeadlineDay   int    `form:"deadline_day" json:"deadline_day" validate:"required,min=1,max=31"`
}

func (f TaskForm) Input() service.TaskInput {
	return service.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Priority:    models.Priority(f.Priority),
		Deadline: models.DeadlineParts{
			Year:  f.DeadlineYear,
			Month: f.DeadlineMonth,
			Day:   f.DeadlineDay,
		},
	}
}

// newTaskForm is the blank create form, defaulting the deadline to today.
func newTaskForm(now time.Time) TaskForm {
	parts := models.DeadlinePartsOf(now)
	return TaskForm{
		Priority:      string(models.PriorityMedium),
		DeadlineYear:  parts.Year,
		DeadlineMonth: parts.Month,
		DeadlineDay:   parts.Day,
	}
}

func taskFormOf(task *models.Task) TaskForm {
	parts := models.DeadlinePartsOf(task.Deadline)
	return TaskForm{
		Title:         task.Title,
		Description:   task.Description,
		Priority:      string(task.Priority),
		DeadlineYear:  parts.Year,
		DeadlineMonth: parts.Month,
		DeadlineDay:   parts.Day,
	}
}

type monthOption struct {
	Value int
	Label string
}

type taskFormOptions struct {
	Priorities []models.Priority
	Months     []monthOption
	Days       []int
	Years      []int
}

// formOptions lists the select choices. The year range runs from last year to
// eight years ahead and is widened to include selectedYear.
func formOptions(now time.Time, selectedYear int) taskFormOptions {
	opts := taskFormOptions{
		Priorities: []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh},
	}
	for m := time.January; m <= time.December; m++ {
		opts.Months = append(opts.Months, monthOption{Value: int(m), Label: m.String()})
	}
	for d := 1; d <= 31; d++ {
		opts.Days = append(opts.Days, d)
	}

	first, last := now.Year()-1, now.Year()+8
	if selectedYear > 0 && selectedYear < first {
		first = selectedYear
	}
	if selectedYear > last {
		last = selectedYear
	}
	for y := first; y <= last; y++ {
		opts.Years = append(opts.Years, y)
	}
	return opts
}
