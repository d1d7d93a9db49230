package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/stats"
	"github.com/julianstephens/pokrok/internal/storage"
)

func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	return getList[models.Habit](ctx, c, "/api/habits", nil)
}

func (c *Client) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, http.MethodPost, "/api/habits", nil, h, &out)
	return out, err
}

func (c *Client) UpdateHabit(ctx context.Context, id string, h models.Habit) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, http.MethodPut, "/api/habits/"+url.PathEscape(id), nil, h, &out)
	return out, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+url.PathEscape(id), nil, nil, nil)
}

// ToggleHabit flips (or, with completed set, forces) one day and returns the
// server's full habits collection.
func (c *Client) ToggleHabit(ctx context.Context, habitID, date string, completed *bool) ([]models.Habit, error) {
	body := struct {
		HabitID   string `json:"habitId"`
		Date      string `json:"date"`
		Completed *bool  `json:"completed,omitempty"`
	}{habitID, date, completed}
	return sendList[models.Habit](ctx, c, http.MethodPost, "/api/habits/calendar", body)
}

func (c *Client) HabitStats(ctx context.Context, id, today string) (stats.HabitStats, error) {
	var out stats.HabitStats
	q := url.Values{}
	if today != "" {
		q.Set("today", today)
	}
	err := c.do(ctx, http.MethodGet, "/api/habits/"+url.PathEscape(id)+"/stats", q, nil, &out)
	return out, err
}

func (c *Client) ListSteps(ctx context.Context, filter storage.StepFilter) ([]models.Step, error) {
	q := url.Values{}
	for key, value := range map[string]string{
		"date":   filter.Date,
		"from":   filter.From,
		"to":     filter.To,
		"areaId": filter.AreaID,
		"goalId": filter.GoalID,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	if filter.IncludeTemplates {
		q.Set("includeTemplates", "true")
	}
	return getList[models.Step](ctx, c, "/api/daily-steps", q)
}

func (c *Client) CreateStep(ctx context.Context, step models.Step) (models.Step, error) {
	var out models.Step
	err := c.do(ctx, http.MethodPost, "/api/daily-steps", nil, step, &out)
	return out, err
}

func (c *Client) UpdateStep(ctx context.Context, id string, patch service.StepPatch) (models.Step, error) {
	var out models.Step
	err := c.do(ctx, http.MethodPut, "/api/daily-steps/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

// DeleteStep returns how many steps the server removed.
func (c *Client) DeleteStep(ctx context.Context, id string) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/daily-steps/"+url.PathEscape(id), nil, nil, &out)
	return out.Deleted, err
}

func (c *Client) CompleteStep(ctx context.Context, id, date string, completed bool) (models.Step, error) {
	body := struct {
		Date      string `json:"date,omitempty"`
		Completed bool   `json:"completed"`
	}{date, completed}
	var out models.Step
	err := c.do(ctx, http.MethodPost, "/api/daily-steps/"+url.PathEscape(id)+"/complete", nil, body, &out)
	return out, err
}

func (c *Client) NextOccurrence(ctx context.Context, id, from string) (string, bool, error) {
	var out struct {
		Date    string `json:"date"`
		HasNext bool   `json:"hasNext"`
	}
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	err := c.do(ctx, http.MethodGet, "/api/daily-steps/"+url.PathEscape(id)+"/next", q, nil, &out)
	return out.Date, out.HasNext, err
}

func (c *Client) ListAreas(ctx context.Context) ([]models.Area, error) {
	return getList[models.Area](ctx, c, "/api/cesta/areas", nil)
}

func (c *Client) CreateArea(ctx context.Context, area models.Area) (models.Area, error) {
	var out models.Area
	err := c.do(ctx, http.MethodPost, "/api/cesta/areas", nil, area, &out)
	return out, err
}

func (c *Client) UpdateArea(ctx context.Context, id string, area models.Area) (models.Area, error) {
	var out models.Area
	err := c.do(ctx, http.MethodPut, "/api/cesta/areas/"+url.PathEscape(id), nil, area, &out)
	return out, err
}

func (c *Client) DeleteArea(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cesta/areas/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListGoals(ctx context.Context) ([]models.Goal, error) {
	return getList[models.Goal](ctx, c, "/api/goals", nil)
}

func (c *Client) CreateGoal(ctx context.Context, goal models.Goal) (models.Goal, error) {
	var out models.Goal
	err := c.do(ctx, http.MethodPost, "/api/goals", nil, goal, &out)
	return out, err
}

func (c *Client) UpdateGoal(ctx context.Context, id string, goal models.Goal) (models.Goal, error) {
	var out models.Goal
	err := c.do(ctx, http.MethodPut, "/api/goals/"+url.PathEscape(id), nil, goal, &out)
	return out, err
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/goals/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Agenda(ctx context.Context, date string) (scheduler.Agenda, error) {
	var out scheduler.Agenda
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	err := c.do(ctx, http.MethodGet, "/api/agenda", q, nil, &out)
	return out, err
}

func (c *Client) PendingWorkflows(ctx context.Context) ([]models.Workflow, error) {
	return getList[models.Workflow](ctx, c, "/api/workflows/pending", nil)
}

func (c *Client) RecordDailyReview(ctx context.Context, date, note string) (models.DailyReview, error) {
	body := struct {
		Date string `json:"date,omitempty"`
		Note string `json:"note,omitempty"`
	}{date, note}
	var out models.DailyReview
	err := c.do(ctx, http.MethodPost, "/api/workflows/daily-review", nil, body, &out)
	return out, err
}
