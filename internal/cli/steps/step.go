package steps

import (
	"fmt"
	"strings"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/utils"
)

type StepCmd struct {
	Add      StepAddCmd      `cmd:"" help:"Add a step (one-off or recurring)."`
	List     StepListCmd     `cmd:"" help:"List steps."`
	Edit     StepEditCmd     `cmd:"" help:"Edit a step."`
	Complete StepCompleteCmd `cmd:"" help:"Complete (or reopen) a step for a day."`
	Next     StepNextCmd     `cmd:"" help:"Show the next occurrence of a recurring step."`
	Delete   StepDeleteCmd   `cmd:"" help:"Delete a step; recurring templates take their open instances with them."`
}

type StepAddCmd struct {
	Title            string   `arg:"" help:"Step title."`
	Date             string   `help:"Due date (YYYY-MM-DD)."`
	Description      string   `help:"Optional description."`
	Important        bool     `help:"Mark as important."`
	Urgent           bool     `help:"Mark as urgent."`
	Estimate         int      `help:"Estimated minutes."`
	Area             string   `help:"Area id or name."`
	Goal             string   `help:"Goal id or title."`
	Checklist        []string `help:"Checklist items." sep:","`
	RequireChecklist bool     `help:"Refuse completion while checklist items are open."`

	Frequency string `help:"Make the step recurring: daily, weekly or monthly."`
	Days      string `help:"Comma-separated selected days for weekly or monthly steps."`
	Start     string `help:"First day of the recurrence (YYYY-MM-DD)."`
	End       string `help:"Last day of the recurrence (YYYY-MM-DD)."`
	Display   string `help:"Show only the next occurrence or all upcoming ones." enum:"next_only,all" default:"next_only"`
}

func (c *StepAddCmd) Run(ctx *cli.Context) error {
	areaID, err := ctx.OptionalAreaID(c.Area)
	if err != nil {
		return err
	}
	goalID, err := ctx.OptionalGoalID(c.Goal)
	if err != nil {
		return err
	}

	step := models.Step{
		Title:                    c.Title,
		Description:              c.Description,
		Date:                     c.Date,
		IsImportant:              c.Important,
		IsUrgent:                 c.Urgent,
		EstimatedMinutes:         c.Estimate,
		AreaID:                   areaID,
		GoalID:                   goalID,
		Checklist:                checklist(c.Checklist),
		RequireChecklistComplete: c.RequireChecklist,
	}
	if c.Frequency != "" {
		step.Frequency = constants.Frequency(c.Frequency)
		step.SelectedDays = cli.SplitDays(c.Days)
		step.RecurringStartDate = c.Start
		step.RecurringEndDate = c.End
		step.RecurringDisplayMode = constants.DisplayMode(c.Display)
	}

	created, err := ctx.Service.CreateStep(step)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Added step: %s [%s]", created.Title, cli.ShortID(created.ID))
	if created.IsRecurring() {
		msg += fmt.Sprintf(" (%s, next %s)", utils.FormatRecurrence(created.Recurrence()), orNone(created.CurrentInstanceDate))
	}
	ctx.Println(cli.Success(msg))
	return nil
}

func checklist(titles []string) []models.ChecklistItem {
	var items []models.ChecklistItem
	for _, title := range titles {
		if title = strings.TrimSpace(title); title != "" {
			items = append(items, models.ChecklistItem{Title: title})
		}
	}
	return items
}

type StepListCmd struct {
	Date      string `help:"Only steps due on this date (default: today unless --from/--to/--all)."`
	From      string `help:"Inclusive start of a date range."`
	To        string `help:"Inclusive end of a date range."`
	Area      string `help:"Area id or name."`
	Goal      string `help:"Goal id or title."`
	All       bool   `help:"List every step regardless of date."`
	Templates bool   `help:"Include recurring templates."`
}

func (c *StepListCmd) Run(ctx *cli.Context) error {
	filter := storage.StepFilter{
		Date:             c.Date,
		From:             c.From,
		To:               c.To,
		IncludeTemplates: c.Templates,
	}
	if filter.Date == "" && filter.From == "" && filter.To == "" && !c.All {
		today, err := ctx.Service.Today()
		if err != nil {
			return err
		}
		filter.Date = utils.FormatDate(today)
	}
	if c.Area != "" {
		area, err := ctx.FindArea(c.Area)
		if err != nil {
			return err
		}
		filter.AreaID = area.ID
	}
	if c.Goal != "" {
		goal, err := ctx.FindGoal(c.Goal)
		if err != nil {
			return err
		}
		filter.GoalID = goal.ID
	}

	steps, err := ctx.Service.ListSteps(filter)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		ctx.Println("No steps found.")
		return nil
	}
	for _, st := range steps {
		ctx.Println(formatStep(st, filter.Date))
	}
	return nil
}

func formatStep(st models.Step, day string) string {
	done := st.Completed
	if st.IsRecurring() && day != "" {
		done = scheduler.IsCompletedForDate(st, day)
	}
	title := st.Title
	if done {
		title = cli.DoneStyle.Render(title)
	}

	var tags []string
	if st.IsImportant {
		tags = append(tags, "important")
	}
	if st.IsUrgent {
		tags = append(tags, "urgent")
	}
	if st.EstimatedMinutes > 0 {
		tags = append(tags, fmt.Sprintf("%dm", st.EstimatedMinutes))
	}
	if len(st.Checklist) > 0 {
		tags = append(tags, fmt.Sprintf("%d/%d", len(st.Checklist)-st.OpenChecklistItems(), len(st.Checklist)))
	}
	if st.IsRecurring() {
		tags = append(tags, utils.FormatRecurrence(st.Recurrence()), "next "+orNone(st.CurrentInstanceDate))
	} else if st.Date != "" {
		tags = append(tags, st.Date)
	}

	line := fmt.Sprintf("%s %s  %s", cli.Checkbox(done), cli.MutedStyle.Render(cli.ShortID(st.ID)), title)
	if len(tags) > 0 {
		line += " " + cli.MutedStyle.Render("("+strings.Join(tags, ", ")+")")
	}
	return line
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

type StepEditCmd struct {
	Step             string  `arg:"" help:"Step id, id prefix or title."`
	Title            *string `help:"New title."`
	Description      *string `help:"New description."`
	Date             *string `help:"New date; for recurring steps this moves the open occurrence."`
	Important        *bool   `help:"Set importance."`
	Urgent           *bool   `help:"Set urgency."`
	Estimate         *int    `help:"Estimated minutes."`
	Area             *string `help:"Area id or name, empty to clear."`
	Goal             *string `help:"Goal id or title, empty to clear."`
	RequireChecklist *bool   `help:"Refuse completion while checklist items are open."`
	Frequency        *string `help:"New recurrence frequency."`
	Days             *string `help:"Comma-separated selected days."`
	Start            *string `help:"Recurrence start date."`
	End              *string `help:"Recurrence end date, empty to clear."`
	Display          *string `help:"next_only or all."`
}

func (c *StepEditCmd) Run(ctx *cli.Context) error {
	st, err := ctx.FindStep(c.Step)
	if err != nil {
		return err
	}

	patch := service.StepPatch{
		Title:                    c.Title,
		Description:              c.Description,
		Date:                     c.Date,
		IsImportant:              c.Important,
		IsUrgent:                 c.Urgent,
		EstimatedMinutes:         c.Estimate,
		RequireChecklistComplete: c.RequireChecklist,
		RecurringStartDate:       c.Start,
		RecurringEndDate:         c.End,
	}
	if c.Area != nil {
		id, err := ctx.OptionalAreaID(*c.Area)
		if err != nil {
			return err
		}
		patch.AreaID = emptyIfNil(id)
	}
	if c.Goal != nil {
		id, err := ctx.OptionalGoalID(*c.Goal)
		if err != nil {
			return err
		}
		patch.GoalID = emptyIfNil(id)
	}
	if c.Frequency != nil {
		f := constants.Frequency(*c.Frequency)
		patch.Frequency = &f
	}
	if c.Days != nil {
		days := cli.SplitDays(*c.Days)
		patch.SelectedDays = &days
	}
	if c.Display != nil {
		mode := constants.DisplayMode(*c.Display)
		patch.RecurringDisplayMode = &mode
	}

	updated, err := ctx.Service.UpdateStep(st.ID, patch)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Updated step: " + updated.Title))
	return nil
}

// emptyIfNil turns a cleared reference into the empty string the patch uses
// to detach a step.
func emptyIfNil(id *string) *string {
	if id == nil {
		empty := ""
		return &empty
	}
	return id
}

type StepCompleteCmd struct {
	Step string `arg:"" help:"Step id, id prefix or title."`
	Date string `help:"Occurrence date (default: the step's date or open occurrence)."`
	Undo bool   `help:"Reopen instead of completing."`
}

func (c *StepCompleteCmd) Run(ctx *cli.Context) error {
	st, err := ctx.FindStep(c.Step)
	if err != nil {
		return err
	}
	updated, err := ctx.Service.CompleteStep(st.ID, c.Date, !c.Undo)
	if err != nil {
		return err
	}

	switch {
	case c.Undo:
		ctx.Printf("Reopened step: %s\n", updated.Title)
	case updated.IsRecurring():
		ctx.Printf("Completed step: %s (next %s)\n", updated.Title, orNone(updated.CurrentInstanceDate))
	default:
		ctx.Printf("Completed step: %s\n", updated.Title)
	}
	return nil
}

type StepNextCmd struct {
	Step string `arg:"" help:"Step id, id prefix or title."`
	From string `help:"Search from this date (default: today)."`
}

func (c *StepNextCmd) Run(ctx *cli.Context) error {
	st, err := ctx.FindStep(c.Step)
	if err != nil {
		return err
	}
	next, ok, err := ctx.Service.NextOccurrence(st.ID, c.From)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Printf("%s has no upcoming occurrence.\n", st.Title)
		return nil
	}
	ctx.Printf("%s is next due on %s\n", st.Title, next)
	return nil
}

type StepDeleteCmd struct {
	Step string `arg:"" help:"Step id, id prefix or title."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *StepDeleteCmd) Run(ctx *cli.Context) error {
	st, err := ctx.FindStep(c.Step)
	if err != nil {
		return err
	}

	if st.IsRecurring() && !c.Yes {
		instances, err := ctx.Service.GeneratedInstances(st.ID)
		if err != nil {
			return err
		}
		ok, err := ctx.Ask(
			fmt.Sprintf("Delete recurring step %q?", st.Title),
			fmt.Sprintf("%d open occurrence(s) will be removed as well. Completed history is kept.", len(instances)),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	removed, err := ctx.Service.DeleteStep(st.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Deleted step: %s (%d removed)\n", st.Title, removed)
	return nil
}
