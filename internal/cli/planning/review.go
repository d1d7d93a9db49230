package planning

import (
	"fmt"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/scheduler"
)

// ReviewCmd records the daily review that clears the pending workflow.
type ReviewCmd struct {
	Note string `arg:"" optional:"" help:"What went well, what didn't."`
	Date string `help:"Review date (default: today)."`
}

func (c *ReviewCmd) Run(ctx *cli.Context) error {
	review, err := ctx.Service.RecordDailyReview(c.Date, c.Note)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Daily review recorded for " + review.Date))
	return nil
}

// AgendaCmd prints the habits and steps for a day, plus pending workflows.
type AgendaCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (default: today)."`
}

func (c *AgendaCmd) Run(ctx *cli.Context) error {
	agenda, err := ctx.Service.Agenda(c.Date)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render("Agenda for " + agenda.Date))
	ctx.Println()
	ctx.Println("Habits:")
	if len(agenda.Habits) == 0 {
		ctx.Println(cli.MutedStyle.Render("  none scheduled"))
	}
	for _, h := range agenda.Habits {
		ctx.Printf("  %s %s\n", cli.Checkbox(h.Completed), h.Habit.Name)
	}

	ctx.Println()
	ctx.Println("Steps:")
	if len(agenda.Steps) == 0 {
		ctx.Println(cli.MutedStyle.Render("  nothing due"))
	}
	for _, st := range agenda.Steps {
		ctx.Printf("  %s %s%s\n", cli.Checkbox(st.Completed), st.Step.Title, stepSuffix(st))
	}

	workflows, err := ctx.Service.PendingWorkflows()
	if err != nil {
		return err
	}
	for _, w := range workflows {
		ctx.Println()
		ctx.Println(cli.Warning(fmt.Sprintf("%s (%s)", w.Message, w.Date)))
	}
	return nil
}

func stepSuffix(st scheduler.AgendaStep) string {
	if st.Overdue {
		return " " + cli.ErrorStyle.Render("(overdue)")
	}
	return ""
}
