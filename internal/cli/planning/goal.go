package planning

import (
	"fmt"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

type GoalCmd struct {
	Add    GoalAddCmd    `cmd:"" help:"Add a goal."`
	List   GoalListCmd   `cmd:"" help:"List goals."`
	Status GoalStatusCmd `cmd:"" help:"Change a goal's status."`
	Delete GoalDeleteCmd `cmd:"" help:"Delete a goal; its steps are detached."`
}

type GoalAddCmd struct {
	Title       string `arg:"" help:"Goal title."`
	Description string `help:"Optional description."`
	Target      string `help:"Target date (YYYY-MM-DD)."`
	Start       string `help:"Start date (YYYY-MM-DD)."`
	Area        string `help:"Area id or name."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	areaID, err := ctx.OptionalAreaID(c.Area)
	if err != nil {
		return err
	}
	goal, err := ctx.Service.CreateGoal(models.Goal{
		Title:       c.Title,
		Description: c.Description,
		TargetDate:  c.Target,
		StartDate:   c.Start,
		AreaID:      areaID,
	})
	if err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("Added goal: %s [%s]", goal.Title, cli.ShortID(goal.ID))))
	return nil
}

type GoalListCmd struct {
	Status string `help:"Only goals with this status." enum:"all,active,paused,completed" default:"all"`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	goals, err := ctx.Service.ListGoals()
	if err != nil {
		return err
	}
	shown := 0
	for _, g := range goals {
		if c.Status != "" && c.Status != "all" && string(g.Status) != c.Status {
			continue
		}
		shown++
		line := fmt.Sprintf("%s  %s %s", cli.MutedStyle.Render(cli.ShortID(g.ID)), g.Title, statusLabel(g.Status))
		if g.TargetDate != "" {
			line += cli.MutedStyle.Render(" (target " + g.TargetDate + ")")
		}
		ctx.Println(line)
	}
	if shown == 0 {
		ctx.Println("No goals found.")
	}
	return nil
}

func statusLabel(s constants.GoalStatus) string {
	switch s {
	case constants.GoalCompleted:
		return cli.SuccessStyle.Render("[completed]")
	case constants.GoalPaused:
		return cli.WarnStyle.Render("[paused]")
	default:
		return cli.MutedStyle.Render("[active]")
	}
}

type GoalStatusCmd struct {
	Goal   string `arg:"" help:"Goal id or title."`
	Status string `arg:"" help:"New status." enum:"active,paused,completed"`
}

func (c *GoalStatusCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.FindGoal(c.Goal)
	if err != nil {
		return err
	}
	updated, err := ctx.Service.SetGoalStatus(goal.ID, constants.GoalStatus(c.Status))
	if err != nil {
		return err
	}
	ctx.Printf("Goal %s is now %s\n", updated.Title, updated.Status)
	return nil
}

type GoalDeleteCmd struct {
	Goal string `arg:"" help:"Goal id or title."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.FindGoal(c.Goal)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Service.DeleteGoal(goal.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted goal: %s\n", goal.Title)
	return nil
}
