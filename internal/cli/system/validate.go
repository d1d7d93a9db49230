package system

import (
	"fmt"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := validateStore(ctx)
	if err != nil {
		return err
	}
	if !result.HasConflicts() {
		ctx.Println(cli.Success("No conflicts detected."))
		return nil
	}
	ctx.Printf("%s", cli.Warning(result.FormatReport()))
	return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
}

func validateStore(ctx *cli.Context) (validation.Result, error) {
	var in validation.Input
	var err error
	if in.Habits, err = ctx.Service.ListAllHabits(false); err != nil {
		return validation.Result{}, fmt.Errorf("failed to get habits: %w", err)
	}
	if in.Steps, err = ctx.Service.ListSteps(storage.StepFilter{IncludeTemplates: true}); err != nil {
		return validation.Result{}, fmt.Errorf("failed to get steps: %w", err)
	}
	if in.Areas, err = ctx.Service.ListAreas(); err != nil {
		return validation.Result{}, fmt.Errorf("failed to get areas: %w", err)
	}
	if in.Goals, err = ctx.Service.ListGoals(); err != nil {
		return validation.Result{}, fmt.Errorf("failed to get goals: %w", err)
	}
	return validation.New().Validate(in), nil
}
