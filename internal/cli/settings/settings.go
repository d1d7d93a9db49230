package settings

import (
	"github.com/julianstephens/pokrok/internal/cli"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone    *string `help:"IANA timezone used to decide what today is, or Local."`
	DailyReview *bool   `help:"Enable or disable the daily review workflow."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Service.GetSettings()
	if err != nil {
		return err
	}

	if c.List || (c.Timezone == nil && c.DailyReview == nil) {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Printf("  Daily Review Enabled:  %v\n", settings.DailyReviewEnabled)
		if ctx.Config != nil && ctx.Config.Timezone != "" {
			ctx.Println(cli.MutedStyle.Render("  (timezone overridden by config: " + ctx.Config.Timezone + ")"))
		}
		return nil
	}

	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
	}
	if c.DailyReview != nil {
		settings.DailyReviewEnabled = *c.DailyReview
	}
	if _, err := ctx.Service.UpdateSettings(settings); err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
