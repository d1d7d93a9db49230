package planning

import (
	"fmt"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/models"
)

type AreaCmd struct {
	Add    AreaAddCmd    `cmd:"" help:"Add an area."`
	List   AreaListCmd   `cmd:"" help:"List areas."`
	Delete AreaDeleteCmd `cmd:"" help:"Delete an area; habits, steps and goals are detached."`
}

type AreaAddCmd struct {
	Name        string `arg:"" help:"Area name."`
	Description string `help:"Optional description."`
	Color       string `help:"Hex color such as #3b82f6."`
	Icon        string `help:"Icon name."`
	Order       int    `help:"Sort position."`
}

func (c *AreaAddCmd) Run(ctx *cli.Context) error {
	area, err := ctx.Service.CreateArea(models.Area{
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		Order:       c.Order,
	})
	if err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("Added area: %s [%s]", area.Name, cli.ShortID(area.ID))))
	return nil
}

type AreaListCmd struct{}

func (c *AreaListCmd) Run(ctx *cli.Context) error {
	areas, err := ctx.Service.ListAreas()
	if err != nil {
		return err
	}
	if len(areas) == 0 {
		ctx.Println("No areas found.")
		return nil
	}
	for _, a := range areas {
		line := fmt.Sprintf("%s  %s", cli.MutedStyle.Render(cli.ShortID(a.ID)), a.Name)
		if a.Description != "" {
			line += " " + cli.MutedStyle.Render("- "+a.Description)
		}
		ctx.Println(line)
	}
	return nil
}

type AreaDeleteCmd struct {
	Area string `arg:"" help:"Area id or name."`
}

func (c *AreaDeleteCmd) Run(ctx *cli.Context) error {
	area, err := ctx.FindArea(c.Area)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Service.DeleteArea(area.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted area: %s\n", area.Name)
	return nil
}
