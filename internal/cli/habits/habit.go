package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/stats"
	"github.com/julianstephens/pokrok/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Toggle   HabitToggleCmd   `cmd:"" help:"Toggle a habit's completion for a day."`
	Stats    HabitStatsCmd    `cmd:"" help:"Show streaks and completion rate."`
	Calendar HabitCalendarCmd `cmd:"" help:"Show habit history (ASCII calendar)."`
	Archive  HabitArchiveCmd  `cmd:"" help:"Archive a habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit (soft delete)."`
	Restore  HabitRestoreCmd  `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Frequency   string `help:"daily, weekly or monthly." default:"daily" enum:"daily,weekly,monthly,custom"`
	Days        string `help:"Comma-separated days: weekdays for weekly, day numbers or tokens like first_monday for monthly."`
	Start       string `help:"Start date (YYYY-MM-DD)."`
	Description string `help:"Optional description."`
	Area        string `help:"Area id or name."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	areaID, err := ctx.OptionalAreaID(c.Area)
	if err != nil {
		return err
	}
	h, err := ctx.Service.CreateHabit(models.Habit{
		Name:         c.Name,
		Description:  c.Description,
		Frequency:    constants.Frequency(c.Frequency),
		SelectedDays: cli.SplitDays(c.Days),
		StartDate:    c.Start,
		AreaID:       areaID,
	})
	if err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("Added habit: %s (%s)", h.Name, utils.FormatRecurrence(h.Recurrence()))))
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	var (
		habits []models.Habit
		err    error
	)
	if c.Archived || c.Deleted {
		habits, err = ctx.Service.ListAllHabits(c.Deleted)
	} else {
		habits, err = ctx.Service.ListHabits()
	}
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today, err := ctx.Service.Today()
	if err != nil {
		return err
	}
	key := utils.FormatDate(today)
	for _, h := range habits {
		if !c.Archived && h.ArchivedAt != nil && h.DeletedAt == nil {
			continue
		}
		status := ""
		if h.DeletedAt != nil {
			status = cli.MutedStyle.Render(" [DELETED]")
		} else if h.ArchivedAt != nil {
			status = cli.MutedStyle.Render(" [ARCHIVED]")
		}
		ctx.Printf("%s %s  %s %s%s\n",
			cli.Checkbox(h.IsCompletedOn(key)),
			cli.MutedStyle.Render(cli.ShortID(h.ID)),
			h.Name,
			cli.MutedStyle.Render("("+utils.FormatRecurrence(h.Recurrence())+")"),
			status)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit id or name."`
	Name        *string `help:"New name."`
	Frequency   *string `help:"daily, weekly or monthly."`
	Days        *string `help:"Comma-separated selected days."`
	Start       *string `help:"Start date (YYYY-MM-DD), empty to clear."`
	Description *string `help:"New description."`
	Area        *string `help:"Area id or name, empty to clear."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}
	if c.Name != nil {
		h.Name = *c.Name
	}
	if c.Frequency != nil {
		h.Frequency = constants.Frequency(*c.Frequency)
	}
	if c.Days != nil {
		h.SelectedDays = cli.SplitDays(*c.Days)
	}
	if c.Start != nil {
		h.StartDate = *c.Start
	}
	if c.Description != nil {
		h.Description = *c.Description
	}
	if c.Area != nil {
		if h.AreaID, err = ctx.OptionalAreaID(*c.Area); err != nil {
			return err
		}
	}

	updated, err := ctx.Service.UpdateHabit(h.ID, h)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Updated habit: " + updated.Name))
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
	Done  *bool  `help:"Set completion explicitly instead of toggling."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}
	habits, err := ctx.Service.ToggleHabit(h.ID, c.Date, c.Done)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		today, err := ctx.Service.Today()
		if err != nil {
			return err
		}
		day = utils.FormatDate(today)
	} else if day, err = utils.NormalizeDate(day); err != nil {
		return err
	}

	for _, updated := range habits {
		if updated.ID != h.ID {
			continue
		}
		if updated.IsCompletedOn(day) {
			ctx.Printf("Marked habit %q for %s\n", updated.Name, day)
		} else {
			ctx.Printf("Unmarked habit %q for %s\n", updated.Name, day)
		}
	}
	return nil
}

type HabitStatsCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Today string `help:"Compute statistics up to this date (default: today)."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, true)
	if err != nil {
		return err
	}
	st, err := ctx.Service.HabitStats(h.ID, c.Today)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(h.Name))
	ctx.Printf("  Schedule:          %s\n", utils.FormatRecurrence(h.Recurrence()))
	ctx.Printf("  Tracking since:    %s\n", st.StartDate)
	ctx.Printf("  Planned days:      %d\n", st.TotalPlanned)
	ctx.Printf("  Completed:         %d\n", st.TotalCompleted)
	ctx.Printf("  Extra completions: %d\n", st.CompletedOutsidePlan)
	ctx.Printf("  Completion rate:   %.0f%%\n", st.CompletionRate)
	ctx.Printf("  Current streak:    %d\n", st.CurrentStreak)
	best := st.MaxStreak
	if h.MaxStreak != nil && *h.MaxStreak > best {
		best = *h.MaxStreak
	}
	ctx.Printf("  Best streak:       %d\n", best)
	return nil
}

type HabitCalendarCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show the calendar for one habit only."`
}

func (c *HabitCalendarCmd) Run(ctx *cli.Context) error {
	if c.Days <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.FindHabit(c.Habit, false)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		all, err := ctx.Service.ListHabits()
		if err != nil {
			return err
		}
		for _, h := range all {
			if h.ArchivedAt == nil {
				habits = append(habits, h)
			}
		}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today, err := ctx.Service.Today()
	if err != nil {
		return err
	}
	start := utils.AddDays(today, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)
	ctx.Println(calendarHeader(start, c.Days))
	for _, h := range habits {
		ctx.Println(calendarRow(h, start, today, c.Days))
	}
	ctx.Println()
	ctx.Println(cli.MutedStyle.Render("■ done  · missed  (blank) not scheduled"))
	return nil
}

const nameWidth = 20

func calendarHeader(start time.Time, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", nameWidth, "Habit")
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, " %5s", utils.AddDays(start, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", nameWidth+6*days))
	return b.String()
}

func calendarRow(h models.Habit, start, today time.Time, days int) string {
	var b strings.Builder
	b.WriteString(padName(h.Name))
	for i := 0; i < days; i++ {
		day := utils.AddDays(start, i)
		switch {
		case h.IsCompletedOn(utils.FormatDate(day)):
			b.WriteString("   " + cli.SuccessStyle.Render("■") + "  ")
		case stats.IsHabitScheduled(h, day, today):
			b.WriteString("   ·  ")
		default:
			b.WriteString("      ")
		}
	}
	return b.String()
}

func padName(name string) string {
	runes := []rune(name)
	if len(runes) > nameWidth {
		return string(runes[:nameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", nameWidth-len(runes))
}

type HabitArchiveCmd struct {
	Habit     string `arg:"" help:"Habit id or name."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}
	if c.Unarchive {
		if err := ctx.Service.UnarchiveHabit(h.ID); err != nil {
			return err
		}
		ctx.Printf("Unarchived habit: %s\n", h.Name)
		return nil
	}
	if err := ctx.Service.ArchiveHabit(h.ID); err != nil {
		return err
	}
	ctx.Printf("Archived habit: %s\n", h.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Service.DeleteHabit(h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	ctx.Println(cli.MutedStyle.Render("Use 'pokrok habit restore' to undo."))
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, true)
	if err != nil {
		return err
	}
	if h.DeletedAt == nil {
		return fmt.Errorf("habit %q is not deleted", h.Name)
	}
	if err := ctx.Service.RestoreHabit(h.ID); err != nil {
		return err
	}
	ctx.Printf("Restored habit: %s\n", h.Name)
	return nil
}
