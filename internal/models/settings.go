package models

// Settings represents application-wide settings
type Settings struct {
	Timezone           string `json:"timezone"`           // IANA timezone name, or "Local" for the system timezone
	DailyReviewEnabled bool   `json:"dailyReviewEnabled"` // whether the daily-review workflow is offered
}
