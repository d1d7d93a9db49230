package constants

const (
	SettingTimezone           = "timezone"
	SettingDailyReviewEnabled = "daily_review_enabled"

	DefaultTimezone           = "Local" // Use system local timezone by default
	DefaultDailyReviewEnabled = true
)
