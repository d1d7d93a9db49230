package models

import (
	"strconv"

	"github.com/julianstephens/pokrok/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{DailyReviewEnabled: constants.DefaultDailyReviewEnabled}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDailyReviewEnabled:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, err
			}
			settings.DailyReviewEnabled = enabled
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingDailyReviewEnabled: strconv.FormatBool(settings.DailyReviewEnabled),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
