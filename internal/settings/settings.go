// Package settings persists the dashboard preferences of a browser.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/banjito/ampcalibration/internal/local"
)

// Key is the local storage key settings are persisted under.
const Key = "settings"

// Settings are a browser's dashboard preferences.
type Settings struct {
	Theme           string `json:"theme" validate:"oneof=system light dark"`
	EmailAlerts     bool   `json:"emailAlerts"`
	SMSAlerts       bool   `json:"smsAlerts"`
	MeasurementUnit string `json:"measurementUnit" validate:"oneof=imperial metric"`

	// ReminderWindow is the number of hours ahead of a calibration a reminder
	// is sent.
	ReminderWindow string `json:"reminderWindow" validate:"required,numeric"`
}

// Defaults are the Settings of a browser that has not saved any.
func Defaults() Settings {
	return Settings{
		Theme:           "system",
		EmailAlerts:     true,
		SMSAlerts:       false,
		MeasurementUnit: "imperial",
		ReminderWindow:  "48",
	}
}

// Load retrieves the browser's Settings. Fields missing from the saved
// Settings take their default. A blob that cannot be decoded is ignored in
// favour of the defaults; the second return value reports whether that
// happened.
func Load(ctx context.Context, storage local.Storage) (Settings, bool, error) {
	settings := Defaults()

	blob, ok, err := storage.GetItem(ctx, Key)
	if err != nil {
		return settings, false, fmt.Errorf("load settings; error: %w", err)
	}
	if !ok {
		return settings, false, nil
	}

	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		return Defaults(), true, nil
	}
	return settings, false, nil
}

// Save persists settings as the browser's Settings.
func Save(ctx context.Context, storage local.Storage, settings Settings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings; error: %w", err)
	}
	if err := storage.SetItem(ctx, Key, string(b)); err != nil {
		return fmt.Errorf("save settings; error: %w", err)
	}
	return nil
}
