package settings

import (
	"context"
	"testing"

	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	type expected struct {
		settings Settings
		corrupt  bool
	}
	tests := map[string]struct {
		blob *string
		exp  expected
	}{
		"nothing saved": {
			exp: expected{settings: Defaults()},
		},
		"partial": {
			blob: strptr(`{"theme":"dark"}`),
			exp: expected{settings: Settings{
				Theme:           "dark",
				EmailAlerts:     true,
				SMSAlerts:       false,
				MeasurementUnit: "imperial",
				ReminderWindow:  "48",
			}},
		},
		"explicit false": {
			blob: strptr(`{"emailAlerts":false}`),
			exp: expected{settings: Settings{
				Theme:           "system",
				EmailAlerts:     false,
				MeasurementUnit: "imperial",
				ReminderWindow:  "48",
			}},
		},
		"corrupt": {
			blob: strptr(`{"theme":`),
			exp:  expected{settings: Defaults(), corrupt: true},
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			storage := local.NewMock().Storage("browser")
			if test.blob != nil {
				require.Nil(t, storage.SetItem(ctx, Key, *test.blob))
			}

			settings, corrupt, err := Load(ctx, storage)
			require.Nil(t, err)
			assert.Equal(t, test.exp.settings, settings)
			assert.Equal(t, test.exp.corrupt, corrupt)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := local.NewMock().Storage("browser")

	saved := Settings{
		Theme:           "dark",
		EmailAlerts:     false,
		SMSAlerts:       true,
		MeasurementUnit: "metric",
		ReminderWindow:  "24",
	}
	require.Nil(t, Save(ctx, storage, saved))

	loaded, corrupt, err := Load(ctx, storage)
	require.Nil(t, err)
	assert.False(t, corrupt)
	assert.Equal(t, saved, loaded)

	blob, ok, err := storage.GetItem(ctx, Key)
	require.Nil(t, err)
	require.True(t, ok)
	assert.JSONEq(
		t,
		`{"theme":"dark","emailAlerts":false,"smsAlerts":true,"measurementUnit":"metric","reminderWindow":"24"}`,
		blob,
	)
}

func TestValidate(t *testing.T) {
	valid := validator.New()

	tests := map[string]struct {
		mutate func(*Settings)
		err    bool
	}{
		"defaults":         {mutate: func(*Settings) {}, err: false},
		"light theme":      {mutate: func(s *Settings) { s.Theme = "light" }, err: false},
		"unknown theme":    {mutate: func(s *Settings) { s.Theme = "solarized" }, err: true},
		"unknown unit":     {mutate: func(s *Settings) { s.MeasurementUnit = "furlongs" }, err: true},
		"empty window":     {mutate: func(s *Settings) { s.ReminderWindow = "" }, err: true},
		"non-numeric hour": {mutate: func(s *Settings) { s.ReminderWindow = "two days" }, err: true},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			settings := Defaults()
			test.mutate(&settings)

			err := valid.Struct(settings)
			assert.Equal(t, test.err, err != nil)
		})
	}
}

func strptr(s string) *string { return &s }
