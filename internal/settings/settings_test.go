package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/park-explorer/internal/park"
	"github.com/i474232898/park-explorer/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(store.NewMemoryStore(), nil)
	require.NoError(t, err)
	return svc
}

const validBody = `{
	"hikingDuration": 6,
	"travelDistance": 120,
	"budget": 0,
	"preferredActivities": ["kayaking"],
	"seasonalPreference": "spring"
}`

func TestGet_ReturnsDefaultsWhenUnset(t *testing.T) {
	svc := newService(t)

	prefs, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)

	stored, err := svc.Stored(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUpdate_OverlaysDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	prefs, err := svc.Update(ctx, "alice", []byte(validBody))
	require.NoError(t, err)

	assert.Equal(t, 6.0, *prefs.HikingDuration)
	assert.Equal(t, 120.0, *prefs.TravelDistance)
	assert.Equal(t, 0.0, *prefs.Budget)
	assert.Equal(t, []string{"kayaking"}, prefs.PreferredActivities)
	assert.Equal(t, park.SeasonSpring, prefs.SeasonalPreference)
	assert.Equal(t, "", prefs.AccessibilityOptions)

	got, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, prefs, got)

	// other users still see the defaults
	other, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), other)
}

func TestUpdate_EmptyUserFallsBackToDefaultUser(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Update(ctx, "  ", []byte(validBody))
	require.NoError(t, err)

	stored, err := svc.Stored(ctx, DefaultUserID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, park.SeasonSpring, stored.SeasonalPreference)
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"hiking too long", `{"hikingDuration": 13, "travelDistance": 1, "budget": 1, "preferredActivities": [], "seasonalPreference": "fall"}`, "Invalid hikingDuration"},
		{"hiking not a number", `{"hikingDuration": "4", "travelDistance": 1, "budget": 1, "preferredActivities": [], "seasonalPreference": "fall"}`, "Invalid hikingDuration"},
		{"distance zero", `{"hikingDuration": 4, "travelDistance": 0, "budget": 1, "preferredActivities": [], "seasonalPreference": "fall"}`, "Invalid travelDistance"},
		{"negative budget", `{"hikingDuration": 4, "travelDistance": 1, "budget": -1, "preferredActivities": [], "seasonalPreference": "fall"}`, "Invalid budget"},
		{"activities not array", `{"hikingDuration": 4, "travelDistance": 1, "budget": 1, "preferredActivities": "hiking", "seasonalPreference": "fall"}`, "preferredActivities must be an array"},
		{"unknown season", `{"hikingDuration": 4, "travelDistance": 1, "budget": 1, "preferredActivities": [], "seasonalPreference": "monsoon"}`, "Invalid seasonalPreference"},
		{"missing season", `{"hikingDuration": 4, "travelDistance": 1, "budget": 1, "preferredActivities": []}`, "Invalid seasonalPreference"},
		{"first failure wins", `{"hikingDuration": 0, "travelDistance": 0, "budget": -1, "preferredActivities": [], "seasonalPreference": "fall"}`, "Invalid hikingDuration"},
		{"not json", `{hikingDuration`, "Invalid JSON body"},
		{"not an object", `[1, 2]`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)

			_, err := svc.Update(context.Background(), "u", []byte(tt.body))
			require.Error(t, err)
			assert.True(t, park.IsKind(err, park.KindInvalidInput))
			assert.EqualError(t, err, tt.want)

			_, ok, _ := svc.store.Get(context.Background(), "u")
			assert.False(t, ok, "invalid bodies are not stored")
		})
	}
}
