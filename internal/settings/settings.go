package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/i474232898/park-explorer/internal/park"
)

// DefaultUserID is used when the caller does not identify itself.
const DefaultUserID = "default-user"

// Defaults returns a fresh copy of the settings every user starts with.
func Defaults() park.UserPreferences {
	hiking, distance, budget := 4.0, 50.0, 50.0
	return park.UserPreferences{
		PreferredActivities:  []string{"hiking", "camping"},
		HikingDuration:       &hiking,
		TravelDistance:       &distance,
		Budget:               &budget,
		SeasonalPreference:   park.SeasonFall,
		AccessibilityOptions: "",
	}
}

const bodySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["hikingDuration", "travelDistance", "budget", "preferredActivities", "seasonalPreference"],
  "properties": {
    "hikingDuration":       {"type": "number", "minimum": 1, "maximum": 12},
    "travelDistance":       {"type": "number", "exclusiveMinimum": 0},
    "budget":               {"type": "number", "minimum": 0},
    "preferredActivities":  {"type": "array", "items": {"type": "string"}},
    "seasonalPreference":   {"type": "string", "enum": ["fall", "winter", "summer", "spring"]},
    "accessibilityOptions": {"type": "string"}
  }
}`

// fields in the order they are reported
var checkOrder = []string{"hikingDuration", "travelDistance", "budget", "preferredActivities", "seasonalPreference", "accessibilityOptions"}

var fieldMessages = map[string]string{
	"preferredActivities": "preferredActivities must be an array",
}

// Service reads and updates per-user preferences.
type Service struct {
	store  park.PreferencesStore
	schema *gojsonschema.Schema
	logger *zap.Logger
}

func NewService(store park.PreferencesStore, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(bodySchema))
	if err != nil {
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}
	return &Service{
		store:  store,
		schema: schema,
		logger: logger.With(zap.String("component", "settings")),
	}, nil
}

// Get returns the user's stored settings or the defaults.
func (s *Service) Get(ctx context.Context, userID string) (park.UserPreferences, error) {
	prefs, ok, err := s.store.Get(ctx, normalizeUser(userID))
	if err != nil {
		return park.UserPreferences{}, err
	}
	if !ok {
		return Defaults(), nil
	}
	return prefs, nil
}

// Stored returns the user's saved settings, or nil if none were ever saved.
func (s *Service) Stored(ctx context.Context, userID string) (*park.UserPreferences, error) {
	prefs, ok, err := s.store.Get(ctx, normalizeUser(userID))
	if err != nil || !ok {
		return nil, err
	}
	return &prefs, nil
}

// Update validates body, overlays it on the defaults and stores the result.
// Validation failures are park.KindInvalidInput errors whose message names the field.
func (s *Service) Update(ctx context.Context, userID string, body []byte) (park.UserPreferences, error) {
	userID = normalizeUser(userID)

	if err := s.validate(body); err != nil {
		return park.UserPreferences{}, err
	}

	prefs := Defaults()
	if err := json.Unmarshal(body, &prefs); err != nil {
		return park.UserPreferences{}, park.NewError(park.KindInvalidInput, "", "Invalid JSON body", nil)
	}
	if err := s.store.Put(ctx, userID, prefs); err != nil {
		return park.UserPreferences{}, err
	}

	s.logger.Info("settings updated", zap.String("user", userID))
	return prefs, nil
}

func (s *Service) validate(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return park.NewError(park.KindInvalidInput, "", "Invalid JSON body", nil)
	}
	if result.Valid() {
		return nil
	}

	failed := make(map[string]bool)
	for _, re := range result.Errors() {
		field := re.Field()
		if re.Type() == "required" {
			if prop, ok := re.Details()["property"].(string); ok {
				field = prop
			}
		}
		// array items are reported as "preferredActivities.0"
		field, _, _ = strings.Cut(field, ".")
		failed[field] = true
	}

	for _, field := range checkOrder {
		if !failed[field] {
			continue
		}
		msg, ok := fieldMessages[field]
		if !ok {
			msg = "Invalid " + field
		}
		return park.NewError(park.KindInvalidInput, "", msg, nil)
	}
	// only the root failed, e.g. an array instead of an object
	return park.NewError(park.KindInvalidInput, "", "Invalid JSON body", nil)
}

func normalizeUser(userID string) string {
	if userID = strings.TrimSpace(userID); userID == "" {
		return DefaultUserID
	}
	return userID
}
