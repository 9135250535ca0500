package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/park-explorer/internal/park"
	"github.com/i474232898/park-explorer/internal/scheduler"
)

const userHeader = "X-User-ID"

var validate = validator.New()

// ParkService is the aggregation core behind the park routes.
type ParkService interface {
	Search(ctx context.Context, raw park.RawParams, prefs *park.UserPreferences) (park.SearchResult, error)
	Site(ctx context.Context, id string) (park.Normalized, error)
	Summary(ctx context.Context, id string, prefs *park.UserPreferences) (park.SummaryContext, error)
}

// SettingsService reads and writes per-user preferences.
type SettingsService interface {
	Get(ctx context.Context, userID string) (park.UserPreferences, error)
	Stored(ctx context.Context, userID string) (*park.UserPreferences, error)
	Update(ctx context.Context, userID string, body []byte) (park.UserPreferences, error)
}

// HealthReporter exposes the canary outcome; optional.
type HealthReporter interface {
	Enabled() bool
	Status() scheduler.Status
}

type Deps struct {
	Parks    ParkService
	Settings SettingsService
	Canary   HealthReporter
	Service  string // name reported by /health
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "ok",
			"service": deps.Service,
		}
		if deps.Canary != nil && deps.Canary.Enabled() {
			st := deps.Canary.Status()
			if st.Runs > 0 && !st.Healthy {
				body["status"] = "degraded"
			}
			body["canary"] = st
		}
		return c.JSON(body)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/search", func(c *fiber.Ctx) error {
		var q searchQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
		}

		var prefs *park.UserPreferences
		if q.Summary {
			stored, err := deps.Settings.Stored(c.UserContext(), c.Get(userHeader))
			if err != nil {
				return err
			}
			prefs = stored
		}

		result, err := deps.Parks.Search(c.UserContext(), q.toRawParams(), prefs)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	v1.Get("/parks/:id", func(c *fiber.Ctx) error {
		id, err := parkID(c)
		if err != nil {
			return err
		}
		normalized, err := deps.Parks.Site(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(normalized)
	})

	v1.Get("/parks/:id/summary", func(c *fiber.Ctx) error {
		id, err := parkID(c)
		if err != nil {
			return err
		}
		prefs, err := deps.Settings.Stored(c.UserContext(), c.Get(userHeader))
		if err != nil {
			return err
		}
		summary, err := deps.Parks.Summary(c.UserContext(), id, prefs)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	})

	v1.Get("/user/settings", func(c *fiber.Ctx) error {
		prefs, err := deps.Settings.Get(c.UserContext(), c.Get(userHeader))
		if err != nil {
			return err
		}
		return c.JSON(prefs)
	})

	v1.Post("/user/settings", func(c *fiber.Ctx) error {
		prefs, err := deps.Settings.Update(c.UserContext(), c.Get(userHeader), c.Body())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":  "Settings updated",
			"settings": prefs,
		})
	})
}

func parkID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if err := validate.Var(id, "required,alphanum,max=10"); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid park id")
	}
	return strings.ToLower(id), nil
}

// searchQuery holds the query parameters of the search endpoint.
type searchQuery struct {
	Query       string   `validate:"max=200"`
	Lat         *float64 `validate:"omitempty,latitude"`
	Lng         *float64 `validate:"omitempty,longitude"`
	StateCode   string   `validate:"max=100"`
	ParkCode    string   `validate:"max=100"`
	Designation string   `validate:"max=100"`
	Location    string   `validate:"max=200"`
	Activities  []string `validate:"max=20,dive,max=50"`
	ActivityIDs []string `validate:"max=20,dive,max=64"`
	Limit       int      `validate:"min=0,max=500"`
	Season      string   `validate:"omitempty,oneof=spring summer fall winter"`
	Summary     bool
}

func (q *searchQuery) bind(c *fiber.Ctx) error {
	q.Query = strings.TrimSpace(c.Query("query"))
	q.StateCode = c.Query("stateCode")
	q.ParkCode = c.Query("parkCode")
	q.Designation = c.Query("designation")
	q.Location = c.Query("location")
	q.Activities = splitList(c.Query("activity"))
	q.ActivityIDs = splitList(c.Query("activityIds"))
	q.Season = strings.ToLower(strings.TrimSpace(c.Query("season")))

	var err error
	if q.Lat, err = optionalFloat(c, "lat"); err != nil {
		return err
	}
	if q.Lng, err = optionalFloat(c, "lng"); err != nil {
		return err
	}
	if (q.Lat == nil) != (q.Lng == nil) {
		return errors.New("lat and lng must be provided together")
	}

	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = n
	}
	if s := c.Query("summary"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid summary %q", s)
		}
		q.Summary = b
	}
	return nil
}

func (q searchQuery) toRawParams() park.RawParams {
	return park.RawParams{
		Query:       q.Query,
		Lat:         q.Lat,
		Lng:         q.Lng,
		StateCode:   q.StateCode,
		ParkCode:    q.ParkCode,
		Designation: q.Designation,
		Location:    q.Location,
		Activities:  q.Activities,
		ActivityIDs: q.ActivityIDs,
		Limit:       q.Limit,
		Season:      q.Season,
		Summary:     q.Summary,
	}
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, s)
	}
	return &v, nil
}

// splitList parses a comma separated query value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Invalid " + lowerFirst(verrs[0].Field())
	}
	return err.Error()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
