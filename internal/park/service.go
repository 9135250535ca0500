package park

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	sourceParks      = "parks"
	sourceWeather    = "weather"
	sourceFacilities = "facilities"
)

var tracer = otel.Tracer("github.com/i474232898/park-explorer/internal/park")

// Options tunes a Service. Zero values are usable.
type Options struct {
	Enricher *Enricher
	Geocoder Geocoder
	Logger   *zap.Logger

	// PartialResults keeps a search alive when some sources fail and reports
	// the failures instead of failing the whole request.
	PartialResults bool
}

// Service orchestrates the upstream sources for search and site lookups.
type Service struct {
	parks      ParksSource
	weather    WeatherSource
	facilities FacilitiesSource
	enricher   *Enricher
	geocoder   Geocoder
	logger     *zap.Logger
	partial    bool
}

// NewService creates a new Service.
func NewService(parks ParksSource, weather WeatherSource, facilities FacilitiesSource, opts Options) *Service {
	if opts.Enricher == nil {
		opts.Enricher = NewEnricher(NewVocabulary(ActivityVocabulary))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		parks:      parks,
		weather:    weather,
		facilities: facilities,
		enricher:   opts.Enricher,
		geocoder:   opts.Geocoder,
		logger:     opts.Logger.With(zap.String("component", "park.service")),
		partial:    opts.PartialResults,
	}
}

// sourceCall binds one upstream call to the slot receiving its payload.
type sourceCall struct {
	name string
	fn   func(context.Context, QueryContext) (json.RawMessage, error)
	dst  *json.RawMessage
}

// fanOut runs the calls concurrently and waits for all of them. A failing
// call never cancels its siblings. Errors come back in call order.
func fanOut(ctx context.Context, qc QueryContext, calls ...sourceCall) []error {
	errs := make([]error, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			raw, err := call.fn(ctx, qc)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", call.name, err)
				return
			}
			*call.dst = raw
		})
	}
	wg.Wait()
	return errs
}

// Search enriches the raw parameters, queries all three sources and
// normalizes what came back. When summary is requested the first site is
// rendered together with prefs.
func (s *Service) Search(ctx context.Context, raw RawParams, prefs *UserPreferences) (SearchResult, error) {
	ctx, span := tracer.Start(ctx, "park.Search")
	defer span.End()

	qc := s.enricher.Enrich(raw)
	qc = s.geocode(ctx, qc)
	span.SetAttributes(
		attribute.String("query", qc.Query),
		attribute.Bool("has_coordinates", qc.HasCoordinates()),
		attribute.Int("activity_ids", len(qc.ActivityIDs)),
	)

	var (
		bundle   RawBundle
		failures = map[string]string{}
	)

	if qc.HasCoordinates() {
		errs := fanOut(ctx, qc,
			sourceCall{name: sourceParks, fn: s.parks.GetParksData, dst: &bundle.Parks},
			sourceCall{name: sourceWeather, fn: s.weather.GetWeatherData, dst: &bundle.Weather},
			sourceCall{name: sourceFacilities, fn: s.facilities.GetFacilitiesData, dst: &bundle.Facilities},
		)
		if err := s.collect(span, failures, []string{sourceParks, sourceWeather, sourceFacilities}, errs); err != nil {
			return SearchResult{}, err
		}
	} else {
		// Without coordinates the parks answer decides where to look for weather.
		parksRaw, err := s.parks.GetParksData(ctx, qc)
		if err := s.collect(span, failures, []string{sourceParks}, []error{wrapSource(sourceParks, err)}); err != nil {
			return SearchResult{}, err
		}
		bundle.Parks = parksRaw

		if lat, lng, ok := firstCoordinates(parksRaw); ok {
			located := qc.WithCoordinates(lat, lng)
			errs := fanOut(ctx, located,
				sourceCall{name: sourceWeather, fn: s.weather.GetWeatherData, dst: &bundle.Weather},
				sourceCall{name: sourceFacilities, fn: s.facilities.GetFacilitiesData, dst: &bundle.Facilities},
			)
			if err := s.collect(span, failures, []string{sourceWeather, sourceFacilities}, errs); err != nil {
				return SearchResult{}, err
			}
		} else {
			s.logger.Debug("no coordinates available; skipping weather and facilities", zap.String("query", qc.Query))
		}
	}

	result := SearchResult{
		Context:          qc,
		Sites:            []Site{},
		Weather:          NormalizeWeather(bundle.Weather),
		NearbyFacilities: NormalizeFacilities(bundle.Facilities),
	}
	if len(failures) > 0 {
		result.Failures = failures
	}

	if bundle.Parks != nil {
		sites, skipped, err := NormalizeParks(bundle.Parks)
		if err != nil {
			if !s.partial {
				recordError(span, err)
				return SearchResult{}, err
			}
			result.Failures = mergeFailure(result.Failures, sourceParks, err)
		}
		if sites != nil {
			result.Sites = sites
		}
		if len(skipped) > 0 {
			s.logger.Warn("skipped malformed parks", zap.Strings("parks", skipped))
			result.Skipped = skipped
		}
	}

	if raw.Summary && len(result.Sites) > 0 {
		summary := Summarize(Normalized{
			Site:             result.Sites[0],
			Weather:          result.Weather,
			NearbyFacilities: result.NearbyFacilities,
		}, prefs)
		result.Summary = &summary
	}

	s.logger.Info("search completed",
		zap.String("query", qc.Query),
		zap.Int("sites", len(result.Sites)),
		zap.Int("facilities", len(result.NearbyFacilities)),
		zap.Bool("weather", result.Weather != nil),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// collect applies the aggregation policy to one round of source errors.
// All-or-nothing returns the first error in call order; partial mode records them.
func (s *Service) collect(span trace.Span, failures map[string]string, names []string, errs []error) error {
	for i, err := range errs {
		if err == nil {
			continue
		}
		s.logger.Warn("source failed",
			zap.String("source", names[i]),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		if !s.partial {
			recordError(span, err)
			return err
		}
		failures[names[i]] = err.Error()
	}
	return nil
}

// Site resolves a single park by its code, then fetches weather and nearby
// facilities at the park's coordinates.
func (s *Service) Site(ctx context.Context, id string) (Normalized, error) {
	ctx, span := tracer.Start(ctx, "park.Site")
	defer span.End()

	id = strings.TrimSpace(id)
	span.SetAttributes(attribute.String("park_code", id))
	if id == "" {
		err := NewError(KindInvalidInput, "site", "missing park id", nil)
		recordError(span, err)
		return Normalized{}, err
	}

	qc := QueryContext{ParkCode: id, Limit: 1}
	parksRaw, err := s.parks.GetParksData(ctx, qc)
	if err != nil {
		recordError(span, err)
		return Normalized{}, wrapSource(sourceParks, err)
	}

	siteRaw, err := FirstPark(parksRaw, id)
	if err != nil {
		recordError(span, err)
		return Normalized{}, err
	}
	site, err := NormalizeSite(siteRaw)
	if err != nil {
		recordError(span, err)
		return Normalized{}, err
	}

	var bundle RawBundle
	located := qc.WithCoordinates(site.Location.Lat, site.Location.Lng)
	errs := fanOut(ctx, located,
		sourceCall{name: sourceWeather, fn: s.weather.GetWeatherData, dst: &bundle.Weather},
		sourceCall{name: sourceFacilities, fn: s.facilities.GetFacilitiesData, dst: &bundle.Facilities},
	)
	for _, err := range errs {
		if err != nil {
			s.logger.Warn("site lookup failed", zap.String("park", id), zap.Error(err))
			recordError(span, err)
			return Normalized{}, err
		}
	}

	return Normalized{
		Site:             site,
		Weather:          NormalizeWeather(bundle.Weather),
		NearbyFacilities: NormalizeFacilities(bundle.Facilities),
	}, nil
}

// Summary looks a park up and renders it with the given preferences.
func (s *Service) Summary(ctx context.Context, id string, prefs *UserPreferences) (SummaryContext, error) {
	n, err := s.Site(ctx, id)
	if err != nil {
		return SummaryContext{}, err
	}
	return Summarize(n, prefs), nil
}

// geocode fills in coordinates from the free-text location when possible.
// Geocoding problems are logged and otherwise ignored.
func (s *Service) geocode(ctx context.Context, qc QueryContext) QueryContext {
	if qc.HasCoordinates() || qc.Location == "" || s.geocoder == nil {
		return qc
	}
	lat, lng, err := s.geocoder.Locate(ctx, qc.Location)
	if err != nil {
		s.logger.Warn("geocoding failed", zap.String("location", qc.Location), zap.Error(err))
		return qc
	}
	return qc.WithCoordinates(lat, lng)
}

// firstCoordinates returns the coordinates of the first park that has them.
func firstCoordinates(parksRaw json.RawMessage) (lat, lng float64, ok bool) {
	sites, _, err := NormalizeParks(parksRaw)
	if err != nil || len(sites) == 0 {
		return 0, 0, false
	}
	return sites[0].Location.Lat, sites[0].Location.Lng, true
}

func wrapSource(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func mergeFailure(failures map[string]string, name string, err error) map[string]string {
	if failures == nil {
		failures = map[string]string{}
	}
	failures[name] = err.Error()
	return failures
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	kind := KindOf(err)
	if kind == "" && errors.Is(err, context.Canceled) {
		kind = "canceled"
	}
	span.SetStatus(codes.Error, string(kind))
}
