package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/ferretcode/lovebug/internal/bootstrap"
	"github.com/ferretcode/lovebug/internal/cache"
	"github.com/ferretcode/lovebug/internal/dashboard"
	"github.com/ferretcode/lovebug/internal/location"
	"github.com/ferretcode/lovebug/internal/store"
	"github.com/ferretcode/lovebug/internal/types"
	"github.com/go-chi/chi/v5"
)

type ReportStore interface {
	List(ctx context.Context, q store.ReportQuery) ([]types.Report, error)
	Get(ctx context.Context, id string) (*types.Report, error)
	Search(ctx context.Context, q store.SearchQuery) ([]types.Report, error)
	Stats(ctx context.Context, hours int) (*types.Stats, error)
	Hotspots(ctx context.Context, limit int, radius float64, hours int) ([]types.HotSpot, error)
	Districts(ctx context.Context, hours int) ([]types.DistrictSummary, error)
}

type CrawlRunner interface {
	CrawlAndUpdate(ctx context.Context) (int, error)
}

type Seeder interface {
	Seed(ctx context.Context, count int, keep bool) (bootstrap.SeedResult, error)
}

type Handler struct {
	store     ReportStore
	dashboard *dashboard.Dashboard
	extractor *location.Extractor
	crawler   CrawlRunner
	seeder    Seeder
	cache     cache.Cache
	logger    *slog.Logger
}

func NewHandler(
	reports ReportStore,
	status *dashboard.Dashboard,
	extractor *location.Extractor,
	crawler CrawlRunner,
	seeder Seeder,
	responses cache.Cache,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:     reports,
		dashboard: status,
		extractor: extractor,
		crawler:   crawler,
		seeder:    seeder,
		cache:     responses,
		logger:    logger,
	}
}

// Handle adapts an error returning handler, reporting failures under svc.
func (h *Handler) Handle(svc string, fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handleError(fn(w, r), w, svc, h.logger)
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, h.dashboard.Banner())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, h.dashboard.Health(r.Context()))
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()
	q := store.ReportQuery{}

	var err error
	if q.Limit, err = intParam(values, "limit", 100, intRange{1, 1000}); err != nil {
		return err
	}
	if q.Offset, err = intParam(values, "offset", 0, intRange{0, 1 << 30}); err != nil {
		return err
	}
	if q.Severity, err = severityParam(values); err != nil {
		return err
	}
	if q.Platform, err = platformParam(values); err != nil {
		return err
	}
	if q.Hours, err = intParam(values, "hours", 0, hoursRange); err != nil {
		return err
	}

	reports, err := h.store.List(r.Context(), q)
	if err != nil {
		return fail("보고서 조회 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) error {
	report, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return fail("보고서 조회 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	hours, err := intParam(r.URL.Query(), "hours", 24, hoursRange)
	if err != nil {
		return err
	}

	stats, err := h.store.Stats(r.Context(), hours)
	if err != nil {
		return fail("통계 조회 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Hotspots(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()

	limit, err := intParam(values, "limit", 10, intRange{1, 50})
	if err != nil {
		return err
	}
	radius, err := floatParam(values, "radius", 1.0, floatRange{0.1, 10})
	if err != nil {
		return err
	}
	hours, err := intParam(values, "hours", 24, hoursRange)
	if err != nil {
		return err
	}

	hotspots, err := h.store.Hotspots(r.Context(), limit, radius, hours)
	if err != nil {
		return fail("핫스팟 조회 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, hotspots)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()
	q := store.SearchQuery{Keyword: values.Get("keyword")}

	var err error
	if q.Latitude, err = optionalFloat(values, "latitude", &floatRange{-90, 90}); err != nil {
		return err
	}
	if q.Longitude, err = optionalFloat(values, "longitude", &floatRange{-180, 180}); err != nil {
		return err
	}
	if q.Radius, err = optionalFloat(values, "radius", &floatRange{0.1, 50}); err != nil {
		return err
	}
	if q.Severity, err = severityParam(values); err != nil {
		return err
	}
	if q.Platform, err = platformParam(values); err != nil {
		return err
	}
	if q.Hours, err = intParam(values, "hours", 0, hoursRange); err != nil {
		return err
	}
	if q.Limit, err = intParam(values, "limit", 50, intRange{1, 200}); err != nil {
		return err
	}

	reports, err := h.store.Search(r.Context(), q)
	if err != nil {
		return fail("보고서 검색 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) Districts(w http.ResponseWriter, r *http.Request) error {
	hours, err := intParam(r.URL.Query(), "hours", 24, hoursRange)
	if err != nil {
		return err
	}

	districts, err := h.store.Districts(r.Context(), hours)
	if err != nil {
		return fail("지역별 현황 조회 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, districts)
}

type NearbyPlace struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	DistanceKm float64 `json:"distance_km"`
}

func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()

	latitude, err := optionalFloat(values, "latitude", &floatRange{-90, 90})
	if err != nil {
		return err
	}
	longitude, err := optionalFloat(values, "longitude", &floatRange{-180, 180})
	if err != nil {
		return err
	}
	if latitude == nil || longitude == nil {
		return &queryError{param: "latitude, longitude", reason: "are required"}
	}
	radius, err := floatParam(values, "radius", 1.0, floatRange{0.1, 50})
	if err != nil {
		return err
	}

	places := []NearbyPlace{}
	for _, name := range h.extractor.Nearby(*latitude, *longitude, radius) {
		place, ok := h.extractor.Coordinates(name)
		if !ok {
			continue
		}
		places = append(places, NearbyPlace{
			Name:       place.Name,
			Latitude:   place.Latitude,
			Longitude:  place.Longitude,
			Address:    place.Address,
			DistanceKm: location.Distance(*latitude, *longitude, place.Latitude, place.Longitude),
		})
	}

	sort.SliceStable(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })

	return writeJSON(w, http.StatusOK, places)
}

func (h *Handler) Crawl(w http.ResponseWriter, r *http.Request) error {
	count, err := h.crawler.CrawlAndUpdate(r.Context())
	if err != nil {
		return fail("크롤링 중 오류가 발생했습니다.", err)
	}

	return writeJSON(w, http.StatusOK, map[string]int{"reports": count})
}

type seedResponse struct {
	Deleted    int64                  `json:"deleted"`
	Inserted   int                    `json:"inserted"`
	ByDistrict map[string]int         `json:"by_district"`
	BySeverity map[types.Severity]int `json:"by_severity"`
}

func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()

	count, err := intParam(values, "count", bootstrap.DefaultCount, intRange{1, 1000})
	if err != nil {
		return err
	}
	keep := values.Get("keep") == "true"

	result, err := h.seeder.Seed(r.Context(), count, keep)
	if err != nil {
		return fail("테스트 데이터 생성 중 오류가 발생했습니다.", err)
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Warn("error invalidating cache", "err", err)
	}

	return writeJSON(w, http.StatusOK, seedResponse(result))
}
