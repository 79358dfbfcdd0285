// Package stations проксирует каталог радиостанций: список стран, поиск
// станций и подборку дня для типа заведения. Ответы каталога кэшируются.
package stations

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/magabrotheeeer/restaurant-radio/internal/lib/metrics"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/radiobrowser"
)

const (
	countriesTTL = 6 * time.Hour
	searchTTL    = 10 * time.Minute

	// Страны с меньшим числом станций не показываются.
	minStationCount = 10
	searchLimit     = 20
	dailyPickLimit  = 15
)

// Directory каталог станций.
type Directory interface {
	Countries(ctx context.Context) ([]models.Country, error)
	SearchStations(ctx context.Context, p radiobrowser.SearchParams) ([]models.Station, error)
	StationsByTag(ctx context.Context, tag string, limit int) ([]models.Station, error)
}

// Cache кэш ответов каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// DailyPick подборка дня: настроение и случайная станция с его тегом.
type DailyPick struct {
	Vibe    Vibe            `json:"vibe"`
	Station *models.Station `json:"station"`
}

// Service сервис каталога.
type Service struct {
	dir   Directory
	cache Cache
	log   *slog.Logger
	pick  func(n int) int
}

// New создаёт сервис.
func New(dir Directory, cache Cache, log *slog.Logger) *Service {
	return &Service{
		dir:   dir,
		cache: cache,
		log:   log,
		pick:  rand.IntN,
	}
}

func (s *Service) cached(key string, out any) bool {
	found, err := s.cache.Get(key, out)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) store(key string, value any, ttl time.Duration) {
	if err := s.cache.Set(key, value, ttl); err != nil {
		s.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
}

// Countries возвращает страны, где больше десяти станций, по алфавиту.
func (s *Service) Countries(ctx context.Context) ([]models.Country, error) {
	const op = "stations.Countries"
	const key = "stations:countries"

	var countries []models.Country
	if s.cached(key, &countries) {
		return countries, nil
	}

	all, err := s.dir.Countries(ctx)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("countries", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("countries", metrics.ResultOK).Inc()

	countries = FilterCountries(all)
	s.store(key, countries, countriesTTL)
	return countries, nil
}

// FilterCountries оставляет страны, где больше десяти станций, и сортирует их по названию.
func FilterCountries(all []models.Country) []models.Country {
	out := make([]models.Country, 0, len(all))
	for _, c := range all {
		if c.StationCount > minStationCount {
			out = append(out, c)
		}
	}
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b models.Country) int {
		return col.CompareString(a.Name, b.Name)
	})
	return out
}

// Search ищет станции по тегу и, если указана, по стране. Сбой каталога
// не считается ошибкой: возвращается пустой список.
func (s *Service) Search(ctx context.Context, q models.StationQuery) []models.Station {
	const op = "stations.Search"
	log := s.log.With(slog.String("op", op))

	params := radiobrowser.SearchParams{
		Tag:         strings.TrimSpace(q.Tag),
		CountryCode: strings.ToUpper(strings.TrimSpace(q.CountryCode)),
		Name:        strings.TrimSpace(q.Name),
		Limit:       searchLimit,
		HideBroken:  true,
		Order:       "votes",
		Reverse:     true,
	}
	key := fmt.Sprintf("stations:search:%s:%s:%s",
		strings.ToLower(params.Tag), params.CountryCode, strings.ToLower(params.Name))

	var result []models.Station
	if s.cached(key, &result) {
		return result
	}

	result, err := s.dir.SearchStations(ctx, params)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("search", metrics.ResultError).Inc()
		log.Error("station search failed", slog.String("tag", params.Tag), sl.Err(err))
		return []models.Station{}
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("search", metrics.ResultOK).Inc()
	if result == nil {
		result = []models.Station{}
	}
	s.store(key, result, searchTTL)
	return result
}

// Daily подбирает настроение по типу заведения и часу и случайную станцию
// из популярных с этим тегом. Station равна nil, если станций нет.
func (s *Service) Daily(ctx context.Context, cuisine string, hour int) (DailyPick, error) {
	const op = "stations.Daily"

	vibe := VibeFor(cuisine, hour)
	key := "stations:bytag:" + vibe.Tag

	var candidates []models.Station
	if !s.cached(key, &candidates) {
		var err error
		candidates, err = s.dir.StationsByTag(ctx, vibe.Tag, dailyPickLimit)
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues("bytag", metrics.ResultError).Inc()
			return DailyPick{}, fmt.Errorf("%s: %w", op, err)
		}
		metrics.UpstreamRequestsTotal.WithLabelValues("bytag", metrics.ResultOK).Inc()
		s.store(key, candidates, searchTTL)
	}

	pick := DailyPick{Vibe: vibe}
	if len(candidates) > 0 {
		st := candidates[s.pick(len(candidates))]
		pick.Station = &st
	}
	return pick, nil
}
