package stations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/cache"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/radiobrowser"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Countries(ctx context.Context) ([]models.Country, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).([]models.Country); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) SearchStations(ctx context.Context, p radiobrowser.SearchParams) ([]models.Station, error) {
	args := m.Called(ctx, p)
	if s, ok := args.Get(0).([]models.Station); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) StationsByTag(ctx context.Context, tag string, limit int) ([]models.Station, error) {
	args := m.Called(ctx, tag, limit)
	if s, ok := args.Get(0).([]models.Station); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func newRedisCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestFilterCountries(t *testing.T) {
	in := []models.Country{
		{Name: "Germany", StationCount: 4000},
		{Name: "Åland Islands", StationCount: 11},
		{Name: "Vatican", StationCount: 10},
		{Name: "austria", StationCount: 500},
		{Name: "Zimbabwe", StationCount: 12},
		{Name: "Andorra", StationCount: 3},
	}

	got := FilterCountries(in)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Åland Islands", "austria", "Germany", "Zimbabwe"}, names)
}

func TestCountries_CachedAfterFirstCall(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("Countries", mock.Anything).Return([]models.Country{
		{Name: "France", ISO3166: "FR", StationCount: 900},
		{Name: "Tuvalu", ISO3166: "TV", StationCount: 1},
	}, nil).Once()
	c, mr := newRedisCache(t)
	svc := New(dir, c, newNoopLogger())

	first, err := svc.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "FR", first[0].ISO3166)
	assert.True(t, mr.Exists("stations:countries"))

	second, err := svc.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	dir.AssertExpectations(t)
}

func TestCountries_UpstreamError(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("Countries", mock.Anything).Return(nil, errors.New("502 bad gateway"))
	svc := New(dir, cache.Nop{}, newNoopLogger())

	_, err := svc.Countries(context.Background())
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	want := []models.Station{{StationUUID: "s1", Name: "Jazz FM", URLResolved: "http://jazz/stream"}}
	dir := new(MockDirectory)
	dir.On("SearchStations", mock.Anything, radiobrowser.SearchParams{
		Tag:         "jazz",
		CountryCode: "FR",
		Limit:       20,
		HideBroken:  true,
		Order:       "votes",
		Reverse:     true,
	}).Return(want, nil).Once()
	c, mr := newRedisCache(t)
	svc := New(dir, c, newNoopLogger())

	got := svc.Search(context.Background(), models.StationQuery{Tag: " jazz ", CountryCode: "fr"})
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists("stations:search:jazz:FR:"))

	got = svc.Search(context.Background(), models.StationQuery{Tag: "jazz", CountryCode: "FR"})
	assert.Equal(t, want, got)
	dir.AssertExpectations(t)
}

func TestSearch_UpstreamErrorYieldsEmptyList(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("SearchStations", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	svc := New(dir, cache.Nop{}, newNoopLogger())

	got := svc.Search(context.Background(), models.StationQuery{Tag: "rock"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_CacheFailureFallsThrough(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("SearchStations", mock.Anything, mock.Anything).Return([]models.Station{{StationUUID: "s1"}}, nil).Twice()
	c, mr := newRedisCache(t)
	svc := New(dir, c, newNoopLogger())
	mr.Close()

	assert.Len(t, svc.Search(context.Background(), models.StationQuery{Tag: "rock"}), 1)
	assert.Len(t, svc.Search(context.Background(), models.StationQuery{Tag: "rock"}), 1)
	dir.AssertExpectations(t)
}

func TestVibeFor(t *testing.T) {
	tests := []struct {
		cuisine string
		hour    int
		wantTag string
		title   string
	}{
		{"Cafe", 7, "jazz", "Morning Brew"},
		{"Bakery", 12, "acoustic", "Acoustic Perk"},
		{"cafe", 21, "chillout", "Evening Unwind"},
		{"Cafe", 23, "lofi", "Late Night Roast"},
		{"Fine Dining", 5, "classical", "Morning Elegance"},
		{"Bistro", 15, "piano", "Bistro Keys"},
		{"Fine Dining", 16, "lounge", "The Supper Club"},
		{"Fine Dining", 4, "ambient", "Midnight Muse"},
		{"Casual", 10, "pop", "Opening Energy"},
		{"Fast Food", 11, "rock", "Midday Pulse"},
		{"Bar", 18, "house", "The Golden Hour"},
		{"Bar", 0, "techno", "After Hours"},
		{"", 9, "lofi", "Daily Focus"},
		{"Steakhouse", 20, "lofi", "Daily Focus"},
	}

	for _, tt := range tests {
		t.Run(tt.cuisine+"/"+tt.title, func(t *testing.T) {
			v := VibeFor(tt.cuisine, tt.hour)
			assert.Equal(t, tt.wantTag, v.Tag)
			assert.Equal(t, tt.title, v.Title)
			assert.NotEmpty(t, v.Description)
			assert.NotEmpty(t, v.Label)
		})
	}
}

func TestDaily(t *testing.T) {
	candidates := []models.Station{{StationUUID: "a"}, {StationUUID: "b"}, {StationUUID: "c"}}
	dir := new(MockDirectory)
	dir.On("StationsByTag", mock.Anything, "house", 15).Return(candidates, nil).Once()
	c, _ := newRedisCache(t)
	svc := New(dir, c, newNoopLogger())
	svc.pick = func(n int) int { return n - 1 }

	pick, err := svc.Daily(context.Background(), "Bar", 19)
	require.NoError(t, err)
	assert.Equal(t, "The Golden Hour", pick.Vibe.Title)
	require.NotNil(t, pick.Station)
	assert.Equal(t, "c", pick.Station.StationUUID)

	svc.pick = func(int) int { return 0 }
	pick, err = svc.Daily(context.Background(), "Bar", 19)
	require.NoError(t, err)
	assert.Equal(t, "a", pick.Station.StationUUID)
	dir.AssertExpectations(t)
}

func TestDaily_NoStations(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("StationsByTag", mock.Anything, "lofi", 15).Return([]models.Station{}, nil)
	svc := New(dir, cache.Nop{}, newNoopLogger())

	pick, err := svc.Daily(context.Background(), "", 9)
	require.NoError(t, err)
	assert.Nil(t, pick.Station)
	assert.Equal(t, "Daily Focus", pick.Vibe.Title)
}

func TestDaily_UpstreamError(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("StationsByTag", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	svc := New(dir, cache.Nop{}, newNoopLogger())

	_, err := svc.Daily(context.Background(), "Cafe", 8)
	assert.Error(t, err)
}

