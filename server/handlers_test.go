package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-trakt-server/internal/config"
	apperrors "github.com/jrsteele09/go-trakt-server/internal/errors"
	"github.com/jrsteele09/go-trakt-server/server"
	"github.com/jrsteele09/go-trakt-server/trakt"
)

// fakeTracker records the arguments of the last call and returns canned
// values, standing in for the trakt client behind the facade.
type fakeTracker struct {
	lastImdbID  string
	lastSeason  int
	lastEpisode int
	lastQuery   string

	watchlist map[string]trakt.WatchlistShow
	episodes  []trakt.WatchedEpisode
	movies    []trakt.WatchedMovie
	calendar  []trakt.CalendarEntry
	err       error
}

func (f *fakeTracker) WatchlistShows(context.Context) (map[string]trakt.WatchlistShow, error) {
	return f.watchlist, f.err
}

func (f *fakeTracker) WatchedShows(_ context.Context, imdbFilter string) ([]trakt.WatchedEpisode, error) {
	f.lastImdbID = imdbFilter
	return f.episodes, f.err
}

func (f *fakeTracker) WatchedMovies(_ context.Context, imdbFilter string) ([]trakt.WatchedMovie, error) {
	f.lastImdbID = imdbFilter
	return f.movies, f.err
}

func (f *fakeTracker) Calendar(context.Context) ([]trakt.CalendarEntry, error) {
	return f.calendar, f.err
}

func (f *fakeTracker) Query(_ context.Context, query, media string) (map[string]map[string]any, error) {
	f.lastQuery = query
	return map[string]map[string]any{"tt1": {"title": "The Wire", "media": media}}, f.err
}

func (f *fakeTracker) Lookup(_ context.Context, imdbID string) (map[string]any, error) {
	f.lastImdbID = imdbID
	return map[string]any{"title": "The Wire"}, f.err
}

func (f *fakeTracker) AddShowToWatchlist(_ context.Context, imdbID string) error {
	f.lastImdbID = imdbID
	return f.err
}

func (f *fakeTracker) RemoveShowFromWatchlist(_ context.Context, imdbID string) error {
	f.lastImdbID = imdbID
	return f.err
}

func (f *fakeTracker) AddEpisodeToHistory(_ context.Context, imdbID string, season, episode int) error {
	f.lastImdbID, f.lastSeason, f.lastEpisode = imdbID, season, episode
	return f.err
}

func (f *fakeTracker) RemoveEpisodeFromHistory(_ context.Context, imdbID string, season, episode int) error {
	f.lastImdbID, f.lastSeason, f.lastEpisode = imdbID, season, episode
	return f.err
}

func (f *fakeTracker) AddMovieToHistory(_ context.Context, imdbID string) error {
	f.lastImdbID = imdbID
	return f.err
}

func (f *fakeTracker) RemoveMovieFromHistory(_ context.Context, imdbID string) error {
	f.lastImdbID = imdbID
	return f.err
}

func newTestServer(t *testing.T, tracker *fakeTracker) *server.Server {
	t.Helper()
	return server.New(config.New(), tracker, zerolog.Nop())
}

func get(t *testing.T, s *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Status
}

func TestWatchlistRoute(t *testing.T) {
	tracker := &fakeTracker{watchlist: map[string]trakt.WatchlistShow{
		"tt0306414": {Link: "tt0306414", Title: "The Wire", Year: 2002},
	}}
	rec := get(t, newTestServer(t, tracker), "/trakt/watchlist")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]trakt.WatchlistShow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, tracker.watchlist, body)
}

func TestWatchedShowRouteFilters(t *testing.T) {
	tracker := &fakeTracker{episodes: []trakt.WatchedEpisode{
		{Title: "The Wire", ImdbURL: "tt0306414", Season: 1, Episode: 1},
	}}
	srv := newTestServer(t, tracker)

	rec := get(t, srv, "/trakt/watched_show/tt0306414")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tt0306414", tracker.lastImdbID)

	rec = get(t, srv, "/trakt/watched_shows")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, tracker.lastImdbID, "the list route passes no filter")
}

func TestQueryRoutePassesPathValue(t *testing.T) {
	tracker := &fakeTracker{}
	rec := get(t, newTestServer(t, tracker), "/trakt/query/the_wire")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "the_wire", tracker.lastQuery)
}

func TestReadRouteFailure(t *testing.T) {
	tracker := &fakeTracker{err: fmt.Errorf("upstream unavailable")}
	rec := get(t, newTestServer(t, tracker), "/trakt/cal")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body["error"], "upstream unavailable")
}

func TestMutatingRouteEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{name: "success", wantCode: http.StatusOK, wantStatus: "success"},
		{name: "unknown id", err: apperrors.ErrNotFound, wantCode: http.StatusOK, wantStatus: "failure"},
		{name: "upstream error", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := &fakeTracker{err: tc.err}
			rec := get(t, newTestServer(t, tracker), "/trakt/add_to_watchlist/tt0306414")

			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, "tt0306414", tracker.lastImdbID)
			if tc.wantStatus != "" {
				require.Equal(t, tc.wantStatus, decodeStatus(t, rec))
			}
		})
	}
}

func TestEpisodeRoutesParseParams(t *testing.T) {
	tracker := &fakeTracker{}
	srv := newTestServer(t, tracker)

	rec := get(t, srv, "/trakt/add_episode_to_watched/tt0306414/2/5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "success", decodeStatus(t, rec))
	require.Equal(t, "tt0306414", tracker.lastImdbID)
	require.Equal(t, 2, tracker.lastSeason)
	require.Equal(t, 5, tracker.lastEpisode)

	rec = get(t, srv, "/trakt/delete_watched/tt0306414/3/7")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, tracker.lastSeason)
	require.Equal(t, 7, tracker.lastEpisode)
}

func TestEpisodeRouteRejectsBadParams(t *testing.T) {
	tracker := &fakeTracker{}
	rec := get(t, newTestServer(t, tracker), "/trakt/add_episode_to_watched/tt0306414/two/5")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "failure", decodeStatus(t, rec))
	require.Zero(t, tracker.lastSeason, "the tracker must not be called")
}

func TestRecoverMiddleware(t *testing.T) {
	srv := newTestServer(t, &fakeTracker{})
	srv.RegisterRouteFunc("GET /boom", server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}, srv.APIMiddleware()...))

	rec := get(t, srv, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
