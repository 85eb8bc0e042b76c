package trakt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-trakt-server/internal/config"
	apperrors "github.com/jrsteele09/go-trakt-server/internal/errors"
	"github.com/jrsteele09/go-trakt-server/token"
	"github.com/jrsteele09/go-trakt-server/trakt"
)

var testCreds = &config.Credentials{ClientID: "client-1", ClientSecret: "secret-1"}

func newTestClient(t *testing.T, handler http.Handler) *trakt.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := trakt.NewClient(srv.URL, testCreds, zerolog.Nop())
	client.SetSleepForTest(func(time.Duration) {})
	client.SetToken(&token.Token{AccessToken: "access-1"})
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestWatchlistShowsPaginatesAndShapes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sync/watchlist/shows", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "client-1", r.Header.Get("trakt-api-key"))
		require.Equal(t, "2", r.Header.Get("trakt-api-version"))
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(t, w, []map[string]any{
				{"show": map[string]any{"title": "The Wire", "year": 2002, "ids": map[string]any{"imdb": "tt0306414"}}},
				{"show": map[string]any{"title": "No IMDB", "year": 2020, "ids": map[string]any{"trakt": 99}}},
			})
		default:
			writeJSON(t, w, []map[string]any{})
		}
	})

	client := newTestClient(t, mux)
	watchlist, err := client.WatchlistShows(context.Background())
	require.NoError(t, err)
	require.Len(t, watchlist, 1, "entries without an imdb id are dropped")
	require.Equal(t, trakt.WatchlistShow{Link: "tt0306414", Title: "The Wire", Year: 2002}, watchlist["tt0306414"])
}

func TestWatchedShowsFlattensAndFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sync/watched/shows", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{
				"show": map[string]any{"title": "The Wire", "ids": map[string]any{"imdb": "tt0306414"}},
				"seasons": []map[string]any{
					{"number": 1, "episodes": []map[string]any{{"number": 1}, {"number": 2}}},
					{"number": 2, "episodes": []map[string]any{{"number": 1}}},
				},
			},
			{
				"show":    map[string]any{"title": "Other", "ids": map[string]any{"imdb": "tt0000001"}},
				"seasons": []map[string]any{{"number": 1, "episodes": []map[string]any{{"number": 1}}}},
			},
		})
	})

	client := newTestClient(t, mux)

	all, err := client.WatchedShows(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)

	filtered, err := client.WatchedShows(context.Background(), "tt0306414")
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	require.Equal(t, trakt.WatchedEpisode{Title: "The Wire", ImdbURL: "tt0306414", Season: 1, Episode: 1}, filtered[0])
}

func TestCalendarAppliesHorizon(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/my/shows", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{
				"first_aired": now.Add(24 * time.Hour).Format(time.RFC3339),
				"show":        map[string]any{"title": "Soon", "ids": map[string]any{"imdb": "tt1"}},
				"episode":     map[string]any{"season": 1, "number": 2, "ids": map[string]any{"imdb": "tt1e2"}},
			},
			{
				"first_aired": now.Add(120 * 24 * time.Hour).Format(time.RFC3339),
				"show":        map[string]any{"title": "Far", "ids": map[string]any{"imdb": "tt2"}},
				"episode":     map[string]any{"season": 1, "number": 1, "ids": map[string]any{}},
			},
		})
	})

	client := newTestClient(t, mux)
	entries, err := client.Calendar(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1, "episodes airing past the 90 day horizon are dropped")
	require.Equal(t, trakt.CalendarEntry{
		Show: "Soon", Link: "tt1", Season: 1, Episode: 2, EpLink: "tt1e2", Airdate: "2024-01-02",
	}, entries[0])
}

func TestQueryReplacesUnderscoresAndKeysByImdb(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/search/show", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		writeJSON(t, w, []map[string]any{
			{"type": "show", "show": map[string]any{"title": "The Wire", "year": 2002, "ids": map[string]any{"imdb": "tt0306414"}}},
		})
	})

	client := newTestClient(t, mux)
	records, err := client.Query(context.Background(), "the_wire", "show")
	require.NoError(t, err)
	require.Equal(t, "the wire", gotQuery)
	require.Contains(t, records, "tt0306414")
	require.Equal(t, "The Wire", records["tt0306414"]["title"])
}

func TestLookupFallsBackToMovie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/imdb/tt0137523", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "show":
			writeJSON(t, w, []map[string]any{})
		case "movie":
			writeJSON(t, w, []map[string]any{
				{"movie": map[string]any{"title": "Stub"}},
				{"movie": map[string]any{"title": "Fight Club", "year": 1999, "ids": map[string]any{"imdb": "tt0137523"}}},
			})
		}
	})

	client := newTestClient(t, mux)
	record, err := client.Lookup(context.Background(), "tt0137523")
	require.NoError(t, err)
	require.Equal(t, "Fight Club", record["title"], "listings without a year are skipped")
}

func TestLookupNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/imdb/tt0000000", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})

	client := newTestClient(t, mux)
	_, err := client.Lookup(context.Background(), "tt0000000")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddEpisodeToHistoryPostsEpisodeIDs(t *testing.T) {
	var posted struct {
		Episodes []struct {
			WatchedAt time.Time `json:"watched_at"`
			IDs       trakt.IDs `json:"ids"`
		} `json:"episodes"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/shows/tt0306414/seasons/1/episodes/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"season": 1, "number": 2, "ids": map[string]any{"trakt": 42, "imdb": "tt12"}})
	})
	mux.HandleFunc("/sync/history", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		writeJSON(t, w, map[string]any{"added": map[string]int{"episodes": 1}})
	})

	client := newTestClient(t, mux)
	require.NoError(t, client.AddEpisodeToHistory(context.Background(), "tt0306414", 1, 2))
	require.Len(t, posted.Episodes, 1)
	require.Equal(t, trakt.IDs{Trakt: 42, IMDB: "tt12"}, posted.Episodes[0].IDs)
}

func TestAddShowToWatchlistLooksUpFirst(t *testing.T) {
	var posted map[string][]trakt.Show
	mux := http.NewServeMux()
	mux.HandleFunc("/search/imdb/tt0306414", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"show": map[string]any{"title": "The Wire", "year": 2002, "ids": map[string]any{"imdb": "tt0306414"}}},
		})
	})
	mux.HandleFunc("/sync/watchlist", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		writeJSON(t, w, map[string]any{"added": map[string]int{"shows": 1}})
	})

	client := newTestClient(t, mux)
	require.NoError(t, client.AddShowToWatchlist(context.Background(), "tt0306414"))
	require.Len(t, posted["shows"], 1)
	require.Equal(t, "The Wire", posted["shows"][0].Title)
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/sync/watched/movies", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, []map[string]any{})
	})

	client := newTestClient(t, mux)
	_, err := client.WatchedMovies(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/sync/watched/movies", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)
	_, err := client.WatchedMovies(context.Background(), "")

	var httpErr *trakt.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestUnauthenticatedCallFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	client := trakt.NewClient(srv.URL, testCreds, zerolog.Nop())
	_, err := client.WatchedMovies(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)
}
