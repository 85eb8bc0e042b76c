package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-trakt-server/internal/config"
	"github.com/jrsteele09/go-trakt-server/trakt"
)

// MediaTracker is the slice of the trakt client the facade routes call.
// Every operation assumes a valid authorization is already in hand; token
// refresh happens inside the client.
type MediaTracker interface {
	WatchlistShows(ctx context.Context) (map[string]trakt.WatchlistShow, error)
	WatchedShows(ctx context.Context, imdbFilter string) ([]trakt.WatchedEpisode, error)
	WatchedMovies(ctx context.Context, imdbFilter string) ([]trakt.WatchedMovie, error)
	Calendar(ctx context.Context) ([]trakt.CalendarEntry, error)
	Query(ctx context.Context, query, media string) (map[string]map[string]any, error)
	Lookup(ctx context.Context, imdbID string) (map[string]any, error)
	AddShowToWatchlist(ctx context.Context, imdbID string) error
	RemoveShowFromWatchlist(ctx context.Context, imdbID string) error
	AddEpisodeToHistory(ctx context.Context, imdbID string, season, episode int) error
	RemoveEpisodeFromHistory(ctx context.Context, imdbID string, season, episode int) error
	AddMovieToHistory(ctx context.Context, imdbID string) error
	RemoveMovieFromHistory(ctx context.Context, imdbID string) error
}

var _ MediaTracker = (*trakt.Client)(nil)

// Server dispatches the facade's GET routes. It is built once at process
// start with the shared tracker; handlers are methods of this context, not
// holders of module-level state.
type Server struct {
	env     string // Environment (e.g., "DEV", "production")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	tracker MediaTracker
	log     zerolog.Logger
}

func New(cfg config.Config, tracker MediaTracker, log zerolog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  cfg,
		tracker: tracker,
		log:     log,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.log.Debug().Str("route", route).Msg("registered")
	}
}
