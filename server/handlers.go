package server

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type statusResponse struct {
	Status string `json:"status"`
}

var (
	statusSuccess = statusResponse{Status: "success"}
	statusFailure = statusResponse{Status: "failure"}
)

func (s *Server) respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// respondStatus reports the coarse success/failure envelope of the mutating
// routes. A lookup miss is a plain "failure", not an HTTP error, matching
// the original contract.
func (s *Server) respondStatus(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, statusSuccess)
	case errors.Is(err, errors.ErrNotFound):
		s.respondJSON(w, http.StatusOK, statusFailure)
	default:
		s.respondError(w, err)
	}
}

func episodeParams(r *http.Request) (imdbID string, season, episode int, err error) {
	imdbID = r.PathValue("imdb_id")
	season, err = strconv.Atoi(r.PathValue("season"))
	if err != nil {
		return "", 0, 0, err
	}
	episode, err = strconv.Atoi(r.PathValue("episode"))
	if err != nil {
		return "", 0, 0, err
	}
	return imdbID, season, episode, nil
}

// WatchlistHandler returns the show watchlist keyed by imdb id.
func (s *Server) WatchlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watchlist, err := s.tracker.WatchlistShows(r.Context())
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, watchlist)
	}
}

// WatchedShowsHandler serves both the full watched-shows history and the
// single-show variant (a present {imdb_id} path value filters).
func (s *Server) WatchedShowsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		episodes, err := s.tracker.WatchedShows(r.Context(), r.PathValue("imdb_id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, episodes)
	}
}

// WatchedMoviesHandler serves both the full watched-movies history and the
// single-movie variant.
func (s *Server) WatchedMoviesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movies, err := s.tracker.WatchedMovies(r.Context(), r.PathValue("imdb_id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, movies)
	}
}

// CalendarHandler returns upcoming episodes within the 90 day horizon.
func (s *Server) CalendarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.tracker.Calendar(r.Context())
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, entries)
	}
}

// QueryHandler searches shows by title; underscores stand in for spaces.
func (s *Server) QueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.tracker.Query(r.Context(), r.PathValue("query"), "show")
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, records)
	}
}

// LookupHandler resolves an imdb id to its media record.
func (s *Server) LookupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.tracker.Lookup(r.Context(), r.PathValue("imdb_id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, record)
	}
}

func (s *Server) AddToWatchlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondStatus(w, s.tracker.AddShowToWatchlist(r.Context(), r.PathValue("imdb_id")))
	}
}

func (s *Server) DeleteShowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondStatus(w, s.tracker.RemoveShowFromWatchlist(r.Context(), r.PathValue("imdb_id")))
	}
}

func (s *Server) AddMovieToWatchedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondStatus(w, s.tracker.AddMovieToHistory(r.Context(), r.PathValue("imdb_id")))
	}
}

func (s *Server) DeleteWatchedMovieHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondStatus(w, s.tracker.RemoveMovieFromHistory(r.Context(), r.PathValue("imdb_id")))
	}
}

func (s *Server) AddEpisodeToWatchedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imdbID, season, episode, err := episodeParams(r)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, statusFailure)
			return
		}
		s.respondStatus(w, s.tracker.AddEpisodeToHistory(r.Context(), imdbID, season, episode))
	}
}

func (s *Server) DeleteWatchedEpisodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imdbID, season, episode, err := episodeParams(r)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, statusFailure)
			return
		}
		s.respondStatus(w, s.tracker.RemoveEpisodeFromHistory(r.Context(), imdbID, season, episode))
	}
}
