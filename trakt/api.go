package trakt

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
	"github.com/jrsteele09/go-trakt-server/token"
)

const (
	pageLimit          = 20
	calendarHorizonDay = 90
)

// WatchlistShows returns the account's show watchlist keyed by imdb id.
func (c *Client) WatchlistShows(ctx context.Context) (map[string]WatchlistShow, error) {
	watchlist := make(map[string]WatchlistShow)
	for page := 1; ; page++ {
		var results []showResult
		path := fmt.Sprintf("/sync/watchlist/shows?page=%d&limit=%d", page, pageLimit)
		if err := c.getJSON(ctx, path, true, &results); err != nil {
			return nil, fmt.Errorf("failed to fetch watchlist page %d: %w", page, err)
		}
		if len(results) == 0 {
			break
		}
		for _, r := range results {
			imdb, ok := r.Show.ExternalID("imdb")
			if !ok {
				continue
			}
			year := r.Show.Year
			if year == 0 {
				year = token.NowTimeFunc().Year()
			}
			watchlist[imdb] = WatchlistShow{Link: imdb, Title: r.Show.Title, Year: year}
		}
	}
	return watchlist, nil
}

// WatchedShows flattens the watched-shows history into one entry per
// episode. A non-empty imdbFilter keeps only the matching show.
func (c *Client) WatchedShows(ctx context.Context, imdbFilter string) ([]WatchedEpisode, error) {
	var results []watchedShowResult
	if err := c.getJSON(ctx, "/sync/watched/shows", true, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch watched shows: %w", err)
	}

	episodes := []WatchedEpisode{}
	for _, r := range results {
		imdb, ok := r.Show.ExternalID("imdb")
		if !ok {
			continue
		}
		if imdbFilter != "" && imdb != imdbFilter {
			continue
		}
		for _, season := range r.Seasons {
			for _, episode := range season.Episodes {
				episodes = append(episodes, WatchedEpisode{
					Title:   r.Show.Title,
					ImdbURL: imdb,
					Season:  season.Number,
					Episode: episode.Number,
				})
			}
		}
	}
	return episodes, nil
}

// WatchedMovies returns the watched-movies history. A non-empty imdbFilter
// keeps only the matching movie.
func (c *Client) WatchedMovies(ctx context.Context, imdbFilter string) ([]WatchedMovie, error) {
	var results []movieResult
	if err := c.getJSON(ctx, "/sync/watched/movies", true, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch watched movies: %w", err)
	}

	movies := []WatchedMovie{}
	for _, r := range results {
		imdb, ok := r.Movie.ExternalID("imdb")
		if !ok {
			continue
		}
		if imdbFilter != "" && imdb != imdbFilter {
			continue
		}
		movies = append(movies, WatchedMovie{Title: r.Movie.Title, ImdbURL: imdb})
	}
	return movies, nil
}

// Calendar returns upcoming episodes from the personal calendar, limited to
// a 90 day horizon.
func (c *Client) Calendar(ctx context.Context) ([]CalendarEntry, error) {
	var results []calendarResult
	if err := c.getJSON(ctx, "/calendars/my/shows", true, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}

	maxDate := token.NowTimeFunc().AddDate(0, 0, calendarHorizonDay)
	entries := []CalendarEntry{}
	for _, r := range results {
		if r.FirstAired.After(maxDate) {
			continue
		}
		imdb, _ := r.Show.ExternalID("imdb")
		epLink, _ := r.Episode.ExternalID("imdb")
		entries = append(entries, CalendarEntry{
			Show:    r.Show.Title,
			Link:    imdb,
			Season:  r.Episode.Season,
			Episode: r.Episode.Number,
			EpLink:  epLink,
			Airdate: r.FirstAired.Format("2006-01-02"),
		})
	}
	return entries, nil
}

// Query searches by title and returns matches keyed by imdb id.
// Underscores in the query stand in for spaces, matching the facade routes.
func (c *Client) Query(ctx context.Context, query, media string) (map[string]map[string]any, error) {
	if media == "" {
		media = "show"
	}
	query = strings.ReplaceAll(query, "_", " ")
	path := fmt.Sprintf("/search/%s?query=%s", media, url.QueryEscape(query))

	var results []searchResult
	if err := c.getJSON(ctx, path, false, &results); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", query, err)
	}

	records := make(map[string]map[string]any)
	for _, r := range results {
		var item MediaItem
		switch {
		case r.Show != nil:
			item = *r.Show
		case r.Movie != nil:
			item = *r.Movie
		default:
			continue
		}
		if imdb, ok := item.ExternalID("imdb"); ok {
			records[imdb] = item.Record()
		}
	}
	return records, nil
}

// Lookup resolves an imdb id to a media record (show first, then movie).
func (c *Client) Lookup(ctx context.Context, imdbID string) (map[string]any, error) {
	if show, err := c.lookupShow(ctx, imdbID); err == nil {
		return show.Record(), nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	movie, err := c.lookupMovie(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	return movie.Record(), nil
}

func (c *Client) lookupShow(ctx context.Context, imdbID string) (*Show, error) {
	var results []showResult
	path := fmt.Sprintf("/search/imdb/%s?type=show", url.PathEscape(imdbID))
	if err := c.getJSON(ctx, path, false, &results); err != nil {
		return nil, fmt.Errorf("failed to look up show %s: %w", imdbID, err)
	}
	if len(results) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "show %s", imdbID)
	}
	return &results[0].Show, nil
}

func (c *Client) lookupMovie(ctx context.Context, imdbID string) (*Movie, error) {
	var results []movieResult
	path := fmt.Sprintf("/search/imdb/%s?type=movie", url.PathEscape(imdbID))
	if err := c.getJSON(ctx, path, false, &results); err != nil {
		return nil, fmt.Errorf("failed to look up movie %s: %w", imdbID, err)
	}
	// Listings without a year are stubs; skip them like the sync tooling does.
	for i := range results {
		if results[i].Movie.Year != 0 {
			return &results[i].Movie, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "movie %s", imdbID)
}

// Episode fetches a single episode object.
func (c *Client) Episode(ctx context.Context, imdbID string, season, episode int) (*Episode, error) {
	var e Episode
	path := fmt.Sprintf("/shows/%s/seasons/%d/episodes/%d", url.PathEscape(imdbID), season, episode)
	if err := c.getJSON(ctx, path, false, &e); err != nil {
		return nil, fmt.Errorf("failed to fetch episode %s s%02de%02d: %w", imdbID, season, episode, err)
	}
	return &e, nil
}

// SeasonEpisodes fetches every episode of one season.
func (c *Client) SeasonEpisodes(ctx context.Context, imdbID string, season int) ([]Episode, error) {
	var episodes []Episode
	path := fmt.Sprintf("/shows/%s/seasons/%d", url.PathEscape(imdbID), season)
	if err := c.getJSON(ctx, path, false, &episodes); err != nil {
		return nil, fmt.Errorf("failed to fetch season %s s%02d: %w", imdbID, season, err)
	}
	if len(episodes) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "season %s s%02d", imdbID, season)
	}
	return episodes, nil
}

type historyEpisode struct {
	WatchedAt time.Time `json:"watched_at"`
	IDs       IDs       `json:"ids"`
}

type historyMovie struct {
	WatchedAt time.Time `json:"watched_at"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	IDs       IDs       `json:"ids"`
}

// AddShowToWatchlist looks up the show and adds it to the watchlist.
func (c *Client) AddShowToWatchlist(ctx context.Context, imdbID string) error {
	show, err := c.lookupShow(ctx, imdbID)
	if err != nil {
		return err
	}
	body := map[string][]Show{"shows": {*show}}
	return c.postJSON(ctx, "/sync/watchlist", body, nil)
}

// RemoveShowFromWatchlist looks up the show and removes it from the
// watchlist.
func (c *Client) RemoveShowFromWatchlist(ctx context.Context, imdbID string) error {
	show, err := c.lookupShow(ctx, imdbID)
	if err != nil {
		return err
	}
	body := map[string][]Show{"shows": {*show}}
	return c.postJSON(ctx, "/sync/watchlist/remove", body, nil)
}

// AddEpisodeToHistory marks one episode as watched.
func (c *Client) AddEpisodeToHistory(ctx context.Context, imdbID string, season, episode int) error {
	e, err := c.Episode(ctx, imdbID, season, episode)
	if err != nil {
		return err
	}
	body := map[string][]historyEpisode{
		"episodes": {{WatchedAt: token.NowTimeFunc().UTC(), IDs: e.IDs}},
	}
	return c.postJSON(ctx, "/sync/history", body, nil)
}

// AddSeasonToHistory marks every episode of a season as watched.
func (c *Client) AddSeasonToHistory(ctx context.Context, imdbID string, season int) error {
	episodes, err := c.SeasonEpisodes(ctx, imdbID, season)
	if err != nil {
		return err
	}
	watched := make([]historyEpisode, 0, len(episodes))
	for _, e := range episodes {
		watched = append(watched, historyEpisode{WatchedAt: token.NowTimeFunc().UTC(), IDs: e.IDs})
	}
	body := map[string][]historyEpisode{"episodes": watched}
	return c.postJSON(ctx, "/sync/history", body, nil)
}

// RemoveEpisodeFromHistory removes one episode from the watched history.
func (c *Client) RemoveEpisodeFromHistory(ctx context.Context, imdbID string, season, episode int) error {
	e, err := c.Episode(ctx, imdbID, season, episode)
	if err != nil {
		return err
	}
	body := map[string][]historyEpisode{
		"episodes": {{WatchedAt: token.NowTimeFunc().UTC(), IDs: e.IDs}},
	}
	return c.postJSON(ctx, "/sync/history/remove", body, nil)
}

// AddMovieToHistory marks a movie as watched.
func (c *Client) AddMovieToHistory(ctx context.Context, imdbID string) error {
	movie, err := c.lookupMovie(ctx, imdbID)
	if err != nil {
		return err
	}
	body := map[string][]historyMovie{
		"movies": {{WatchedAt: token.NowTimeFunc().UTC(), Title: movie.Title, Year: movie.Year, IDs: movie.IDs}},
	}
	return c.postJSON(ctx, "/sync/history", body, nil)
}

// RemoveMovieFromHistory removes a movie from the watched history.
func (c *Client) RemoveMovieFromHistory(ctx context.Context, imdbID string) error {
	movie, err := c.lookupMovie(ctx, imdbID)
	if err != nil {
		return err
	}
	body := map[string][]historyMovie{
		"movies": {{WatchedAt: token.NowTimeFunc().UTC(), Title: movie.Title, Year: movie.Year, IDs: movie.IDs}},
	}
	return c.postJSON(ctx, "/sync/history/remove", body, nil)
}
