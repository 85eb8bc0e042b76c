package trakt

import (
	"strconv"
	"time"
)

// IDs is the bundle of external identifiers the API attaches to every show,
// movie and episode.
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TVDB  int    `json:"tvdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// MediaItem gives uniform access to the API's media objects without leaking
// their wire shapes into callers.
type MediaItem interface {
	// ExternalID returns the item's identifier for a provider ("imdb",
	// "trakt", "slug", ...) and whether one is present.
	ExternalID(provider string) (string, bool)

	// Record returns the item as a generic mapping, the shape sent back on
	// add/remove calls and query responses.
	Record() map[string]any
}

// Show is a series object as returned by search, watchlist and watched
// endpoints.
type Show struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
	IDs   IDs    `json:"ids"`
}

// Movie shares the show wire shape.
type Movie = Show

// Episode is a single episode object.
type Episode struct {
	Season int    `json:"season"`
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	IDs    IDs    `json:"ids"`
}

func (ids IDs) externalID(provider string) (string, bool) {
	switch provider {
	case "imdb":
		return ids.IMDB, ids.IMDB != ""
	case "slug":
		return ids.Slug, ids.Slug != ""
	case "trakt":
		if ids.Trakt == 0 {
			return "", false
		}
		return strconv.Itoa(ids.Trakt), true
	case "tvdb":
		if ids.TVDB == 0 {
			return "", false
		}
		return strconv.Itoa(ids.TVDB), true
	case "tmdb":
		if ids.TMDB == 0 {
			return "", false
		}
		return strconv.Itoa(ids.TMDB), true
	}
	return "", false
}

func (s Show) ExternalID(provider string) (string, bool) {
	return s.IDs.externalID(provider)
}

func (s Show) Record() map[string]any {
	return map[string]any{
		"title": s.Title,
		"year":  s.Year,
		"ids":   s.IDs,
	}
}

func (e Episode) ExternalID(provider string) (string, bool) {
	return e.IDs.externalID(provider)
}

func (e Episode) Record() map[string]any {
	return map[string]any{
		"season": e.Season,
		"number": e.Number,
		"title":  e.Title,
		"ids":    e.IDs,
	}
}

var (
	_ MediaItem = Show{}
	_ MediaItem = Episode{}
)

// Wire wrappers: search and list endpoints nest the media object under a
// type key.

type showResult struct {
	Show Show `json:"show"`
}

type movieResult struct {
	Movie Movie `json:"movie"`
}

type watchedSeason struct {
	Number   int `json:"number"`
	Episodes []struct {
		Number int `json:"number"`
	} `json:"episodes"`
}

type watchedShowResult struct {
	Show    Show            `json:"show"`
	Seasons []watchedSeason `json:"seasons"`
}

type calendarResult struct {
	FirstAired time.Time `json:"first_aired"`
	Episode    Episode   `json:"episode"`
	Show       Show      `json:"show"`
}

type searchResult struct {
	Type  string `json:"type"`
	Show  *Show  `json:"show,omitempty"`
	Movie *Movie `json:"movie,omitempty"`
}

// Facade shapes: what the HTTP routes serialize, matching the original
// service's JSON.

// WatchlistShow is one watchlist entry keyed by its imdb link.
type WatchlistShow struct {
	Link  string `json:"link"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// WatchedEpisode is one watched-history entry for a show episode.
type WatchedEpisode struct {
	Title   string `json:"title"`
	ImdbURL string `json:"imdb_url"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// WatchedMovie is one watched-history entry for a movie.
type WatchedMovie struct {
	Title   string `json:"title"`
	ImdbURL string `json:"imdb_url"`
}

// CalendarEntry is one upcoming-episode entry from the personal calendar.
type CalendarEntry struct {
	Show    string `json:"show"`
	Link    string `json:"link"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	EpLink  string `json:"ep_link,omitempty"`
	Airdate string `json:"airdate"`
}

