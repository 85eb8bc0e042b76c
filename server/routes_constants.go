package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Read routes
	RouteWatchlist     = "/trakt/watchlist"
	RouteWatchedShows  = "/trakt/watched_shows"
	RouteWatchedShow   = "/trakt/watched_show/{imdb_id}"
	RouteWatchedMovies = "/trakt/watched_movies"
	RouteWatchedMovie  = "/trakt/watched_movie/{imdb_id}"
	RouteCalendar      = "/trakt/cal"
	RouteQuery         = "/trakt/query/{query}"
	RouteLookup        = "/trakt/lookup/{imdb_id}"

	// Mutating routes, served as GET for compatibility with existing callers
	RouteAddToWatchlist      = "/trakt/add_to_watchlist/{imdb_id}"
	RouteDeleteShow          = "/trakt/delete_show/{imdb_id}"
	RouteAddToWatched        = "/trakt/add_to_watched/{imdb_id}"
	RouteDeleteWatchedMovie  = "/trakt/delete_watched_movie/{imdb_id}"
	RouteAddEpisodeToWatched = "/trakt/add_episode_to_watched/{imdb_id}/{season}/{episode}"
	RouteDeleteWatched       = "/trakt/delete_watched/{imdb_id}/{season}/{episode}"
)
