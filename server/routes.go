package server

func (s *Server) initRoutes() {
	// Read routes
	s.RegisterRouteFunc("GET "+RouteWatchlist, ChainMiddleware(s.WatchlistHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteWatchedShows, ChainMiddleware(s.WatchedShowsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteWatchedShow, ChainMiddleware(s.WatchedShowsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteWatchedMovies, ChainMiddleware(s.WatchedMoviesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteWatchedMovie, ChainMiddleware(s.WatchedMoviesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCalendar, ChainMiddleware(s.CalendarHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteQuery, ChainMiddleware(s.QueryHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteLookup, ChainMiddleware(s.LookupHandler(), s.APIMiddleware()...))

	// Mutating routes
	s.RegisterRouteFunc("GET "+RouteAddToWatchlist, ChainMiddleware(s.AddToWatchlistHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteDeleteShow, ChainMiddleware(s.DeleteShowHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAddToWatched, ChainMiddleware(s.AddMovieToWatchedHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteDeleteWatchedMovie, ChainMiddleware(s.DeleteWatchedMovieHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAddEpisodeToWatched, ChainMiddleware(s.AddEpisodeToWatchedHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteDeleteWatched, ChainMiddleware(s.DeleteWatchedEpisodeHandler(), s.APIMiddleware()...))
}
