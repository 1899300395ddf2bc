package config

import "time"

// TMDBConfig configures the movie catalog client.
type TMDBConfig struct {
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	CreditsTTL      time.Duration
	BreakerFailures int
	BreakerReset    time.Duration
}

// LoadTMDBConfig reads TMDB_* variables.  The API key is optional at
// load time: without it every oracle call fails as upstream-unavailable,
// which keeps local development usable.
func LoadTMDBConfig() TMDBConfig {
	return TMDBConfig{
		APIKey:          envStr("TMDB_API_KEY", ""),
		BaseURL:         envStr("TMDB_BASE_URL", "https://api.themoviedb.org"),
		Timeout:         envDur("TMDB_TIMEOUT", 5*time.Second),
		CreditsTTL:      envDur("TMDB_CREDITS_TTL", 24*time.Hour),
		BreakerFailures: envInt("TMDB_BREAKER_FAILURES", 5),
		BreakerReset:    envDur("TMDB_BREAKER_RESET", 30*time.Second),
	}
}
