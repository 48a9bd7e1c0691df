package nbacdn

import "time"

const (
	defaultCDNBaseURL   = "https://cdn.nba.com"
	defaultStatsBaseURL = "https://stats.nba.com"
	defaultHTTPTimeout  = 10 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultReferer      = "https://www.nba.com/"
	maxBodyBytes        = 32 << 20
	errorSnippetBytes   = 512

	// ProviderName labels this client in logs and metrics.
	ProviderName = "nbacdn"
)
