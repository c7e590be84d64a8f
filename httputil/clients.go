package httputil

import (
	"net/http"
	"sync"
	"time"
)

var (
	scrapingOnce   sync.Once
	scrapingClient *http.Client

	apiOnce   sync.Once
	apiClient *http.Client
)

// ScrapingClient is the shared client for downloading documents from target
// sites. Generous timeout: edital PDFs run to tens of megabytes on slow
// court-adjacent hosting.
func ScrapingClient() *http.Client {
	scrapingOnce.Do(func() {
		scrapingClient = &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				ForceAttemptHTTP2:   false,
			},
		}
	})
	return scrapingClient
}

// APIClient is the shared client for third-party APIs (geocoding and the
// like), where a hung call should fail fast.
func APIClient() *http.Client {
	apiOnce.Do(func() {
		apiClient = &http.Client{Timeout: 30 * time.Second}
	})
	return apiClient
}
