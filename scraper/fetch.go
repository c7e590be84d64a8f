package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"leilao_scraper/browser"
)

// FetchFunc retrieves the bytes behind a document link found on a loaded
// listing page.
type FetchFunc func(ctx context.Context, pg *browser.Page, url string) ([]byte, error)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

const maxDocumentBytes = 50 * 1024 * 1024

// FetchDirect downloads a document over plain HTTP, outside the browser.
func FetchDirect(client *http.Client) FetchFunc {
	return func(ctx context.Context, _ *browser.Page, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		req.Header.Set("User-Agent", fetchUserAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
		}
		return data, nil
	}
}

// fetchFromPageContextJS downloads inside the page's own JS context, so the
// request carries the session cookies and referrer some sites require, and
// base64-encodes the bytes for the trip back to Go.
const fetchFromPageContextJS = `async (url) => {
	const resp = await fetch(url, { credentials: 'include' });
	if (!resp.ok) throw new Error('fetch failed with status ' + resp.status);
	const buf = await resp.arrayBuffer();
	const bytes = new Uint8Array(buf);
	let binary = '';
	const chunk = 0x8000;
	for (let i = 0; i < bytes.length; i += chunk) {
		binary += String.fromCharCode.apply(null, bytes.subarray(i, i + chunk));
	}
	return btoa(binary);
}`

// FetchFromPageContext is the FetchFunc for referrer/cookie-gated documents.
func FetchFromPageContext(ctx context.Context, pg *browser.Page, url string) ([]byte, error) {
	result, err := pg.Evaluate(fetchFromPageContextJS, url)
	if err != nil {
		return nil, fmt.Errorf("page-context fetch %s: %w", url, err)
	}
	encoded, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("page-context fetch %s: unexpected result %T", url, result)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("page-context fetch %s: decode: %w", url, err)
	}
	return data, nil
}
