package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fetcher retrieves profile pages with a browser-like request signature; the
// provider serves a stripped error page to obvious bots.
type Fetcher struct {
	hc  *http.Client
	log *zap.Logger
}

func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	return &Fetcher{hc: &http.Client{Timeout: timeout}, log: log}
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// FetchProfilePage performs a single GET of the canonical profile URL.
// Timeout, non-200 and a body without an HTML marker are all terminal for
// this attempt.
func (f *Fetcher) FetchProfilePage(ctx context.Context, canonicalURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return "", &Error{Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.5")

	resp, err := f.hc.Do(req)
	if err != nil {
		return "", &Error{Reason: ReasonNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", &Error{Reason: ReasonNotFound, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Reason: ReasonNetwork, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Reason: ReasonNetwork, Err: err}
	}

	html := string(body)
	if !strings.Contains(strings.ToLower(html), "<html") {
		f.log.Debug("profile page without html marker", zap.String("url", canonicalURL))
		return "", &Error{Reason: ReasonUnrecognized, Err: fmt.Errorf("missing page marker")}
	}
	return html, nil
}
