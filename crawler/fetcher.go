package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"seo-toolkit/collector"
	"seo-toolkit/models"
)

const maxBodySize = 10 << 20

// Page is a fetched and parsed HTML document. The fetch itself is timed like a
// browser navigation, so a Page is a performance.TimingSource.
type Page struct {
	URL         *url.URL
	StatusCode  int
	ContentType string
	Size        int64
	Doc         *goquery.Document
	Sheets      []collector.Stylesheet
	Timing      models.NavigationTiming
}

func (p *Page) NavigationTiming() (models.NavigationTiming, bool) {
	return p.Timing, p.Timing.NavigationStart > 0
}

type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewFetcher(userAgent string, timeout time.Duration, requestsPerSecond int) *Fetcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond*2),
		userAgent: userAgent,
	}
}

// Fetch downloads pageURL and its same-origin stylesheets, recording navigation
// style timestamps along the way.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var (
		mu           sync.Mutex
		requestStart time.Time
	)
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) {
			mu.Lock()
			requestStart = time.Now()
			mu.Unlock()
		},
	}

	navigationStart := time.Now()

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("fetch %s: not an HTML page (%s)", pageURL, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	responseEnd := time.Now()

	mu.Lock()
	if requestStart.IsZero() {
		requestStart = navigationStart
	}
	mu.Unlock()

	domLoading := time.Now()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	domContentLoaded := time.Now()

	base := resp.Request.URL
	sheets := collector.LoadStylesheets(doc, base, func(u *url.URL) (string, error) {
		return f.fetchStylesheet(ctx, u)
	})
	domComplete := time.Now()

	return &Page{
		URL:         base,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Size:        int64(len(body)),
		Doc:         doc,
		Sheets:      sheets,
		Timing: models.NavigationTiming{
			NavigationStart:          navigationStart.UnixMilli(),
			RequestStart:             requestStart.UnixMilli(),
			ResponseEnd:              responseEnd.UnixMilli(),
			DOMLoading:               domLoading.UnixMilli(),
			DOMContentLoadedEventEnd: domContentLoaded.UnixMilli(),
			DOMComplete:              domComplete.UnixMilli(),
			LoadEventEnd:             time.Now().UnixMilli(),
		},
	}, nil
}

func (f *Fetcher) fetchStylesheet(ctx context.Context, u *url.URL) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/css,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("stylesheet %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	for _, t := range []string{"text/html", "application/xhtml+xml"} {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
