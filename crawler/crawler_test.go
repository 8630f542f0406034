package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-toolkit/collector"
	"seo-toolkit/models"
)

const homePage = `<!DOCTYPE html>
<html><head>
<title>Handmade Ceramic Mugs and Bowls Shop</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="/site.css">
<link rel="stylesheet" href="https://fonts.example.net/inter.css">
</head><body>
<header class="bar">Mugs</header>
<a href="/about">About</a>
<a href="/about#team">Team</a>
<a href="/login" rel="nofollow">Login</a>
<a href="https://elsewhere.example.org/">Elsewhere</a>
<a href="/logo.png">Logo</a>
</body></html>`

const aboutPage = `<html><head><title>About</title></head><body><p>We make mugs.</p><a href="/">Home</a></body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(homePage))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(aboutPage))
	})
	mux.HandleFunc("/site.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte(`.bar { display: flex } @media (max-width: 600px) { .bar { display: block } }`))
	})
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type memoryStore struct {
	mu     sync.Mutex
	audits []*models.Audit
	err    error
}

func (m *memoryStore) SaveAudit(_ context.Context, audit *models.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.audits = append(m.audits, audit)
	return nil
}

func TestFetch(t *testing.T) {
	srv := newSite(t)
	f := NewFetcher("test-agent", 5*time.Second, 100)

	page, err := f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "Handmade Ceramic Mugs and Bowls Shop", page.Doc.Find("title").Text())
	require.Len(t, page.Sheets, 2)

	rules, err := page.Sheets[0].Rules()
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = page.Sheets[1].Rules()
	assert.ErrorIs(t, err, collector.ErrCrossOriginSheet)

	timing, ok := page.NavigationTiming()
	require.True(t, ok)
	assert.LessOrEqual(t, timing.NavigationStart, timing.RequestStart)
	assert.LessOrEqual(t, timing.RequestStart, timing.ResponseEnd)
	assert.LessOrEqual(t, timing.ResponseEnd, timing.DOMLoading)
	assert.LessOrEqual(t, timing.DOMLoading, timing.DOMContentLoadedEventEnd)
	assert.LessOrEqual(t, timing.DOMContentLoadedEventEnd, timing.DOMComplete)
	assert.LessOrEqual(t, timing.DOMComplete, timing.LoadEventEnd)
}

func TestFetchRejects(t *testing.T) {
	srv := newSite(t)
	f := NewFetcher("test-agent", 5*time.Second, 100)

	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = f.Fetch(context.Background(), srv.URL+"/data.json")
	assert.ErrorContains(t, err, "not an HTML page")
}

func TestPageWithoutTiming(t *testing.T) {
	_, ok := (&Page{}).NavigationTiming()
	assert.False(t, ok)
}

func TestAudit(t *testing.T) {
	srv := newSite(t)
	store := &memoryStore{}
	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), store, 2, 375)

	audit, err := a.Audit(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotEmpty(t, audit.ID)
	assert.Equal(t, srv.URL+"/", audit.URL)
	assert.Equal(t, models.ResponsivenessFacts{
		HasViewportTag:  true,
		HasMediaQueries: true,
		HasFlexboxUsage: true,
		ViewportWidth:   375,
	}, audit.Facts)
	assert.Equal(t, 100, audit.Mobile.Score)
	assert.True(t, audit.Mobile.IsMobileFriendly)

	require.NotNil(t, audit.Performance)
	assert.Empty(t, audit.PerformanceError)
	assert.Equal(t, 100, audit.Performance.Score)
	assert.Equal(t, models.RatingExcellent, audit.Performance.Rating)

	assert.Equal(t, 100, audit.OnPage.TitleScore)
	assert.Equal(t, 0, audit.OnPage.MetaScore)

	require.Len(t, store.audits, 1)
	assert.Equal(t, audit, store.audits[0])
}

func TestAuditInvalidURL(t *testing.T) {
	a := NewAuditor(NewFetcher("test-agent", time.Second, 100), nil, 1, 375)
	_, err := a.Audit(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestAuditStoreFailureKeepsAudit(t *testing.T) {
	srv := newSite(t)
	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), &memoryStore{err: errors.New("db down")}, 1, 1280)

	audit, err := a.Audit(context.Background(), srv.URL+"/about")
	assert.ErrorContains(t, err, "db down")
	require.NotNil(t, audit)
	assert.Equal(t, 0, audit.Mobile.Score)
	assert.Equal(t, []string{"Missing viewport meta tag", "No media queries detected"}, audit.Mobile.Issues)
}

func TestAuditAllFollowsSameHostLinks(t *testing.T) {
	srv := newSite(t)
	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), nil, 3, 375)

	audits, stats, err := a.AuditAll(context.Background(), []string{srv.URL, srv.URL + "/#top", "mailto:x@example.com"}, 1)
	require.NoError(t, err)

	urls := make([]string, 0, len(audits))
	for _, audit := range audits {
		urls = append(urls, audit.URL)
	}
	assert.ElementsMatch(t, []string{srv.URL + "/", srv.URL + "/about"}, urls)
	assert.Equal(t, 2, stats.PagesAudited)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, float64(100), stats.AvgScore)
}

func TestAuditAllDepthZero(t *testing.T) {
	srv := newSite(t)
	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), nil, 2, 375)

	audits, stats, err := a.AuditAll(context.Background(), []string{srv.URL, srv.URL + "/missing"}, 0)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
	assert.Equal(t, 1, stats.Errors)
}

func TestAuditAllMaxPages(t *testing.T) {
	srv := newSite(t)

	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), nil, 2, 375)
	a.MaxPages = 1
	audits, stats, err := a.AuditAll(context.Background(), []string{srv.URL, srv.URL + "/about"}, 1)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, srv.URL+"/", audits[0].URL)
	assert.Equal(t, 1, stats.PagesAudited)

	a.MaxPages = 0
	audits, _, err = a.AuditAll(context.Background(), []string{srv.URL}, 1)
	require.NoError(t, err)
	assert.Len(t, audits, 2)
}

func TestAuditAllCancelled(t *testing.T) {
	srv := newSite(t)
	a := NewAuditor(NewFetcher("test-agent", 5*time.Second, 100), nil, 1, 375)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := a.AuditAll(ctx, []string{srv.URL}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homePage))
	require.NoError(t, err)
	base, _ := url.Parse("https://shop.example.com/")

	assert.Equal(t, []string{
		"https://shop.example.com/about",
		"https://elsewhere.example.org/",
	}, DiscoverLinks(doc, base))
}
