package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"seo-toolkit/collector"
	"seo-toolkit/metrics"
	"seo-toolkit/mobile"
	"seo-toolkit/models"
	"seo-toolkit/onpage"
	"seo-toolkit/performance"
	"seo-toolkit/utils"
)

var ErrInvalidURL = errors.New("invalid page URL")

const defaultMaxPages = 100

// Store persists finished audits.
type Store interface {
	SaveAudit(ctx context.Context, audit *models.Audit) error
}

type Auditor struct {
	fetcher *Fetcher
	store   Store
	workers int
	width   int
	// MaxPages caps the pages queued per run, seeds included. Zero or less
	// means no cap.
	MaxPages int
}

// NewAuditor builds an auditor. store may be nil to skip persistence; width is
// the window width the responsiveness check assumes.
func NewAuditor(fetcher *Fetcher, store Store, workers, width int) *Auditor {
	if workers <= 0 {
		workers = 1
	}
	return &Auditor{
		fetcher:  fetcher,
		store:    store,
		workers:  workers,
		width:    width,
		MaxPages: defaultMaxPages,
	}
}

func (a *Auditor) full(queued int) bool {
	return a.MaxPages > 0 && queued >= a.MaxPages
}

// Audit fetches and scores a single page.
func (a *Auditor) Audit(ctx context.Context, pageURL string) (*models.Audit, error) {
	if !utils.IsValidURL(pageURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}
	audit, _, err := a.auditTask(ctx, models.URLTask{URL: utils.NormalizeURL(pageURL)})
	return audit, err
}

// AuditAll audits urls with a pool of workers, following same-host links up to
// maxDepth levels. Failures are counted in the stats and never stop the run.
func (a *Auditor) AuditAll(ctx context.Context, urls []string, maxDepth int) ([]*models.Audit, *models.AuditStats, error) {
	start := time.Now()
	stats := &models.AuditStats{}

	tasks := make(chan models.URLTask)
	results := make(chan auditResult)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go a.worker(ctx, &wg, tasks, results)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	visited := make(map[string]bool)
	var queue []models.URLTask
	for _, raw := range urls {
		if !utils.IsValidURL(raw) {
			slog.Warn("skipping invalid URL", "url", raw)
			stats.Errors++
			continue
		}
		normalized := utils.NormalizeURL(raw)
		if visited[normalized] {
			continue
		}
		if a.full(len(visited)) {
			slog.Warn("page limit reached, skipping URL", "url", raw, "max_pages", a.MaxPages)
			continue
		}
		visited[normalized] = true
		queue = append(queue, models.URLTask{URL: normalized})
	}

	var (
		audits  []*models.Audit
		pending int
		scored  int
		total   int
	)

loop:
	for len(queue) > 0 || pending > 0 {
		var (
			send chan<- models.URLTask
			next models.URLTask
		)
		if len(queue) > 0 {
			send = tasks
			next = queue[0]
		}

		select {
		case send <- next:
			queue = queue[1:]
			pending++
		case res := <-results:
			pending--
			if res.audit != nil {
				audits = append(audits, res.audit)
				stats.PagesAudited++
				if res.audit.Performance != nil {
					scored++
					total += res.audit.Performance.Score
				}
			}
			if res.err != nil {
				slog.Error("audit failed", "url", res.task.URL, "error", res.err)
				stats.Errors++
			}

			if res.task.Depth >= maxDepth {
				continue
			}
			for _, link := range res.links {
				if a.full(len(visited)) {
					break
				}
				if visited[link] || !utils.SameHost(link, res.task.URL) {
					continue
				}
				visited[link] = true
				queue = append(queue, models.URLTask{URL: link, Depth: res.task.Depth + 1, Parent: res.task.URL})
			}
		case <-ctx.Done():
			break loop
		}
	}

	close(tasks)
	for range results {
	}

	stats.Duration = time.Since(start)
	if scored > 0 {
		stats.AvgScore = float64(total) / float64(scored)
	}

	return audits, stats, ctx.Err()
}

func (a *Auditor) worker(ctx context.Context, wg *sync.WaitGroup, tasks <-chan models.URLTask, results chan<- auditResult) {
	defer wg.Done()

	for task := range tasks {
		audit, links, err := a.auditTask(ctx, task)
		results <- auditResult{task: task, audit: audit, links: links, err: err}
	}
}

func (a *Auditor) auditTask(ctx context.Context, task models.URLTask) (*models.Audit, []string, error) {
	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, task.URL)
	metrics.ObserveFetch(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, err
	}

	audit := a.evaluate(page, task.Depth)
	links := DiscoverLinks(page.Doc, page.URL)

	slog.Debug("page audited",
		"url", audit.URL,
		"depth", task.Depth,
		"mobile_score", audit.Mobile.Score,
		"onpage_score", audit.OnPage.OverallScore,
	)

	if a.store != nil {
		if err := a.store.SaveAudit(ctx, audit); err != nil {
			return audit, links, fmt.Errorf("save audit %s: %w", audit.URL, err)
		}
	}

	return audit, links, nil
}

func (a *Auditor) evaluate(page *Page, depth int) *models.Audit {
	doc := collector.NewDocument(page.Doc, page.Sheets, a.width)
	facts, responsiveness := mobile.Check(doc)
	content := onpage.Score(onpage.FromDocument(page.Doc))

	audit := &models.Audit{
		ID:         uuid.NewString(),
		URL:        page.URL.String(),
		StatusCode: page.StatusCode,
		Depth:      depth,
		CreatedAt:  time.Now().UTC(),
		Facts:      facts,
		Mobile:     responsiveness,
		OnPage:     content,
	}

	report, err := performance.Analyze(page)
	if err != nil {
		audit.PerformanceError = err.Error()
		metrics.RecordFailure("performance", "unsupported")
	} else {
		audit.Performance = report
		metrics.RecordScore("performance", string(report.Rating), report.Score)
	}

	metrics.RecordMobile(responsiveness.Score, responsiveness.IsMobileFriendly)
	metrics.RecordScore("onpage", "scored", content.OverallScore)

	return audit
}

// DiscoverLinks returns the absolute, normalized page links of doc.
func DiscoverLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if rel, ok := sel.Attr("rel"); ok && containsFold(rel, "nofollow") {
			return
		}

		absoluteURL := makeAbsoluteURL(base, href)
		if absoluteURL == "" || !utils.IsValidURL(absoluteURL) {
			return
		}
		absoluteURL = utils.NormalizeURL(absoluteURL)
		if !seen[absoluteURL] {
			seen[absoluteURL] = true
			links = append(links, absoluteURL)
		}
	})

	return links
}

func makeAbsoluteURL(base *url.URL, href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(link).String()
}

func containsFold(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

type auditResult struct {
	task  models.URLTask
	audit *models.Audit
	links []string
	err   error
}
