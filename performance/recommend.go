package performance

const (
	AdviceCaching     = "Page load time is slow. Optimize images and enable caching."
	AdviceHosting     = "Server response time is high. Consider upgrading hosting or using a CDN."
	AdviceMinify      = "DOM rendering is slow. Minimize JavaScript and CSS."
	AdviceCompression = "Enable GZIP compression to reduce file sizes."
	AdviceRequests    = "Minimize HTTP requests by combining files."
	AdviceGreat       = "Great performance! Keep monitoring and optimizing."
)

// Recommend lists advice for the given score and durations. Rules are independent
// and applied in order; the result is never empty.
func Recommend(score int, pageLoadTime, connectTime, renderTime int64) []string {
	var recs []string

	if pageLoadTime > 3000 {
		recs = append(recs, AdviceCaching)
	}
	if connectTime > 500 {
		recs = append(recs, AdviceHosting)
	}
	if renderTime > 1000 {
		recs = append(recs, AdviceMinify)
	}
	if score < 85 {
		recs = append(recs, AdviceCompression, AdviceRequests)
	}

	if len(recs) == 0 {
		recs = append(recs, AdviceGreat)
	}

	return recs
}
