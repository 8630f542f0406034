package keyword

import (
	"fmt"
	"strings"

	"seo-toolkit/models"
)

var (
	longTailTemplates = []string{
		"best %s for beginners",
		"affordable %s services",
		"%s near me",
		"top rated %s reviews",
		"professional %s solutions",
		"how to choose %s",
		"%s cost comparison",
		"premium %s options",
	}
	questionTemplates = []string{
		"what is %s",
		"how does %s work",
		"why choose %s",
		"when to use %s",
		"where to find %s",
		"how much does %s cost",
		"is %s worth it",
		"what are the benefits of %s",
	}
	buyingTemplates = []string{
		"buy %s online",
		"%s for sale",
		"%s discount code",
		"best %s deals",
		"%s price",
		"order %s",
		"%s subscription",
		"hire %s expert",
	}
)

// Suggest expands niche into the long-tail, question and buying-intent groups.
func Suggest(niche string) models.KeywordSuggestions {
	niche = strings.TrimSpace(niche)
	return models.KeywordSuggestions{
		LongTail:     fill(longTailTemplates, niche),
		Questions:    fill(questionTemplates, niche),
		BuyingIntent: fill(buyingTemplates, niche),
	}
}

// All flattens the groups in long-tail, question, buying-intent order.
func All(s models.KeywordSuggestions) []string {
	out := make([]string, 0, len(s.LongTail)+len(s.Questions)+len(s.BuyingIntent))
	out = append(out, s.LongTail...)
	out = append(out, s.Questions...)
	return append(out, s.BuyingIntent...)
}

func fill(templates []string, niche string) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = fmt.Sprintf(t, niche)
	}
	return out
}
