package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var challengeSelectors = []string{
	"#challenge-form",
	"#challenge-running",
	"#challenge-stage",
	"#cf-challenge-running",
	".cf-turnstile",
	"script[src*='challenges.cloudflare.com']",
	"iframe[src*='challenges.cloudflare.com']",
}

// calendarSelectors match the rendered calendar grid
var calendarSelectors = []string{
	"table.calendar__table",
	"table.calendar",
	"[class*='calendar__row']",
}

var challengeTitles = []string{
	"just a moment",
	"attention required",
}

// DetectChallenge reports whether html is a Cloudflare bot-challenge page and
// names the marker that matched
func DetectChallenge(html string) (bool, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range challengeSelectors {
		if doc.Find(sel).Length() > 0 {
			return true, sel, nil
		}
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	for _, t := range challengeTitles {
		if strings.Contains(title, t) {
			return true, "title: " + title, nil
		}
	}

	return false, "", nil
}

// HasCalendar reports whether html contains the rendered calendar grid
func HasCalendar(html string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, fmt.Errorf("parsing HTML: %w", err)
	}
	for _, sel := range calendarSelectors {
		if doc.Find(sel).Length() > 0 {
			return true, nil
		}
	}
	return false, nil
}
