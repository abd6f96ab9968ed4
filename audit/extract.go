package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/webboost/models"
	"github.com/ysmood/gson"
)

// DefaultAdSelectors match ad slots of common networks (Mediavine, Raptive,
// AdSense) and generic "ad-" prefixed ids.
var DefaultAdSelectors = []string{
	".ad-slot",
	".adsbygoogle",
	".mv-ad-box",
	`[id^="ad-"]`,
	`iframe[title*="advertisement"]`,
}

// recipeMarkers are matched against lower-cased JSON-LD text. This is a
// substring scan, not a JSON parse, so malformed blocks never fail it.
var recipeMarkers = []string{
	`"@type":"recipe"`,
	`"@type": "recipe"`,
}

// extractScript runs inside the page. It only reads the DOM and returns
// raw measurements; all arithmetic happens in Compute.
const extractScript = `(adSelector) => {
	const body = document.body;
	const contentHeight = body ? body.scrollHeight : 0;

	const adHeights = [];
	for (const el of document.querySelectorAll(adSelector)) {
		const h = el.getBoundingClientRect().height;
		if (h > 0) adHeights.push(h);
	}

	const ldJson = Array.from(
		document.querySelectorAll('script[type="application/ld+json"]'),
		(s) => s.textContent || '',
	);

	return {
		contentHeight: contentHeight,
		adHeights: adHeights,
		ldJson: ldJson,
		bodyText: body ? body.innerText : '',
	};
}`

// Measurements is the wire shape returned by extractScript.
type Measurements struct {
	ContentHeight float64   `json:"contentHeight"`
	AdHeights     []float64 `json:"adHeights"`
	LDJSON        []string  `json:"ldJson"`
	BodyText      string    `json:"bodyText"`
}

// AdSelector validates the default and extra selectors and joins them
// into the single selector group shipped to the page.
func AdSelector(extra []string) (string, error) {
	all := make([]string, 0, len(DefaultAdSelectors)+len(extra))
	all = append(all, DefaultAdSelectors...)
	all = append(all, extra...)

	for _, s := range all {
		if _, err := cascadia.Parse(s); err != nil {
			return "", fmt.Errorf("invalid ad selector %q: %w", s, err)
		}
	}
	return strings.Join(all, ", "), nil
}

// decodeMeasurements deserializes the value returned from the page.
func decodeMeasurements(v gson.JSON) (Measurements, error) {
	var m Measurements

	raw, err := v.MarshalJSON()
	if err != nil {
		return m, fmt.Errorf("encode page value: %w", err)
	}
	if string(raw) == "null" {
		return m, errors.New("page returned no value")
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode page value: %w", err)
	}
	return m, nil
}

// Compute derives PageMetrics from raw page measurements.
func Compute(m Measurements) models.PageMetrics {
	return models.PageMetrics{
		MobileAdDensity: AdDensity(m.AdHeights, m.ContentHeight),
		HasSchema:       HasRecipeSchema(m.LDJSON),
		WordCount:       CountWords(m.BodyText),
	}
}

// AdDensity returns the summed positive ad heights as a rounded percentage
// of contentHeight. A non-positive contentHeight yields 0.
func AdDensity(adHeights []float64, contentHeight float64) int {
	if !(contentHeight > 0) {
		return 0
	}

	var total float64
	for _, h := range adHeights {
		if h > 0 {
			total += h
		}
	}
	return int(math.Round(total * 100 / contentHeight))
}

// HasRecipeSchema reports whether any JSON-LD block declares a Recipe.
func HasRecipeSchema(blocks []string) bool {
	for _, b := range blocks {
		lower := strings.ToLower(b)
		for _, marker := range recipeMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
