package browsertest

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ysmood/gson"
	"golang.org/x/net/html"
)

// FixturePage returns a Page whose Eval measures a static HTML document
// the way the in-page extraction script measures a live one. Since there
// is no layout engine, rendered heights come from attributes:
//
//	<body data-scroll-height="1000">
//	<div class="ad-slot" data-height="150"></div>
//
// Eval only answers calls whose source is exactly script, so the double
// fails as soon as the caller ships a different function. The first Eval
// argument must be the ad selector group.
func FixturePage(script, src string) (*Page, error) {
	if script == "" {
		return nil, errors.New("browsertest: empty extraction script")
	}
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return &Page{OnEval: measure(script, goquery.NewDocumentFromNode(root))}, nil
}

// ErrUnexpectedScript is returned by a fixture page asked to evaluate a
// script other than the one it was built for.
var ErrUnexpectedScript = errors.New("browsertest: unexpected script")

func measure(script string, doc *goquery.Document) EvalFunc {
	return func(_ context.Context, js string, args ...any) (gson.JSON, error) {
		if js != script {
			return gson.JSON{}, ErrUnexpectedScript
		}
		if len(args) == 0 {
			return gson.JSON{}, errors.New("browsertest: missing ad selector argument")
		}
		selector, ok := args[0].(string)
		if !ok {
			return gson.JSON{}, errors.New("browsertest: ad selector must be a string")
		}

		body := doc.Find("body").First()
		contentHeight := attrFloat(body, "data-scroll-height")

		adHeights := []float64{}
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if h := attrFloat(s, "data-height"); h > 0 {
				adHeights = append(adHeights, h)
			}
		})

		ldJSON := []string{}
		doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
			ldJSON = append(ldJSON, s.Text())
		})

		// innerText skips script and style contents.
		visible := body.Clone()
		visible.Find("script, style, noscript").Remove()

		return gson.New(map[string]any{
			"contentHeight": contentHeight,
			"adHeights":     adHeights,
			"ldJson":        ldJSON,
			"bodyText":      visible.Text(),
		}), nil
	}
}

func attrFloat(s *goquery.Selection, name string) float64 {
	v, ok := s.Attr(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}
