package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ PageExtractor = (*HTMLExtractor)(nil)

// HTMLExtractor extracts the title and the links of an HTML document.
//
//	e := NewHTMLExtractor()
//	page, err := e.Parse("http://example.com/", doc)
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(page.Title, page.Links)
type HTMLExtractor struct {
	classifier *ResourceClassifier
}

// Extract extracts the page in the calling goroutine. Use a Pool to run the extraction off the calling goroutine.
func (e HTMLExtractor) Extract(_ context.Context, baseURL string, doc string) (Page, error) {
	return e.Parse(baseURL, doc)
}

// Parse parses the document and collects the title and the anchors that have a href attribute, in document order.
//
// Anchors marked with a download attribute are ignored. Links are resolved against the base url and their fragments are removed. Links to resources
// (see ResourceClassifier) are excluded.
func (e HTMLExtractor) Parse(baseURL string, doc string) (Page, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return Page{}, fmt.Errorf("could not parse base url: %w", err)
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return Page{}, fmt.Errorf("could not parse html doc: %w", err)
	}

	page := Page{Links: make([]Link, 0, initialLinksCapacity)}
	titleFound := false

	var walk func(n *html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom { // nolint: exhaustive // Only titles and anchors are relevant.
			case atom.Title:
				if !titleFound {
					titleFound = true
					page.Title = cleanText(textContent(n))
				}

			case atom.A:
				if link, ok := e.anchorLink(base, n); ok {
					page.Links = append(page.Links, link)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)

	// Reduce memory allocation. GC will clean up the old links slice.
	links := make([]Link, len(page.Links))
	copy(links, page.Links)

	page.Links = links

	return page, nil
}

func (e HTMLExtractor) anchorLink(base *url.URL, n *html.Node) (Link, bool) {
	href, hasHref := "", false

	for _, attr := range n.Attr {
		switch attr.Key {
		case "download":
			return Link{}, false

		case "href":
			// In HTML, \n does not mean new line. Browser will ignore it, so link like "\nhttps://example.org/\npath" will be interpreted
			// as "https://example.org/path".
			href, hasHref = strings.TrimSpace(strings.ReplaceAll(attr.Val, "\n", "")), true
		}
	}

	if !hasHref {
		return Link{}, false
	}

	u, err := base.Parse(href)
	if err != nil {
		return Link{}, false
	}

	u.Fragment = ""
	u.RawFragment = ""

	absURL := u.String()

	if e.classifier.IsResource(absURL) {
		return Link{}, false
	}

	return Link{URL: absURL, Text: cleanText(textContent(n))}, true
}

// textContent concatenates all the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder

	var collect func(n *html.Node)

	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}

	collect(n)

	return sb.String()
}

// cleanText trims the text and decodes the entities that are left after parsing, such as a double-escaped "&amp;amp;".
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strings.TrimSpace(s)))
}

// NewHTMLExtractor creates a new extractor. If no classifier is given, links to the DefaultResourceExtensions are excluded.
func NewHTMLExtractor(classifier ...*ResourceClassifier) *HTMLExtractor {
	e := &HTMLExtractor{classifier: NewResourceClassifier()}

	if len(classifier) > 0 && classifier[0] != nil {
		e.classifier = classifier[0]
	}

	return e
}
