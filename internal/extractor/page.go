// Package extractor reads the title and the anchor links of HTML pages.
package extractor

import "context"

// initialLinksCapacity is the initial capacity of the links slice, it does not mean this is the maximum capacity.
// It is just not recommended to have more than 100 links in a document due to SEO (Page Ranking) reason.
// Ref: https://moz.com/blog/how-many-links-is-too-many
const initialLinksCapacity = 100

// Link is an anchor of a page, resolved to an absolute url without fragment.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Page is the result of an extraction.
type Page struct {
	Title string
	Links []Link // In document order, never nil.
}

// PageExtractor extracts a page from an HTML document.
type PageExtractor interface {
	Extract(ctx context.Context, baseURL string, doc string) (Page, error)
}
