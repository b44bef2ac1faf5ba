package domain

import "time"

// ClickEvent is a single page view recorded in a shopper's session clickstream.
type ClickEvent struct {
	// PageID identifies the page or controller flow that served the click,
	// e.g. "Product-Show" for a product detail page.
	PageID string `json:"page_id"`
	// Query is the raw query string of the clicked URL, without the leading '?'.
	Query     string    `json:"query"`
	ClickedAt time.Time `json:"clicked_at"`
}
