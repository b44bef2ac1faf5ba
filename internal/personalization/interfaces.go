// Package personalization derives a shopper's most popular interest category
// from the product pages visited in their session clickstream.
package personalization

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
)

// Catalog resolves products and categories.
type Catalog interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Category(ctx context.Context, id string) (*domain.Category, error)
	// IsSubCategoryOf reports whether child is a strict descendant of ancestor.
	IsSubCategoryOf(ctx context.Context, child, ancestor *domain.Category) (bool, error)
}

// PreferenceStore supplies the ordered list of interest category ids
// configured for the site.
type PreferenceStore interface {
	CategoryIDs(ctx context.Context) ([]string, error)
}

// Session is the session-scoped state read and written by ProcessClickStream.
type Session interface {
	ClickstreamEnabled(ctx context.Context) (bool, error)
	// Clicks returns the clickstream oldest first.
	Clicks(ctx context.Context) ([]domain.ClickEvent, error)
	SetPersonalization(ctx context.Context, categoryID string) error
}

// Recorder receives run metrics.
type Recorder interface {
	ObserveRun(status Status, elapsed time.Duration)
	ClickCounted()
	WinnerSelected(categoryID string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(Status, time.Duration) {}
func (nopRecorder) ClickCounted()                    {}
func (nopRecorder) WinnerSelected(string)            {}
