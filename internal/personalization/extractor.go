package personalization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
)

// ErrNoMasterProduct is returned when a product without a primary category is
// not a master and has no master product to fall back to.
var ErrNoMasterProduct = errors.New("product has no master product")

// productIDKey must appear in the first query segment of a product page click.
const productIDKey = "pid"

// ParseProductID extracts the product id from a raw click query string. Only
// the first '&'-delimited segment is considered; it must contain "pid" and
// the id is the token after the first '='. The second result is false when
// the query does not have that shape.
func ParseProductID(rawQuery string) (string, bool) {
	segment, _, _ := strings.Cut(rawQuery, "&")
	if !strings.Contains(segment, productIDKey) {
		return "", false
	}

	tokens := strings.Split(segment, "=")
	if len(tokens) < 2 || tokens[1] == "" {
		return "", false
	}

	return tokens[1], true
}

// ExtractCategory resolves the merchandising category of a product detail
// page click. Clicks on other pages, malformed queries and products without
// any primary category yield nil. Catalog lookup failures are returned.
func (r *Resolver) ExtractCategory(ctx context.Context, click domain.ClickEvent) (*domain.Category, error) {
	if click.PageID != r.productPage {
		return nil, nil
	}

	pid, ok := ParseProductID(click.Query)
	if !ok {
		return nil, nil
	}

	return r.productCategory(ctx, pid)
}

// productCategory returns the product's primary category, falling back to its
// master product's primary category for non-master products.
func (r *Resolver) productCategory(ctx context.Context, pid string) (*domain.Category, error) {
	product, err := r.catalog.Product(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", pid, err)
	}

	categoryID := product.PrimaryCategoryID
	if categoryID == nil && !product.IsMaster() {
		if product.MasterID == nil {
			return nil, fmt.Errorf("product %s: %w", pid, ErrNoMasterProduct)
		}

		master, masterErr := r.catalog.Product(ctx, *product.MasterID)
		if masterErr != nil {
			return nil, fmt.Errorf("get master product %s: %w", *product.MasterID, masterErr)
		}
		categoryID = master.PrimaryCategoryID
	}

	if categoryID == nil {
		return nil, nil
	}

	category, err := r.catalog.Category(ctx, *categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", *categoryID, err)
	}

	return category, nil
}

// UpdateTally credits the first tally entry whose category is productCategory
// or one of its ancestors. It reports whether an entry was credited.
func (r *Resolver) UpdateTally(ctx context.Context, tally *Tally, productCategory *domain.Category) (bool, error) {
	for _, id := range tally.order {
		siteCategory, err := r.catalog.Category(ctx, id)
		if err != nil {
			return false, fmt.Errorf("get interest category %s: %w", id, err)
		}

		matched := siteCategory.ID == productCategory.ID
		if !matched {
			matched, err = r.catalog.IsSubCategoryOf(ctx, productCategory, siteCategory)
			if err != nil {
				return false, fmt.Errorf("check %s under %s: %w", productCategory.ID, id, err)
			}
		}

		if matched {
			tally.Increment(id)
			return true, nil
		}
	}

	return false, nil
}
