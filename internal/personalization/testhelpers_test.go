package personalization_test

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
)

var errNotFound = errors.New("not found")

func strPtr(s string) *string { return &s }

// fakeCatalog is an in-memory catalog. Categories form a tree through ParentID.
type fakeCatalog struct {
	products   map[string]*domain.Product
	categories map[string]*domain.Category
	calls      int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   make(map[string]*domain.Product),
		categories: make(map[string]*domain.Category),
	}
}

func (c *fakeCatalog) addCategory(id, parent string) *fakeCatalog {
	cat := &domain.Category{ID: id, Name: id}
	if parent != "" {
		cat.ParentID = strPtr(parent)
	}
	c.categories[id] = cat
	return c
}

func (c *fakeCatalog) addProduct(id string, typ domain.ProductType, category, master string) *fakeCatalog {
	p := &domain.Product{ID: id, Type: typ}
	if category != "" {
		p.PrimaryCategoryID = strPtr(category)
	}
	if master != "" {
		p.MasterID = strPtr(master)
	}
	c.products[id] = p
	return c
}

func (c *fakeCatalog) Product(_ context.Context, id string) (*domain.Product, error) {
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (c *fakeCatalog) Category(_ context.Context, id string) (*domain.Category, error) {
	c.calls++
	cat, ok := c.categories[id]
	if !ok {
		return nil, errNotFound
	}
	return cat, nil
}

func (c *fakeCatalog) IsSubCategoryOf(_ context.Context, child, ancestor *domain.Category) (bool, error) {
	c.calls++
	for parent := child.ParentID; parent != nil; {
		if *parent == ancestor.ID {
			return true, nil
		}
		next, ok := c.categories[*parent]
		if !ok {
			return false, nil
		}
		parent = next.ParentID
	}
	return false, nil
}

type staticPrefs []string

func (p staticPrefs) CategoryIDs(context.Context) ([]string, error) {
	return p, nil
}

type fakeSession struct {
	enabled         bool
	clicks          []domain.ClickEvent
	personalization string
	writes          int
	writeErr        error
}

func (s *fakeSession) ClickstreamEnabled(context.Context) (bool, error) {
	return s.enabled, nil
}

func (s *fakeSession) Clicks(context.Context) ([]domain.ClickEvent, error) {
	return s.clicks, nil
}

func (s *fakeSession) SetPersonalization(_ context.Context, categoryID string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.personalization = categoryID
	return nil
}

func pdpClick(pid string) domain.ClickEvent {
	return domain.ClickEvent{PageID: "Product-Show", Query: "pid=" + pid + "&cgid=root"}
}

func pdpClicks(pid string, n int) []domain.ClickEvent {
	clicks := make([]domain.ClickEvent, n)
	for i := range clicks {
		clicks[i] = pdpClick(pid)
	}
	return clicks
}

// shopCatalog is a small catalog used by most tests:
//
//	root
//	├── cat-shoes ── cat-heels
//	└── cat-bags
func shopCatalog() *fakeCatalog {
	return newFakeCatalog().
		addCategory("root", "").
		addCategory("cat-shoes", "root").
		addCategory("cat-heels", "cat-shoes").
		addCategory("cat-bags", "root").
		addProduct("sneaker", domain.ProductTypeStandard, "cat-shoes", "").
		addProduct("pump", domain.ProductTypeStandard, "cat-heels", "").
		addProduct("tote", domain.ProductTypeStandard, "cat-bags", "").
		addProduct("tote-master", domain.ProductTypeMaster, "cat-bags", "").
		addProduct("tote-red", domain.ProductTypeVariant, "", "tote-master").
		addProduct("bare-master", domain.ProductTypeMaster, "", "").
		addProduct("bare-red", domain.ProductTypeVariant, "", "bare-master").
		addProduct("orphan", domain.ProductTypeVariant, "", "")
}
