package domain

// ProductType is the catalog classification of a product.
type ProductType string

// Product types known to the catalog.
const (
	ProductTypeStandard       ProductType = "standard"
	ProductTypeMaster         ProductType = "master"
	ProductTypeVariant        ProductType = "variant"
	ProductTypeVariationGroup ProductType = "variation_group"
	ProductTypeSet            ProductType = "set"
	ProductTypeBundle         ProductType = "bundle"
)

// Category is a merchandising category in the catalog tree.
type Category struct {
	ID       string  `db:"id"        json:"id"`
	ParentID *string `db:"parent_id" json:"parent_id,omitempty"`
	Name     string  `db:"name"      json:"name"`
}

// Product is the subset of catalog product data needed to resolve a category.
type Product struct {
	ID   string      `db:"id"           json:"id"`
	Type ProductType `db:"product_type" json:"type"`
	// PrimaryCategoryID is nil when the product has no primary category of its own.
	PrimaryCategoryID *string `db:"primary_category_id" json:"primary_category_id,omitempty"`
	// MasterID links a variant to its master product.
	MasterID *string `db:"master_id" json:"master_id,omitempty"`
}

// IsMaster reports whether the product is a master product.
func (p *Product) IsMaster() bool {
	return p.Type == ProductTypeMaster
}
