// Package source defines the read interface to the commerce catalog the feed
// is built from. Implementations resolve products, variant families and
// category terms; the feed core never writes back.
package source

import (
	"context"
	"time"
)

// Product types recognized by the feed generator.
const (
	TypeSimple    = "simple"
	TypeVariable  = "variable"
	TypeVariation = "variation"
)

// Stock status values as reported by the store.
const (
	StockInStock     = "instock"
	StockOutOfStock  = "outofstock"
	StockOnBackorder = "onbackorder"
)

// CategoryTerm is one node of the product category taxonomy.
type CategoryTerm struct {
	ID       int64
	Name     string
	ParentID int64
}

// Product is a sellable unit as read from the store. Prices are kept as the
// store reports them (decimal strings without a currency); missing values are
// empty strings or nil.
type Product struct {
	ID               int64
	Type             string
	ParentID         int64
	ChildIDs         []int64
	SKU              string
	Name             string
	Description      string
	ShortDescription string
	Permalink        string

	StockStatus   string
	StockQuantity *int

	RegularPrice string
	SalePrice    string
	SaleStart    *time.Time
	SaleEnd      *time.Time

	Weight string
	Length string
	Width  string
	Height string

	ImageURL    string
	GalleryURLs []string

	// Attributes holds named product attributes (brand, material, color,
	// size, size_system, gender) keyed by normalized attribute name.
	Attributes map[string]string

	// Categories are the terms assigned directly to the product. Ancestor
	// chains are walked through a TermResolver.
	Categories []CategoryTerm

	// Meta holds custom metadata fields keyed by normalized name (gtin,
	// mpn, brand, video_link, model_3d_link, warning, warning_url,
	// age_restriction, q_and_a, enable_search, enable_checkout).
	Meta map[string]string
}

// Attribute returns the named attribute value, or "" when unset.
func (p *Product) Attribute(name string) string {
	if p.Attributes == nil {
		return ""
	}
	return p.Attributes[name]
}

// MetaValue returns the named custom metadata field, or "" when unset.
func (p *Product) MetaValue(name string) string {
	if p.Meta == nil {
		return ""
	}
	return p.Meta[name]
}

// Source reads published sellable products from the store.
type Source interface {
	// Products returns all published sellable products (simple and
	// variable; variation children are resolved through Product).
	Products(ctx context.Context) ([]*Product, error)

	// Product returns a single product by id, or (nil, nil) when the id
	// does not resolve to a published product.
	Product(ctx context.Context, id int64) (*Product, error)
}

// TermResolver resolves category terms by id for parent-chain walking.
type TermResolver interface {
	CategoryTerm(id int64) (*CategoryTerm, bool)
}
