// Package feed contains the mapping-and-validation engine: the canonical row
// model, the product-to-row mapper, the advisory row validator, the
// multi-format serializer and the feed generator that orchestrates them.
package feed

import (
	"strconv"
	"strings"
)

// Availability is a closed enum in the target feed schema.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityPreorder   = "preorder"
)

// Row is one canonical product record in the output schema, which
// types enable_search and enable_checkout as the string literals
// "true"/"false", not booleans. Empty fields are omitted from every encoding
// (sparse rows); inventory_quantity keeps an explicit zero.
//
// Struct order is the canonical field order and drives CSV/TSV headers and
// XML children.
type Row struct {
	EnableSearch   string `json:"enable_search,omitempty"`
	EnableCheckout string `json:"enable_checkout,omitempty"`

	ID   string `json:"id,omitempty"`
	GTIN string `json:"gtin,omitempty"`
	MPN  string `json:"mpn,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`

	ProductCategory string `json:"product_category,omitempty"`
	Brand           string `json:"brand,omitempty"`
	Material        string `json:"material,omitempty"`
	Weight          string `json:"weight,omitempty"`
	Length          string `json:"length,omitempty"`
	Width           string `json:"width,omitempty"`
	Height          string `json:"height,omitempty"`

	ImageLink           string   `json:"image_link,omitempty"`
	AdditionalImageLink []string `json:"additional_image_link,omitempty"`
	VideoLink           string   `json:"video_link,omitempty"`
	Model3DLink         string   `json:"model_3d_link,omitempty"`

	Price                  string `json:"price,omitempty"`
	SalePrice              string `json:"sale_price,omitempty"`
	SalePriceEffectiveDate string `json:"sale_price_effective_date,omitempty"`

	Availability     string `json:"availability,omitempty"`
	AvailabilityDate string `json:"availability_date,omitempty"`
	// InventoryQuantity is a pointer so a stock level of zero survives the
	// sparse encoding.
	InventoryQuantity *int `json:"inventory_quantity,omitempty"`

	ItemGroupID    string `json:"item_group_id,omitempty"`
	ItemGroupTitle string `json:"item_group_title,omitempty"`
	Color          string `json:"color,omitempty"`
	Size           string `json:"size,omitempty"`
	SizeSystem     string `json:"size_system,omitempty"`
	Gender         string `json:"gender,omitempty"`

	SellerName          string `json:"seller_name,omitempty"`
	SellerURL           string `json:"seller_url,omitempty"`
	SellerPrivacyPolicy string `json:"seller_privacy_policy,omitempty"`
	SellerTOS           string `json:"seller_tos,omitempty"`
	ReturnPolicy        string `json:"return_policy,omitempty"`
	ReturnWindow        int    `json:"return_window,omitempty"`

	Warning        string `json:"warning,omitempty"`
	WarningURL     string `json:"warning_url,omitempty"`
	AgeRestriction int    `json:"age_restriction,omitempty"`
	QAndA          string `json:"q_and_a,omitempty"`
}

// rowField is one entry of the canonical field table used by the flat
// encodings. value returns the field rendered as a single string (lists are
// joined with ",") and whether the field is present on the row.
type rowField struct {
	name  string
	value func(r *Row) (string, bool)
}

func strField(name string, get func(r *Row) string) rowField {
	return rowField{name, func(r *Row) (string, bool) {
		v := get(r)
		return v, v != ""
	}}
}

func intField(name string, get func(r *Row) int) rowField {
	return rowField{name, func(r *Row) (string, bool) {
		v := get(r)
		if v == 0 {
			return "", false
		}
		return strconv.Itoa(v), true
	}}
}

var rowFields = []rowField{
	strField("enable_search", func(r *Row) string { return r.EnableSearch }),
	strField("enable_checkout", func(r *Row) string { return r.EnableCheckout }),
	strField("id", func(r *Row) string { return r.ID }),
	strField("gtin", func(r *Row) string { return r.GTIN }),
	strField("mpn", func(r *Row) string { return r.MPN }),
	strField("title", func(r *Row) string { return r.Title }),
	strField("description", func(r *Row) string { return r.Description }),
	strField("link", func(r *Row) string { return r.Link }),
	strField("product_category", func(r *Row) string { return r.ProductCategory }),
	strField("brand", func(r *Row) string { return r.Brand }),
	strField("material", func(r *Row) string { return r.Material }),
	strField("weight", func(r *Row) string { return r.Weight }),
	strField("length", func(r *Row) string { return r.Length }),
	strField("width", func(r *Row) string { return r.Width }),
	strField("height", func(r *Row) string { return r.Height }),
	strField("image_link", func(r *Row) string { return r.ImageLink }),
	{"additional_image_link", func(r *Row) (string, bool) {
		if len(r.AdditionalImageLink) == 0 {
			return "", false
		}
		return strings.Join(r.AdditionalImageLink, ","), true
	}},
	strField("video_link", func(r *Row) string { return r.VideoLink }),
	strField("model_3d_link", func(r *Row) string { return r.Model3DLink }),
	strField("price", func(r *Row) string { return r.Price }),
	strField("sale_price", func(r *Row) string { return r.SalePrice }),
	strField("sale_price_effective_date", func(r *Row) string { return r.SalePriceEffectiveDate }),
	strField("availability", func(r *Row) string { return r.Availability }),
	strField("availability_date", func(r *Row) string { return r.AvailabilityDate }),
	{"inventory_quantity", func(r *Row) (string, bool) {
		if r.InventoryQuantity == nil {
			return "", false
		}
		return strconv.Itoa(*r.InventoryQuantity), true
	}},
	strField("item_group_id", func(r *Row) string { return r.ItemGroupID }),
	strField("item_group_title", func(r *Row) string { return r.ItemGroupTitle }),
	strField("color", func(r *Row) string { return r.Color }),
	strField("size", func(r *Row) string { return r.Size }),
	strField("size_system", func(r *Row) string { return r.SizeSystem }),
	strField("gender", func(r *Row) string { return r.Gender }),
	strField("seller_name", func(r *Row) string { return r.SellerName }),
	strField("seller_url", func(r *Row) string { return r.SellerURL }),
	strField("seller_privacy_policy", func(r *Row) string { return r.SellerPrivacyPolicy }),
	strField("seller_tos", func(r *Row) string { return r.SellerTOS }),
	strField("return_policy", func(r *Row) string { return r.ReturnPolicy }),
	intField("return_window", func(r *Row) int { return r.ReturnWindow }),
	strField("warning", func(r *Row) string { return r.Warning }),
	strField("warning_url", func(r *Row) string { return r.WarningURL }),
	intField("age_restriction", func(r *Row) int { return r.AgeRestriction }),
	strField("q_and_a", func(r *Row) string { return r.QAndA }),
}

var rowFieldIndex = func() map[string]int {
	idx := make(map[string]int, len(rowFields))
	for i, f := range rowFields {
		idx[f.name] = i
	}
	return idx
}()

// Fields returns the names of the fields present on the row, in canonical
// order.
func (r *Row) Fields() []string {
	names := make([]string, 0, len(rowFields))
	for _, f := range rowFields {
		if _, ok := f.value(r); ok {
			names = append(names, f.name)
		}
	}
	return names
}

// Field returns the named field rendered as a single string, or ("", false)
// when the field is absent or unknown.
func (r *Row) Field(name string) (string, bool) {
	i, ok := rowFieldIndex[name]
	if !ok {
		return "", false
	}
	return rowFields[i].value(r)
}

// BoolString normalizes a free-form truthy value to the feed's string-typed
// booleans: "true", "1" and "yes" (any case) map to "true", everything else
// to "false".
func BoolString(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return "true"
	}
	return "false"
}
