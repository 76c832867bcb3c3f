package feed

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/storefeed/feed-service/internal/source"
)

// Limits imposed by the target feed schema, counted in characters.
const (
	maxTitleLen       = 150
	maxDescriptionLen = 5000
)

// mpnSentinel is emitted when neither a GTIN nor an MPN is known.
const mpnSentinel = "N/A"

// Settings is the immutable per-build configuration snapshot applied
// uniformly to every row unless a product carries an override.
type Settings struct {
	Currency      string
	WeightUnit    string
	DimensionUnit string

	// Defaults for the string-typed flags, already normalized to
	// "true"/"false".
	EnableSearchDefault   string
	EnableCheckoutDefault string

	SellerName   string
	SellerURL    string
	PrivacyURL   string
	TOSURL       string
	ReturnsURL   string
	ReturnWindow int
}

// RowHook post-processes a mapped row. Hooks run in registration order after
// the core mapping and normalization; each receives the row produced so far
// and returns the row to carry forward.
type RowHook func(row Row, product, parent *source.Product) Row

// Mapper turns one sellable unit into a canonical feed row. Mapping never
// fails: missing data degrades to omitted fields.
type Mapper struct {
	terms source.TermResolver
	hooks []RowHook
}

// NewMapper creates a Mapper that walks category ancestor chains through the
// given resolver. A nil resolver limits category paths to the assigned term.
func NewMapper(terms source.TermResolver) *Mapper {
	return &Mapper{terms: terms}
}

// OnRow registers a post-map hook.
func (m *Mapper) OnRow(h RowHook) {
	m.hooks = append(m.hooks, h)
}

// Map builds the canonical row for a product. parent is non-nil only for
// variations and supplies media and attribute fallbacks plus the item group
// back-reference.
func (m *Mapper) Map(p, parent *source.Product, s Settings) Row {
	sku := p.SKU
	if sku == "" {
		sku = "wc-" + strconv.FormatInt(p.ID, 10)
	}

	imageURL := p.ImageURL
	if imageURL == "" && parent != nil {
		imageURL = parent.ImageURL
	}
	gallery := p.GalleryURLs
	if len(gallery) == 0 && parent != nil {
		gallery = parent.GalleryURLs
	}

	// brand: own attribute, parent attribute, then meta fallback.
	brand := p.Attribute("brand")
	if brand == "" && parent != nil {
		brand = parent.Attribute("brand")
	}
	if brand == "" {
		brand = p.MetaValue("brand")
	}

	gtin := p.MetaValue("gtin")
	mpn := ""
	if gtin == "" {
		mpn = p.MetaValue("mpn")
	}

	description := p.Description
	if description == "" {
		description = p.ShortDescription
	}

	qty := 0
	if p.StockQuantity != nil {
		qty = *p.StockQuantity
	}

	row := Row{
		EnableSearch:   s.EnableSearchDefault,
		EnableCheckout: s.EnableCheckoutDefault,

		ID:          sku,
		GTIN:        gtin,
		MPN:         mpn,
		Title:       stripTags(p.Name),
		Description: stripTags(description),
		Link:        p.Permalink,

		ProductCategory: m.categoryPath(p),
		Brand:           brand,
		Material:        p.Attribute("material"),
		Weight:          withUnit(p.Weight, s.WeightUnit),
		Length:          withUnit(p.Length, s.DimensionUnit),
		Width:           withUnit(p.Width, s.DimensionUnit),
		Height:          withUnit(p.Height, s.DimensionUnit),

		ImageLink:           imageURL,
		AdditionalImageLink: gallery,
		VideoLink:           p.MetaValue("video_link"),
		Model3DLink:         p.MetaValue("model_3d_link"),

		Price:     withUnit(p.RegularPrice, s.Currency),
		SalePrice: withUnit(p.SalePrice, s.Currency),

		Availability:      mapAvailability(p.StockStatus),
		InventoryQuantity: &qty,

		Color:      p.Attribute("color"),
		Size:       p.Attribute("size"),
		SizeSystem: p.Attribute("size_system"),
		Gender:     p.Attribute("gender"),

		SellerName:          s.SellerName,
		SellerURL:           s.SellerURL,
		SellerPrivacyPolicy: s.PrivacyURL,
		SellerTOS:           s.TOSURL,
		ReturnPolicy:        s.ReturnsURL,
		ReturnWindow:        s.ReturnWindow,

		Warning:    stripTags(p.MetaValue("warning")),
		WarningURL: p.MetaValue("warning_url"),
		QAndA:      stripTags(p.MetaValue("q_and_a")),
	}

	// Sale window only when a sale price and both dates are known.
	if p.SalePrice != "" && p.SaleStart != nil && p.SaleEnd != nil {
		row.SalePriceEffectiveDate = p.SaleStart.Format("2006-01-02") + " / " + p.SaleEnd.Format("2006-01-02")
	}

	if n, err := strconv.Atoi(p.MetaValue("age_restriction")); err == nil && n > 0 {
		row.AgeRestriction = n
	}

	if parent != nil {
		groupID := parent.SKU
		if groupID == "" {
			groupID = "wc-" + strconv.FormatInt(parent.ID, 10)
		}
		row.ItemGroupID = groupID
		row.ItemGroupTitle = stripTags(parent.Name)
	}

	// Per-product flag overrides beat the settings defaults.
	if v := p.MetaValue("enable_search"); v != "" {
		row.EnableSearch = BoolString(v)
	}
	if v := p.MetaValue("enable_checkout"); v != "" {
		row.EnableCheckout = BoolString(v)
	}

	row = normalizeRow(row)

	for _, h := range m.hooks {
		row = h(row, p, parent)
	}
	return row
}

// normalizeRow applies the row-level invariants: strictly string-typed flags,
// the checkout-requires-search correction, title/description character
// limits, GTIN/MPN exclusivity and the MPN sentinel.
func normalizeRow(r Row) Row {
	if r.EnableSearch == "" {
		r.EnableSearch = "true"
	}
	if strings.EqualFold(r.EnableSearch, "true") {
		r.EnableSearch = "true"
	} else {
		r.EnableSearch = "false"
	}
	if strings.EqualFold(r.EnableCheckout, "true") {
		r.EnableCheckout = "true"
	} else {
		r.EnableCheckout = "false"
	}
	// Checkout without search is corrected, not reported.
	if r.EnableCheckout == "true" && r.EnableSearch != "true" {
		r.EnableCheckout = "false"
	}

	r.Title = truncate(r.Title, maxTitleLen)
	r.Description = truncate(r.Description, maxDescriptionLen)

	if r.GTIN != "" {
		r.MPN = ""
	} else if r.MPN == "" {
		r.MPN = mpnSentinel
	}
	return r
}

// categoryPath picks the deepest assigned term (later term wins on equal
// depth) and renders its ancestor chain as "Top > Mid > Leaf".
func (m *Mapper) categoryPath(p *source.Product) string {
	if len(p.Categories) == 0 {
		return ""
	}
	var chosen *source.CategoryTerm
	chosenDepth := -1
	for i := range p.Categories {
		// Assigned terms may carry only id and name; the resolver supplies
		// the parent link.
		t := m.canonicalTerm(&p.Categories[i])
		if d := m.termDepth(t); d >= chosenDepth {
			chosen, chosenDepth = t, d
		}
	}

	path := []string{chosen.Name}
	cur := chosen
	for cur.ParentID != 0 {
		parent, ok := m.resolveTerm(cur.ParentID)
		if !ok {
			break
		}
		path = append([]string{parent.Name}, path...)
		cur = parent
	}
	return strings.Join(path, " > ")
}

func (m *Mapper) canonicalTerm(t *source.CategoryTerm) *source.CategoryTerm {
	if resolved, ok := m.resolveTerm(t.ID); ok {
		return resolved
	}
	return t
}

func (m *Mapper) termDepth(t *source.CategoryTerm) int {
	depth := 0
	cur := t
	for cur.ParentID != 0 {
		parent, ok := m.resolveTerm(cur.ParentID)
		if !ok {
			break
		}
		depth++
		cur = parent
	}
	return depth
}

func (m *Mapper) resolveTerm(id int64) (*source.CategoryTerm, bool) {
	if m.terms == nil {
		return nil, false
	}
	return m.terms.CategoryTerm(id)
}

func mapAvailability(stockStatus string) string {
	switch stockStatus {
	case source.StockInStock:
		return AvailabilityInStock
	case source.StockOutOfStock:
		return AvailabilityOutOfStock
	default:
		return AvailabilityPreorder
	}
}

// withUnit renders "<value> <unit>" for prices and measurements, or "" when
// the value is unset.
func withUnit(value, unit string) string {
	if value == "" {
		return ""
	}
	return value + " " + unit
}

// truncate cuts s to at most max characters, not bytes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags removes HTML tags and collapses the surrounding whitespace,
// mirroring how the store renders plain-text excerpts.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " "))
}
