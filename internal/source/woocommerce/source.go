package woocommerce

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/storefeed/feed-service/internal/source"
)

const wcDateLayout = "2006-01-02T15:04:05"

// WooSource adapts a WooCommerce store to the source.Source interface.
type WooSource struct {
	client   *Client
	pageSize int

	mu    sync.RWMutex
	terms map[int64]*source.CategoryTerm
}

// New creates a WooCommerce-backed product source
func New(cfg ClientConfig, pageSize int) *WooSource {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &WooSource{
		client:   NewClient(cfg),
		pageSize: pageSize,
		terms:    map[int64]*source.CategoryTerm{},
	}
}

// Products lists all published products from the store, paginating until the
// store returns a short page. The category term cache is refreshed first so
// category paths resolve against the current taxonomy.
func (w *WooSource) Products(ctx context.Context) ([]*source.Product, error) {
	w.loadCategories(ctx)

	var products []*source.Product
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("status", "publish")
		query.Set("per_page", strconv.Itoa(w.pageSize))
		query.Set("page", strconv.Itoa(page))

		var batch []wcProduct
		if err := w.client.get(ctx, "/products", query, &batch); err != nil {
			return nil, fmt.Errorf("listing products page %d: %w", page, err)
		}
		for i := range batch {
			p := convertProduct(&batch[i])
			if p == nil {
				continue
			}
			products = append(products, p)
		}
		if len(batch) < w.pageSize {
			break
		}
	}
	return products, nil
}

// Product fetches a single product or variation by ID. Returns (nil, nil) when
// the store does not know the ID, matching the contract for unresolvable
// references.
func (w *WooSource) Product(ctx context.Context, id int64) (*source.Product, error) {
	var raw wcProduct
	err := w.client.get(ctx, "/products/"+strconv.FormatInt(id, 10), nil, &raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return convertProduct(&raw), nil
}

// CategoryTerm resolves a category term ID against the cached taxonomy.
func (w *WooSource) CategoryTerm(id int64) (*source.CategoryTerm, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	term, ok := w.terms[id]
	return term, ok
}

// loadCategories refreshes the category term cache. Best effort: a failure
// leaves the previous cache in place, so category paths degrade rather than
// aborting the feed build.
func (w *WooSource) loadCategories(ctx context.Context) {
	fresh := map[int64]*source.CategoryTerm{}
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(w.pageSize))
		query.Set("page", strconv.Itoa(page))

		var batch []wcCategory
		if err := w.client.get(ctx, "/products/categories", query, &batch); err != nil {
			log.Warn().Err(err).Msg("Failed to refresh category terms, keeping previous cache")
			return
		}
		for _, c := range batch {
			fresh[c.ID] = &source.CategoryTerm{ID: c.ID, Name: c.Name, ParentID: c.Parent}
		}
		if len(batch) < w.pageSize {
			break
		}
	}

	w.mu.Lock()
	w.terms = fresh
	w.mu.Unlock()
}

// convertProduct maps a wc/v3 payload to the feed's source model. Products of
// types the feed cannot map (grouped, external) are dropped.
func convertProduct(raw *wcProduct) *source.Product {
	var typ string
	switch raw.Type {
	case "simple", "":
		typ = source.TypeSimple
		if raw.ParentID != 0 {
			// wc/v3 reports variations fetched directly with an empty type
			typ = source.TypeVariation
		}
	case "variable":
		typ = source.TypeVariable
	case "variation":
		typ = source.TypeVariation
	default:
		return nil
	}

	p := &source.Product{
		ID:               raw.ID,
		Type:             typ,
		ParentID:         raw.ParentID,
		ChildIDs:         raw.Variations,
		SKU:              raw.SKU,
		Name:             raw.Name,
		Description:      raw.Description,
		ShortDescription: raw.ShortDescription,
		Permalink:        raw.Permalink,
		StockStatus:      raw.StockStatus,
		StockQuantity:    raw.StockQuantity,
		RegularPrice:     raw.RegularPrice,
		SalePrice:        raw.SalePrice,
		SaleStart:        parseWCDate(raw.DateOnSaleFrom),
		SaleEnd:          parseWCDate(raw.DateOnSaleTo),
		Weight:           raw.Weight,
		Length:           raw.Dimensions.Length,
		Width:            raw.Dimensions.Width,
		Height:           raw.Dimensions.Height,
		Attributes:       convertAttributes(raw.Attributes),
		Categories:       convertCategories(raw.Categories),
		Meta:             convertMeta(raw.MetaData),
	}

	if raw.Image != nil && raw.Image.Src != "" {
		p.ImageURL = raw.Image.Src
	}
	for i, img := range raw.Images {
		if img.Src == "" {
			continue
		}
		if i == 0 && p.ImageURL == "" {
			p.ImageURL = img.Src
			continue
		}
		p.GalleryURLs = append(p.GalleryURLs, img.Src)
	}
	return p
}

func convertAttributes(attrs []wcAttribute) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		value := a.Option
		if value == "" && len(a.Options) > 0 {
			value = strings.Join(a.Options, ", ")
		}
		if value == "" {
			continue
		}
		out[attrKey(a.Name)] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func convertCategories(refs []wcCategoryRef) []source.CategoryTerm {
	if len(refs) == 0 {
		return nil
	}
	out := make([]source.CategoryTerm, 0, len(refs))
	for _, ref := range refs {
		out = append(out, source.CategoryTerm{ID: ref.ID, Name: ref.Name})
	}
	return out
}

func convertMeta(meta []wcMeta) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for _, m := range meta {
		s, ok := m.Value.(string)
		if !ok || s == "" {
			continue
		}
		out[metaKey(m.Key)] = s
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// attrKey normalizes a WooCommerce attribute name to a lookup key: lowercase,
// spaces to underscores, taxonomy "pa_" prefix stripped.
func attrKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.TrimPrefix(key, "pa_")
}

// metaKey strips the hidden-meta underscore and the plugin's own prefix so
// feed overrides can be looked up by bare field name.
func metaKey(key string) string {
	key = strings.TrimPrefix(key, "_")
	return strings.TrimPrefix(key, "oapfw_")
}

func parseWCDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(wcDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
