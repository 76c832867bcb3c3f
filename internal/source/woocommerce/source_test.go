package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefeed/feed-service/internal/source"
)

func newTestSource(t *testing.T, handler http.Handler) (*WooSource, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := New(ClientConfig{
		BaseURL:           srv.URL,
		ConsumerKey:       "ck_test",
		ConsumerSecret:    "cs_test",
		RequestsPerSecond: 1000,
	}, 100)
	return src, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestProductsListsPublished(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "publish", r.URL.Query().Get("status"))
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		writeJSON(t, w, []map[string]any{
			{
				"id": 10, "name": "Mug", "type": "simple", "sku": "MUG-1",
				"regular_price": "9.99", "stock_status": "instock",
				"stock_quantity": 4,
				"image":          map[string]any{"id": 1, "src": "https://cdn.example.com/mug.jpg"},
				"categories":     []map[string]any{{"id": 7, "name": "Kitchen"}},
			},
			{
				"id": 11, "name": "Shirt", "type": "variable",
				"variations": []int64{21, 22},
			},
			{
				"id": 12, "name": "Gift Card", "type": "external",
			},
		})
	})
	mux.HandleFunc("/wp-json/wc/v3/products/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 7, "name": "Kitchen", "parent": 0},
		})
	})

	src, _ := newTestSource(t, mux)
	products, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2, "external product should be dropped")

	assert.Equal(t, "MUG-1", products[0].SKU)
	assert.Equal(t, source.TypeSimple, products[0].Type)
	assert.Equal(t, "https://cdn.example.com/mug.jpg", products[0].ImageURL)
	require.NotNil(t, products[0].StockQuantity)
	assert.Equal(t, 4, *products[0].StockQuantity)

	assert.Equal(t, source.TypeVariable, products[1].Type)
	assert.Equal(t, []int64{21, 22}, products[1].ChildIDs)

	term, ok := src.CategoryTerm(7)
	require.True(t, ok)
	assert.Equal(t, "Kitchen", term.Name)
}

func TestProductsPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})
	mux.HandleFunc("/wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			batch := make([]map[string]any, 0, 100)
			for i := 0; i < 100; i++ {
				batch = append(batch, map[string]any{"id": i + 1, "name": "P", "type": "simple"})
			}
			writeJSON(t, w, batch)
		default:
			writeJSON(t, w, []map[string]any{{"id": 101, "name": "Last", "type": "simple"}})
		}
	})

	src, _ := newTestSource(t, mux)
	products, err := src.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 101)
}

func TestProductNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products/999", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	src, _ := newTestSource(t, mux)
	p, err := src.Product(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductVariationDetection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products/21", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"id": 21, "name": "Shirt - S", "parent_id": 11,
			"attributes": []map[string]any{{"name": "pa_size", "option": "S"}},
			"meta_data":  []map[string]any{{"key": "_oapfw_gtin", "value": "12345678"}},
		})
	})

	src, _ := newTestSource(t, mux)
	p, err := src.Product(context.Background(), 21)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, source.TypeVariation, p.Type)
	assert.Equal(t, "S", p.Attribute("size"))
	assert.Equal(t, "12345678", p.MetaValue("gtin"))
}

func TestClientRetriesOnServerError(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products/5", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, map[string]any{"id": 5, "name": "Cap", "type": "simple"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	src := New(ClientConfig{
		BaseURL:           srv.URL,
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		RequestsPerSecond: 1000,
		MaxRetries:        3,
	}, 100)
	src.client.retryBackoff = time.Millisecond

	p, err := src.Product(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 3, attempts)
}
