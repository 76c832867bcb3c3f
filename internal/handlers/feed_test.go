package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefeed/feed-service/internal/feed"
	"github.com/storefeed/feed-service/internal/source"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	qty := 3
	mem := source.NewMemory([]*source.Product{
		{
			ID:            10,
			Type:          source.TypeSimple,
			SKU:           "MUG-1",
			Name:          "Mug",
			Permalink:     "https://shop.example.com/mug",
			StockStatus:   source.StockInStock,
			StockQuantity: &qty,
			RegularPrice:  "9.99",
			ImageURL:      "https://cdn.example.com/mug.jpg",
		},
	}, nil)

	settings := feed.Settings{
		Currency:              "USD",
		WeightUnit:            "kg",
		DimensionUnit:         "cm",
		EnableSearchDefault:   "true",
		EnableCheckoutDefault: "false",
	}
	gen := feed.NewGenerator(mem, feed.NewMapper(mem), settings, zerolog.Nop())
	InitFeed(gen, "json")
	InitHealth(mem)

	r := gin.New()
	r.GET("/health", HealthCheck)
	r.GET("/feed", GetFeed)
	r.GET("/feed/products/:id", PreviewProduct)
	r.POST("/feed/validate", ValidateRow)
	return r
}

func TestGetFeedDefaultsToJSON(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var rows []feed.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "MUG-1", rows[0].ID)
	assert.Equal(t, "9.99 USD", rows[0].Price)
}

func TestGetFeedFormatQuery(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed?format=csv", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "enable_search,"))
}

func TestPreviewProduct(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed/products/10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp PreviewProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.ProductID)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "MUG-1", resp.Rows[0].Row.ID)
	// No gtin and the sentinel mpn, so validation should flag nothing
	assert.Empty(t, resp.Rows[0].Issues)
}

func TestPreviewProductNotFound(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed/products/999", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewProductInvalidID(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed/products/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateRowHandler(t *testing.T) {
	r := setupRouter(t)

	body := map[string]any{
		"id":            "A-1",
		"title":         "Tee",
		"link":          "https://shop.example.com/tee",
		"image_link":    "https://cdn.example.com/tee.jpg",
		"price":         "10.00 USD",
		"availability":  "in_stock",
		"enable_search": "true",
		"gtin":          "123",
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/validate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateRowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Issues, "gtin invalid (must be 8–14 digits)")
}

func TestValidateRowBadJSON(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/validate", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "reachable", resp.Source)
}
