package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefeed/feed-service/internal/feed"
)

var (
	generator     *feed.Generator
	defaultFormat string
)

// InitFeed wires the feed generator into the handler package
func InitFeed(gen *feed.Generator, format string) {
	generator = gen
	defaultFormat = format
}

// GetFeed serves the full product feed in the requested format
// GET /feed?format=json|csv|tsv|xml
func GetFeed(c *gin.Context) {
	format := c.DefaultQuery("format", defaultFormat)

	rows := generator.BuildFeed(c.Request.Context())
	payload, contentType := feed.Serialize(rows, format)
	feed.ObserveSerialized(format, len(payload))

	c.Data(http.StatusOK, contentType, payload)
}

// ProductPreview represents one mapped row plus its validation issues
type ProductPreview struct {
	Row    feed.Row `json:"row"`
	Issues []string `json:"issues"`
}

// PreviewProductResponse represents the preview for a single product
type PreviewProductResponse struct {
	ProductID int64            `json:"productId"`
	Rows      []ProductPreview `json:"rows"`
}

// PreviewProduct maps a single product to feed rows and reports validation
// issues without affecting the published feed
// GET /feed/products/:id
func PreviewProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	rows := generator.BuildForProduct(c.Request.Context(), id)
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	previews := make([]ProductPreview, 0, len(rows))
	for _, row := range rows {
		previews = append(previews, ProductPreview{
			Row:    row,
			Issues: feed.ValidateRow(row),
		})
	}

	c.JSON(http.StatusOK, PreviewProductResponse{ProductID: id, Rows: previews})
}

// ValidateRowResponse represents the result of validating a feed row
type ValidateRowResponse struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateRow validates a feed row supplied by the caller
// POST /feed/validate
func ValidateRow(c *gin.Context) {
	var row feed.Row
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issues := feed.ValidateRow(row)
	c.JSON(http.StatusOK, ValidateRowResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	})
}
