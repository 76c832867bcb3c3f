package feed

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	gtinPattern   = regexp.MustCompile(`^\d{8,14}$`)
	leadingNumber = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// ValidateRow checks a row against the feed schema constraints and returns
// human-readable issues; an empty slice means the row passes. Validation is
// advisory: it never mutates the row and never gates feed output, so it also
// accepts raw externally supplied rows the mapper has not normalized.
func ValidateRow(r Row) []string {
	issues := []string{}

	required := []struct {
		value, msg string
	}{
		{r.ID, "Missing id"},
		{r.Title, "Missing title"},
		{r.Description, "Missing description"},
		{r.Link, "Missing link"},
		{r.ImageLink, "Missing image_link"},
		{r.Price, "Missing price"},
		{r.Availability, "Missing availability"},
	}
	for _, req := range required {
		if req.value == "" {
			issues = append(issues, req.msg)
		}
	}

	if r.GTIN != "" && !gtinPattern.MatchString(r.GTIN) {
		issues = append(issues, "gtin invalid (must be 8–14 digits)")
	}
	if r.GTIN == "" && r.MPN == "" {
		issues = append(issues, "mpn required if gtin missing")
	}

	if r.SalePrice != "" && r.Price != "" {
		if amount(r.SalePrice) > amount(r.Price) {
			issues = append(issues, "sale_price must be <= price")
		}
	}

	if r.SalePriceEffectiveDate != "" && strings.Contains(r.SalePriceEffectiveDate, "/") {
		parts := strings.SplitN(r.SalePriceEffectiveDate, "/", 2)
		start := strings.TrimSpace(parts[0])
		end := strings.TrimSpace(parts[1])
		// ISO dates order lexically.
		if start != "" && end != "" && start > end {
			issues = append(issues, "sale window start must precede end")
		}
	}

	// The mapper already corrects this dependency; re-check raw rows.
	if r.EnableCheckout == "true" && r.EnableSearch != "true" {
		issues = append(issues, "enable_checkout requires enable_search=true")
	}

	if r.Availability != "" {
		switch r.Availability {
		case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityPreorder:
		default:
			issues = append(issues, "availability must be in_stock|out_of_stock|preorder")
		}
		if r.Availability == AvailabilityPreorder && r.AvailabilityDate == "" {
			issues = append(issues, "availability_date required for preorder")
		}
	}

	return issues
}

// amount extracts the leading numeric portion of a price like "12.34 USD".
func amount(s string) float64 {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
