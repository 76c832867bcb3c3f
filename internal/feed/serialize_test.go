package feed

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSerializeEmptyFeed(t *testing.T) {
	tests := []struct {
		format      string
		payload     string
		contentType string
	}{
		{"json", "[]", ContentTypeJSON},
		{"csv", "", ContentTypeCSV},
		{"tsv", "", ContentTypeTSV},
		{"xml", "<products/>", ContentTypeXML},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			payload, contentType := Serialize(nil, tt.format)
			if string(payload) != tt.payload {
				t.Errorf("payload = %q, want %q", payload, tt.payload)
			}
			if contentType != tt.contentType {
				t.Errorf("content type = %q, want %q", contentType, tt.contentType)
			}
		})
	}
}

func TestSerializeUnknownFormatFallsBackToJSON(t *testing.T) {
	for _, format := range []string{"", "yaml", "xlsx", "JSONP"} {
		t.Run(format, func(t *testing.T) {
			_, contentType := Serialize(nil, format)
			if contentType != ContentTypeJSON {
				t.Errorf("content type = %q, want json fallback", contentType)
			}
		})
	}
}

func TestSerializeJSONRoundTrip(t *testing.T) {
	qty := 0
	rows := []Row{
		{
			EnableSearch:        "true",
			EnableCheckout:      "false",
			ID:                  "ABC-1",
			MPN:                 "N/A",
			Title:               "Čokolada & Tee",
			Description:         "2-in-1, 100% cotton",
			Link:                "https://shop.example/product/abc-1",
			ImageLink:           "https://shop.example/img/1.jpg",
			AdditionalImageLink: []string{"https://shop.example/img/2.jpg", "https://shop.example/img/3.jpg"},
			Price:               "19.99 USD",
			Availability:        AvailabilityInStock,
			InventoryQuantity:   &qty,
		},
	}

	raw, _ := Serialize(rows, "json")
	payload := string(raw)

	// Slashes and non-ASCII text stay literal.
	if !strings.Contains(payload, "https://shop.example/product/abc-1") {
		t.Errorf("payload escapes slashes: %s", payload)
	}
	if !strings.Contains(payload, "Čokolada") {
		t.Errorf("payload escapes non-ASCII text: %s", payload)
	}
	if !strings.Contains(payload, `"inventory_quantity":0`) {
		t.Errorf("payload drops zero inventory: %s", payload)
	}
	if strings.Contains(payload, "sale_price") {
		t.Errorf("payload contains absent field: %s", payload)
	}

	var decoded []Row
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("round-trip unmarshal: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("decoded %d rows, want 1", len(decoded))
	}
	if decoded[0].ID != rows[0].ID || decoded[0].Title != rows[0].Title {
		t.Errorf("round-trip mismatch: %+v", decoded[0])
	}
	if len(decoded[0].AdditionalImageLink) != 2 {
		t.Errorf("list-valued field lost: %v", decoded[0].AdditionalImageLink)
	}
}

func TestSerializeCSV(t *testing.T) {
	rows := []Row{
		{
			ID:                  "A-1",
			Title:               `Tee, "Large"`,
			Price:               "10.00 USD",
			AdditionalImageLink: []string{"a.jpg", "b.jpg"},
		},
		{
			ID:    "A-2",
			Price: "12.00 USD",
		},
	}

	raw, _ := Serialize(rows, "csv")
	payload := string(raw)
	lines := strings.Split(strings.TrimRight(payload, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows: %q", len(lines), payload)
	}

	// Header comes from the first row's present fields, in canonical order.
	if lines[0] != "id,title,additional_image_link,price" {
		t.Errorf("header = %q", lines[0])
	}
	// Quotes escape, lists join with commas inside one field.
	if lines[1] != `A-1,"Tee, ""Large""","a.jpg,b.jpg",10.00 USD` {
		t.Errorf("row 1 = %q", lines[1])
	}
	// The second row keeps the first row's key order, blanks included.
	if lines[2] != "A-2,,,12.00 USD" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestSerializeTSV(t *testing.T) {
	rows := []Row{
		{ID: "A-1", Title: "Tee", AdditionalImageLink: []string{"a.jpg", "b.jpg"}},
	}

	raw, _ := Serialize(rows, "tsv")
	payload := string(raw)
	lines := strings.Split(strings.TrimRight(payload, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), payload)
	}
	if lines[0] != "id\ttitle\tadditional_image_link" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "A-1\tTee\ta.jpg,b.jpg" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestSerializeXML(t *testing.T) {
	rows := []Row{
		{ID: "A<1", Title: `Tom & "Jerry"`, AdditionalImageLink: []string{"a.jpg", "b.jpg"}},
	}

	raw, _ := Serialize(rows, "xml")
	payload := string(raw)
	want := `<products><product><id>A&lt;1</id><title>Tom &amp; &quot;Jerry&quot;</title><additional_image_link>a.jpg,b.jpg</additional_image_link></product></products>`
	if payload != want {
		t.Errorf("xml payload = %q, want %q", payload, want)
	}
}

func TestSerializeFormatCaseInsensitive(t *testing.T) {
	_, contentType := Serialize(nil, "CSV")
	if contentType != ContentTypeCSV {
		t.Errorf("content type = %q, want %q", contentType, ContentTypeCSV)
	}
}
