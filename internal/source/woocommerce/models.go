package woocommerce

// Wire types for the subset of the wc/v3 product payload the feed needs.

type wcProduct struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	SKU              string         `json:"sku"`
	Permalink        string         `json:"permalink"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description"`
	RegularPrice     string         `json:"regular_price"`
	SalePrice        string         `json:"sale_price"`
	OnSale           bool           `json:"on_sale"`
	DateOnSaleFrom   string         `json:"date_on_sale_from"`
	DateOnSaleTo     string         `json:"date_on_sale_to"`
	StockStatus      string         `json:"stock_status"`
	StockQuantity    *int           `json:"stock_quantity"`
	Weight           string         `json:"weight"`
	Dimensions       wcDimensions   `json:"dimensions"`
	ParentID         int64          `json:"parent_id"`
	Variations       []int64        `json:"variations"`
	Image            *wcImage       `json:"image"`
	Images           []wcImage      `json:"images"`
	Attributes       []wcAttribute  `json:"attributes"`
	Categories       []wcCategoryRef `json:"categories"`
	MetaData         []wcMeta       `json:"meta_data"`
}

type wcDimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type wcImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// wcAttribute covers both parent products (options) and variations (option).
type wcAttribute struct {
	Name    string   `json:"name"`
	Option  string   `json:"option"`
	Options []string `json:"options"`
}

type wcCategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wcMeta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type wcCategory struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
}
