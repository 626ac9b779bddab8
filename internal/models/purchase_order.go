package models

// VendorDetails identifies a party on a purchase order. The same shape is used
// for the buyer.
type VendorDetails struct {
	Name      string `json:"name" mapstructure:"name"`
	Address   string `json:"address" mapstructure:"address"`
	Phone     string `json:"phone" mapstructure:"phone"`
	Email     string `json:"email" mapstructure:"email"`
	GSTNumber string `json:"gst_number" mapstructure:"gst_number"`
}

// LineItem is a single row of a purchase order.
type LineItem struct {
	ItemName    string  `json:"item_name" mapstructure:"item_name"`
	HSNCode     string  `json:"hsn_code" mapstructure:"hsn_code"`
	Quantity    float64 `json:"quantity" mapstructure:"quantity"`
	UnitPrice   float64 `json:"unit_price" mapstructure:"unit_price"`
	GSTRate     float64 `json:"gst_rate" mapstructure:"gst_rate"`
	TotalAmount float64 `json:"total_amount" mapstructure:"total_amount"`
}

// PurchaseOrder is the structured result of scanning one document.
type PurchaseOrder struct {
	InvoiceNumber string        `json:"invoice_number" mapstructure:"invoice_number"`
	PONumber      string        `json:"po_number" mapstructure:"po_number"`
	PODate        string        `json:"po_date" mapstructure:"po_date"`
	Vendor        VendorDetails `json:"vendor" mapstructure:"vendor"`
	Buyer         VendorDetails `json:"buyer" mapstructure:"buyer"`
	Items         []LineItem    `json:"items" mapstructure:"line_items"`
	Subtotal      float64       `json:"subtotal" mapstructure:"subtotal"`
	TotalGST      float64       `json:"total_gst" mapstructure:"total_gst"`
	GrandTotal    float64       `json:"grand_total" mapstructure:"grand_total"`
}

// NewPurchaseOrder returns an order with a non-nil item list.
func NewPurchaseOrder() *PurchaseOrder {
	return &PurchaseOrder{Items: []LineItem{}}
}
