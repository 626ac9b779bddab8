package models

// UploadResponse is the body returned by POST /upload on success.
type UploadResponse struct {
	PONumber string        `json:"po_number"`
	PODate   string        `json:"po_date"`
	Vendor   VendorSummary `json:"vendor"`
	Items    []LineItem    `json:"items"`
	Totals   OrderTotals   `json:"totals"`
}

// VendorSummary is the reduced vendor record shown to the uploader.
type VendorSummary struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GST     string `json:"gst"`
	Email   string `json:"email"`
}

// OrderTotals groups the monetary totals of an order.
type OrderTotals struct {
	Subtotal   float64 `json:"subtotal"`
	GST        float64 `json:"gst"`
	GrandTotal float64 `json:"grand_total"`
}

// NewUploadResponse builds the client-facing summary of po.
func NewUploadResponse(po *PurchaseOrder) *UploadResponse {
	items := po.Items
	if items == nil {
		items = []LineItem{}
	}
	return &UploadResponse{
		PONumber: po.PONumber,
		PODate:   po.PODate,
		Vendor: VendorSummary{
			Name:    po.Vendor.Name,
			Address: po.Vendor.Address,
			GST:     po.Vendor.GSTNumber,
			Email:   po.Vendor.Email,
		},
		Items: items,
		Totals: OrderTotals{
			Subtotal:   po.Subtotal,
			GST:        po.TotalGST,
			GrandTotal: po.GrandTotal,
		},
	}
}
