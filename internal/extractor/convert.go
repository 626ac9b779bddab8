package extractor

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/po-scanner/backend/internal/models"
)

// flatFields is the layout returned by field extraction.
type flatFields struct {
	InvoiceNumber string  `mapstructure:"invoice_number"`
	PONumber      string  `mapstructure:"po_number"`
	PODate        string  `mapstructure:"po_date"`
	VendorName    string  `mapstructure:"vendor_name"`
	VendorAddress string  `mapstructure:"vendor_address"`
	VendorGST     string  `mapstructure:"vendor_gst"`
	VendorEmail   string  `mapstructure:"vendor_email"`
	BuyerName     string  `mapstructure:"buyer_name"`
	BuyerAddress  string  `mapstructure:"buyer_address"`
	BuyerGST      string  `mapstructure:"buyer_gst"`
	ItemName      string  `mapstructure:"item_name"`
	HSNCode       string  `mapstructure:"hsn_code"`
	Quantity      float64 `mapstructure:"quantity"`
	Rate          float64 `mapstructure:"rate"`
	GSTRate       float64 `mapstructure:"gst_rate"`
	Subtotal      float64 `mapstructure:"subtotal"`
	TotalGST      float64 `mapstructure:"total_gst"`
	GrandTotal    float64 `mapstructure:"grand_total"`
}

// unwrap returns data[key] when the service nested its payload under key.
func unwrap(data map[string]any, key string) map[string]any {
	if inner, ok := data[key].(map[string]any); ok {
		return inner
	}
	return data
}

func decodeWeak(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// fromStructured converts a schema extraction payload.
func fromStructured(data map[string]any) (*models.PurchaseOrder, error) {
	po := models.NewPurchaseOrder()
	if err := decodeWeak(unwrap(data, "structured_data"), po); err != nil {
		return nil, fmt.Errorf("converting structured data: %w", err)
	}
	if po.Items == nil {
		po.Items = []models.LineItem{}
	}
	// Only name, address and GST number are requested for the buyer.
	po.Buyer.Phone = ""
	po.Buyer.Email = ""
	return po, nil
}

// fromFields converts a field extraction payload. At most one line item can
// be recovered this way.
func fromFields(data map[string]any) (*models.PurchaseOrder, error) {
	var f flatFields
	if err := decodeWeak(unwrap(data, "extracted_fields"), &f); err != nil {
		return nil, fmt.Errorf("converting extracted fields: %w", err)
	}

	po := models.NewPurchaseOrder()
	po.InvoiceNumber = f.InvoiceNumber
	po.PONumber = f.PONumber
	po.PODate = f.PODate
	po.Vendor = models.VendorDetails{
		Name:      f.VendorName,
		Address:   f.VendorAddress,
		Email:     f.VendorEmail,
		GSTNumber: f.VendorGST,
	}
	po.Buyer = models.VendorDetails{
		Name:      f.BuyerName,
		Address:   f.BuyerAddress,
		GSTNumber: f.BuyerGST,
	}

	if f.ItemName != "" {
		po.Items = append(po.Items, models.LineItem{
			ItemName:  f.ItemName,
			HSNCode:   f.HSNCode,
			Quantity:  f.Quantity,
			UnitPrice: f.Rate,
			GSTRate:   f.GSTRate,
		})
	}

	po.Subtotal = f.Subtotal
	po.TotalGST = f.TotalGST
	po.GrandTotal = f.GrandTotal
	return po, nil
}
