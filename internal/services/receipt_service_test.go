package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"easyrent/internal/domain/models"
)

func sampleBooking() models.Booking {
	return models.Booking{
		ID:            42,
		TransactionID: "TXN123456",
		VehicleName:   "Swift Dzire",
		Pickup:        models.LocationPoint{Lat: 19.07, Lng: 72.87, Label: "Andheri, Mumbai"},
		Drop:          models.LocationPoint{Lat: 18.52, Lng: 73.85},
		DateFrom:      "2024-05-01",
		DateTo:        "2024-05-02",
		Price:         2363,
		Driver:        models.Driver{Name: "Asha Rao", Contact: "9876543210", Age: 30, License: "MH012020"},
	}
}

func TestReceiptRender(t *testing.T) {
	b := sampleBooking()
	pdf, filename, err := ReceiptService{}.Render(b)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if filename != "BookingReceipt_42.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if b != sampleBooking() {
		t.Fatalf("booking mutated")
	}
}

func TestReceiptRenderSkipsBrokenLogo(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("write logo: %v", err)
	}
	for _, path := range []string{broken, filepath.Join(dir, "missing.png")} {
		pdf, _, err := ReceiptService{LogoPath: path}.Render(sampleBooking())
		if err != nil {
			t.Fatalf("%s: render failed: %v", path, err)
		}
		if len(pdf) == 0 {
			t.Fatalf("%s: empty receipt", path)
		}
	}
}

func TestReceiptRowsFallbacks(t *testing.T) {
	rows := receiptRows(models.Booking{ID: 1, Drop: models.LocationPoint{Lat: 1, Lng: 2}})
	want := map[string]string{
		"Transaction ID": "N/A",
		"To":             "1.00000, 2.00000",
		"Total Price":    "Rs. 0",
		"Distance":       "0.0 km",
	}
	for _, r := range rows {
		if w, ok := want[r[0]]; ok && r[1] != w {
			t.Fatalf("%s = %q, want %q", r[0], r[1], w)
		}
	}
}
