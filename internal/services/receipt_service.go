package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/phpdave11/gofpdf"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/utils"
)

// ReceiptService renders booking receipts as PDF.
type ReceiptService struct {
	Bookings BookingService
	LogoPath string
}

// Receipt loads the caller's booking and renders it.
func (s ReceiptService) Receipt(ctx context.Context, id domain.Identity, bookingID int64) ([]byte, string, error) {
	b, err := s.Bookings.GetBooking(ctx, id, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "receipt", "generate", "booking_id", bookingID)
	return s.Render(b)
}

// Render builds the receipt for b. A logo that cannot be loaded is left out.
func (s ReceiptService) Render(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()

	// header band
	pdf.SetFillColor(40, 167, 69)
	pdf.Rect(0, 0, pageW, 25, "F")
	s.drawLogo(pdf)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(0, 8)
	pdf.CellFormat(pageW, 10, "EasyRent Vehicles", "", 0, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(0, 30)
	pdf.CellFormat(pageW, 8, "Booking Receipt", "", 1, "C", false, 0, "")

	const left, keyW, valW, rowH = 14.0, 50.0, 132.0, 9.0
	pdf.SetXY(left, 45)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(40, 167, 69)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(keyW, rowH, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valW, rowH, "Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range receiptRows(b) {
		pdf.SetX(left)
		pdf.CellFormat(keyW, rowH, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(valW, rowH, tr(truncate(row[1], 70)), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(pageW-2*left, 6, "Thank you for booking with EasyRent! We wish you a safe ride.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("BookingReceipt_%d.pdf", b.ID), nil
}

func receiptRows(b models.Booking) [][2]string {
	return [][2]string{
		{"Booking ID", fmt.Sprintf("%d", b.ID)},
		{"Transaction ID", safe(b.TransactionID, "N/A")},
		{"Vehicle", safe(b.VehicleName, "N/A")},
		{"From", b.Pickup.DisplayLabel()},
		{"To", b.Drop.DisplayLabel()},
		{"From Date", safe(b.DateFrom, "N/A")},
		{"To Date", safe(b.DateTo, "N/A")},
		{"Driver Name", safe(b.Driver.Name, "N/A")},
		{"Driver Contact", safe(b.Driver.Contact, "N/A")},
		{"Distance", utils.FormatKm(b.DistanceKm)},
		{"Total Price", utils.FormatRupees(b.Price)},
	}
}

func (s ReceiptService) drawLogo(pdf *gofpdf.Fpdf) {
	if strings.TrimSpace(s.LogoPath) == "" {
		return
	}
	if _, err := os.Stat(s.LogoPath); err != nil {
		utils.LogEvent("", "receipt", "logo", "path", s.LogoPath, "skipped: "+err.Error())
		return
	}
	pdf.ImageOptions(s.LogoPath, 8, 4, 0, 17, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	if err := pdf.Error(); err != nil {
		utils.LogEvent("", "receipt", "logo", "path", s.LogoPath, "skipped: "+err.Error())
		pdf.ClearError()
	}
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
