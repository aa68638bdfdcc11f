package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

const maxLogoBytes = 2 << 20

// Logo is an image embedded in the license header. Type is an fpdf image
// type ("PNG", "JPG" or "GIF").
type Logo struct {
	Data []byte
	Type string
}

// FetchLogo downloads the shop logo. Any failure yields nil; documents are
// then rendered without a logo.
func FetchLogo(ctx context.Context, client *http.Client, url string) *Logo {
	if url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil || len(data) == 0 {
		return nil
	}

	var imageType string
	switch http.DetectContentType(data) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return nil
	}

	return &Logo{Data: data, Type: imageType}
}

var numberedHeading = regexp.MustCompile(`^\d+\.\s`)

type LicenseDocument struct {
	ShopName string
	Logo     *Logo

	uncompressed bool
}

// Render lays the license record out on a single A4 page.
func (d LicenseDocument) Render(record domain.LicenseRecord, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!d.uncompressed)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetTitle(string(record.Type)+" - "+record.Product, true)
	pdf.SetAuthor(d.ShopName, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr("Erstellt am "+generatedAt.Format("02.01.2006 um 15:04 Uhr")), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	if d.Logo != nil {
		opts := fpdf.ImageOptions{ImageType: d.Logo.Type}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(d.Logo.Data))
		if pdf.Ok() {
			pdf.ImageOptions("logo", left, 0, 40, 0, true, opts, 0, "")
			pdf.Ln(4)
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, tr(d.ShopName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 8, tr("Lizenzzertifikat"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	fields := []struct{ label, value string }{
		{"Lizenzart:", string(record.Type)},
		{"Produkt:", record.Product},
		{"Lizenznehmer:", record.BuyerName},
		{"E-Mail:", record.BuyerEmail},
		{"Kaufdatum:", record.PurchaseDate},
		{"Bestellnummer:", record.OrderNumber},
	}
	pdf.SetTextColor(0, 0, 0)
	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, tr(f.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(f.value), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Line(left, y, pageWidth-right, y)
	pdf.Ln(6)

	for _, paragraph := range strings.Split(LicenseText(record.Type), "\n\n") {
		heading, body := splitHeading(paragraph)
		if heading != "" {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr(heading), "", "L", false)
		}
		if body != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(body), "", "J", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render license pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// splitHeading separates a leading "N. Title" line from the paragraph body.
func splitHeading(paragraph string) (string, string) {
	paragraph = strings.TrimSpace(paragraph)
	first, rest, _ := strings.Cut(paragraph, "\n")
	if numberedHeading.MatchString(first) {
		return strings.TrimSpace(first), strings.TrimSpace(rest)
	}
	return "", paragraph
}
