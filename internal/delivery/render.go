package delivery

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

const defaultSalutation = "Kunde"

var htmlTemplate = template.Must(template.New("download").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; padding: 20px 0; border-bottom: 2px solid #000;">
    {{- if .LogoURL}}
    <img src="{{.LogoURL}}" alt="{{.ShopName}}" style="max-width: 200px; height: auto;">
    {{- else}}
    <h1 style="margin: 0;">{{.ShopName}}</h1>
    {{- end}}
  </div>

  <div style="padding: 30px 0;">
    <h2 style="color: #000;">Dein Download ist bereit!</h2>

    <p>Hallo {{.Name}},</p>

    <p>vielen Dank für deinen Einkauf! Hier sind deine Downloads:</p>

    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <thead>
        <tr style="background-color: #f8f8f8;">
          <th style="padding: 15px; text-align: left;">Produkt</th>
          <th style="padding: 15px; text-align: center;">Download</th>
        </tr>
      </thead>
      <tbody>
        {{- range .Assets}}
        <tr class="download">
          <td style="padding: 15px; border-bottom: 1px solid #eee;">
            <strong>{{.ProductTitle}}</strong><br>
            <span style="color: #666;">{{.VariantTitle}}</span>
          </td>
          <td style="padding: 15px; border-bottom: 1px solid #eee; text-align: center;">
            <a href="{{.DownloadLink}}" style="background-color: #000; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Download</a>
          </td>
        </tr>
        {{- end}}
      </tbody>
    </table>

    <p style="background-color: #f8f8f8; padding: 15px; border-radius: 5px;">
      <strong>Hinweis:</strong> Der Download-Link ist 30 Tage verfügbar, vergiss nicht deine Dateien herunterzuladen. Bei Problemen kontaktiere uns unter {{.SupportEmail}}
    </p>
  </div>

  <div style="text-align: center; padding: 20px 0; border-top: 1px solid #eee; color: #666; font-size: 14px;">
    <p>Viel Spaß mit deinem Kauf!</p>
    <p><strong>{{.ShopName}}</strong></p>
  </div>
</body>
</html>
`))

// Renderer builds the download email. It holds only the fixed shop identity.
type Renderer struct {
	ShopName     string
	LogoURL      string
	SupportEmail string
}

type htmlData struct {
	ShopName     string
	LogoURL      string
	SupportEmail string
	Name         string
	Assets       []domain.DownloadableAsset
}

func salutation(firstName string) string {
	if name := strings.TrimSpace(firstName); name != "" {
		return name
	}
	return defaultSalutation
}

func (r Renderer) Subject() string {
	return "Dein Download von " + r.ShopName
}

// Render returns the HTML and plain-text bodies for the given assets, in
// order.
func (r Renderer) Render(firstName string, assets []domain.DownloadableAsset) (string, string, error) {
	name := salutation(firstName)

	var html bytes.Buffer
	err := htmlTemplate.Execute(&html, htmlData{
		ShopName:     r.ShopName,
		LogoURL:      r.LogoURL,
		SupportEmail: r.SupportEmail,
		Name:         name,
		Assets:       assets,
	})
	if err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\nDein Download ist bereit!\n\nHallo %s,\n\n", r.ShopName, name)
	text.WriteString("vielen Dank für deinen Einkauf! Hier sind deine Downloads:\n")
	for _, asset := range assets {
		fmt.Fprintf(&text, "\n- %s (%s): %s", asset.ProductTitle, asset.VariantTitle, asset.DownloadLink)
	}
	fmt.Fprintf(&text, "\n\nHinweis: Der Download-Link ist 30 Tage verfügbar, vergiss nicht deine Dateien herunterzuladen. Bei Problemen kontaktiere uns unter %s\n", r.SupportEmail)
	fmt.Fprintf(&text, "\nViel Spaß mit deinem Kauf!\n%s\n", r.ShopName)

	return html.String(), text.String(), nil
}
