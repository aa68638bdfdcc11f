package delivery

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

var withBeatMarkers = []string{"mit beat", "with beat"}

// ClassifyLicense picks the license from the variant title. Only an explicit
// "mit beat"/"with beat" marker grants the beat rights.
func ClassifyLicense(variantTitle string) domain.LicenseType {
	title := strings.ToLower(variantTitle)
	for _, marker := range withBeatMarkers {
		if strings.Contains(title, marker) {
			return domain.LicenseWithBeat
		}
	}
	return domain.LicenseWithoutBeat
}

const licenseWithBeat = `1. Lizenzgegenstand
Diese Lizenz gilt für den oben genannten Songtext einschließlich des zugehörigen Beats. Der Lizenznehmer erhält die Dateien ausschließlich über den per E-Mail versendeten Download-Link.

2. Nutzungsrechte
Der Lizenznehmer darf den Songtext und den Beat für eigene Aufnahmen, Live-Auftritte und Veröffentlichungen auf Streaming-Plattformen und sozialen Netzwerken nutzen. Eine kommerzielle Verwertung der daraus entstehenden Aufnahme ist gestattet.

3. Einschränkungen
Der Weiterverkauf, die Weitergabe oder die Unterlizenzierung des Songtextes oder des Beats als eigenständiges Werk ist untersagt. Der Beat darf nicht ohne den lizenzierten Songtext als Instrumental veröffentlicht werden.

4. Urheberrecht
Das Urheberrecht an Songtext und Beat verbleibt beim Urheber. Bei Veröffentlichungen ist der Urheber in geeigneter Form zu nennen.

5. Gültigkeit
Die Lizenz ist zeitlich unbegrenzt gültig und an den oben genannten Lizenznehmer gebunden. Sie wird mit vollständiger Bezahlung der Bestellung wirksam.`

const licenseWithoutBeat = `1. Lizenzgegenstand
Diese Lizenz gilt ausschließlich für den oben genannten Songtext. Ein Beat oder eine Instrumentalversion ist nicht Bestandteil dieser Lizenz.

2. Nutzungsrechte
Der Lizenznehmer darf den Songtext für eigene Vertonungen, Aufnahmen, Live-Auftritte und Veröffentlichungen auf Streaming-Plattformen und sozialen Netzwerken nutzen. Eine kommerzielle Verwertung der daraus entstehenden Aufnahme ist gestattet.

3. Einschränkungen
Der Weiterverkauf, die Weitergabe oder die Unterlizenzierung des Songtextes als eigenständiges Werk ist untersagt. Inhaltliche Änderungen am Text sind nur in geringem Umfang zur Anpassung an die Melodie erlaubt.

4. Urheberrecht
Das Urheberrecht am Songtext verbleibt beim Urheber. Bei Veröffentlichungen ist der Urheber in geeigneter Form zu nennen.

5. Gültigkeit
Die Lizenz ist zeitlich unbegrenzt gültig und an den oben genannten Lizenznehmer gebunden. Sie wird mit vollständiger Bezahlung der Bestellung wirksam.`

func LicenseText(t domain.LicenseType) string {
	if t == domain.LicenseWithBeat {
		return licenseWithBeat
	}
	return licenseWithoutBeat
}

// NewLicenseRecord derives the certificate data for one purchased asset.
func NewLicenseRecord(order *domain.OrderEvent, asset domain.DownloadableAsset, now time.Time) domain.LicenseRecord {
	return domain.LicenseRecord{
		Type:         ClassifyLicense(asset.VariantTitle),
		Product:      asset.ProductTitle,
		BuyerName:    order.BuyerFullName(),
		BuyerEmail:   order.Email,
		PurchaseDate: purchaseDate(order.CreatedAt, now),
		OrderNumber:  order.OrderRef(),
	}
}

func purchaseDate(createdAt string, now time.Time) string {
	if createdAt == "" {
		return now.Format("02.01.2006")
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format("02.01.2006")
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// AttachmentName derives a stable file name from the product title.
func AttachmentName(productTitle string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(productTitle, "_"), "_")
	if name == "" {
		name = "Produkt"
	}
	return "Lizenz_" + name + ".pdf"
}

// uniqueName returns name, or name with a _2, _3, ... suffix before the
// extension when an earlier attachment already took it.
func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	base := strings.TrimSuffix(name, ".pdf")
	for i := 2; taken[candidate]; i++ {
		candidate = base + "_" + strconv.Itoa(i) + ".pdf"
	}
	taken[candidate] = true
	return candidate
}
