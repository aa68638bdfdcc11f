package domain

import "time"

type DownloadableAsset struct {
	ProductTitle string `json:"product_title"`
	VariantTitle string `json:"variant_title"`
	DownloadLink string `json:"download_link"`
}

type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

type DeliveryMessage struct {
	To          string
	ToName      string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

type LicenseType string

const (
	LicenseWithBeat    LicenseType = "Lizenz mit Beat"
	LicenseWithoutBeat LicenseType = "Lizenz ohne Beat"
)

type LicenseRecord struct {
	Type         LicenseType
	Product      string
	BuyerName    string
	BuyerEmail   string
	PurchaseDate string
	OrderNumber  string
}

type OutcomeStatus string

const (
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeFailed  OutcomeStatus = "failed"
)

// DeliveryOutcome is published once per processed webhook.
type DeliveryOutcome struct {
	ID        string        `json:"id"`
	Topic     string        `json:"topic"`
	Order     string        `json:"order"`
	Email     string        `json:"email,omitempty"`
	Assets    int           `json:"assets"`
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
