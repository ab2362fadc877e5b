// internal/models/quotation.go
package models

import "time"

// LineItem is one product of a quotation.
type LineItem struct {
	Name            string  `json:"name"`
	IconURL         string  `json:"iconUrl,omitempty"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

// PrimaryRecord is the parsed PRIMARY response. It is not modified after
// construction.
type PrimaryRecord struct {
	TransactionID        string     `json:"transactionId"`
	CustomerIDRaw        string     `json:"customerIdRaw"`
	CustomerIDNormalized string     `json:"customerIdNormalized"`
	CreationDateRaw      string     `json:"creationDate"`
	CreationDate         time.Time  `json:"-"`
	CreatorID            string     `json:"creatorId"`
	TotalAmount          *float64   `json:"totalAmount"`
	LineItems            []LineItem `json:"lineItems"`
	CapturedAt           time.Time  `json:"-"`
}

// HasCustomer reports whether the record can be enriched.
func (r PrimaryRecord) HasCustomer() bool {
	return r.CustomerIDNormalized != ""
}

// PendingEnrichment waits in the coordinator's single slot.
type PendingEnrichment struct {
	CustomerIDNormalized string
	Record               PrimaryRecord
	TransactionID        string
}

// CustomerAttributes is the optional SECONDARY lookup payload.
type CustomerAttributes struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	ExternalCustomerID string `json:"externalCustomerId"`
}

// CombinedRecord is the flat row posted to the sink.
type CombinedRecord struct {
	NumDevis   string   `json:"NumDevis"`
	Date       string   `json:"Date"`
	NomClient  string   `json:"NomClient"`
	Telephone  string   `json:"Telephone"`
	Mail       string   `json:"Mail"`
	NumClient  string   `json:"NumClient"`
	PrixTTC    *float64 `json:"PrixTTC"`
	PrixRemise float64  `json:"PrixRemise"`
	Produits   string   `json:"Produits"`
	Image      string   `json:"Image"`
	Vendeur    string   `json:"Vendeur"`
}
