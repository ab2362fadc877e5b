// internal/workers/delivery/deliver-record/builder_test.go
package deliverrecord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotation-relay/internal/models"
)

func float(v float64) *float64 { return &v }

func sampleRecord() models.PrimaryRecord {
	return models.PrimaryRecord{
		TransactionID:        "Q1",
		CustomerIDRaw:        "SQ_123",
		CustomerIDNormalized: "123",
		CreationDateRaw:      "2024-05-01T10:00:00Z",
		CreatorID:            "U42",
		TotalAmount:          float(150.5),
		LineItems: []models.LineItem{
			{Name: "Table", IconURL: "https://img/t.png", DiscountedPrice: 20.0},
		},
	}
}

func TestBuildRecord_Enriched(t *testing.T) {
	attrs := &models.CustomerAttributes{FirstName: "Jean", LastName: "Dupont", Phone: "0600", Email: "j@d.fr"}

	got := BuildRecord(sampleRecord(), attrs, BuildOptions{Location: time.UTC})

	assert.Equal(t, "Q1", got.NumDevis)
	assert.Equal(t, "01/05/2024", got.Date)
	assert.Equal(t, "Jean Dupont", got.NomClient)
	assert.Equal(t, "0600", got.Telephone)
	assert.Equal(t, "j@d.fr", got.Mail)
	assert.Equal(t, "123", got.NumClient)
	assert.Equal(t, 150.5, *got.PrixTTC)
	assert.Equal(t, 20.0, got.PrixRemise)
	assert.Equal(t, "Table", got.Produits)
	assert.Equal(t, "https://img/t.png", got.Image)
	assert.Equal(t, "U42", got.Vendeur)
}

func TestBuildRecord_Partial(t *testing.T) {
	got := BuildRecord(sampleRecord(), nil, BuildOptions{Location: time.UTC, Placeholder: "N/A"})

	assert.Equal(t, "N/A", got.NomClient)
	assert.Equal(t, "123", got.NumClient)
	assert.Empty(t, got.Telephone)
	assert.Empty(t, got.Mail)
}

func TestBuildRecord_ExternalIDWins(t *testing.T) {
	attrs := &models.CustomerAttributes{ExternalCustomerID: "EXT-1"}
	got := BuildRecord(sampleRecord(), attrs, BuildOptions{})

	assert.Equal(t, "EXT-1", got.NumClient)
	assert.Equal(t, "N/A", got.NomClient, "blank names fall back to the placeholder")
}

func TestBuildRecord_NoCustomer(t *testing.T) {
	rec := sampleRecord()
	rec.CustomerIDRaw, rec.CustomerIDNormalized = "", ""
	rec.TotalAmount = nil
	rec.LineItems = nil

	got := BuildRecord(rec, nil, BuildOptions{Placeholder: "-"})

	assert.Equal(t, "-", got.NumClient)
	assert.Nil(t, got.PrixTTC)
	assert.Zero(t, got.PrixRemise)
	assert.Empty(t, got.Produits)
	assert.Empty(t, got.Image)
}

func TestBuildRecord_Aggregates(t *testing.T) {
	rec := sampleRecord()
	rec.LineItems = []models.LineItem{
		{Name: "Door", DiscountedPrice: 5.5},
		{Name: "Window", IconURL: "https://img/w.png", DiscountedPrice: 4.5},
		{Name: "Unknown Product", IconURL: "https://img/u.png"},
	}

	got := BuildRecord(rec, nil, BuildOptions{ImageFormula: true})

	assert.Equal(t, "Door, Window, Unknown Product", got.Produits)
	assert.InDelta(t, 10.0, got.PrixRemise, 0.0001)
	assert.Equal(t, `=IMAGE("https://img/w.png")`, got.Image)
}

func TestFormatDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	assert.Equal(t, "01/05/2024", FormatDate("2024-05-01T10:00:00Z", time.UTC))
	assert.Equal(t, "01/05/2024", FormatDate("2024-04-30T23:30:00Z", paris))
	assert.Equal(t, "30/04/2024", FormatDate("2024-04-30T23:30:00Z", time.UTC))
	assert.Equal(t, "01/05/2024", FormatDate("2024-05-01T10:00:00.123", nil))
	assert.Equal(t, "01/05/2024", FormatDate("2024-05-01", nil))
	assert.Equal(t, "01/05/2024", FormatDate("1714557600000", time.UTC))
	assert.Equal(t, "not a date", FormatDate("not a date", time.UTC))
	assert.Empty(t, FormatDate("", time.UTC))
}

func TestParseTimestamp_EpochMillis(t *testing.T) {
	got, err := ParseTimestamp("1714557600000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = ParseTimestamp("soon")
	assert.Error(t, err)
}

func TestBuildRecord_UsesParsedCreationDate(t *testing.T) {
	rec := sampleRecord()
	rec.CreationDateRaw = "1714557600000"
	rec.CreationDate = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got := BuildRecord(rec, nil, BuildOptions{Location: time.UTC})
	assert.Equal(t, "01/05/2024", got.Date)
}
