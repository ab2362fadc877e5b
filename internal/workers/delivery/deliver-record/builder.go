// internal/workers/delivery/deliver-record/builder.go
package deliverrecord

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quotation-relay/internal/models"
)

// BuildOptions controls formatting of the sink row.
type BuildOptions struct {
	Location     *time.Location
	ImageFormula bool
	Placeholder  string
}

// BuildRecord flattens a primary record and optional customer attributes
// into the sink row.
func BuildRecord(rec models.PrimaryRecord, attrs *models.CustomerAttributes, opts BuildOptions) models.CombinedRecord {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = "N/A"
	}

	names := make([]string, 0, len(rec.LineItems))
	var icon string
	var discounted float64
	for _, item := range rec.LineItems {
		names = append(names, item.Name)
		if icon == "" && item.IconURL != "" {
			icon = item.IconURL
		}
		discounted += item.DiscountedPrice
	}

	out := models.CombinedRecord{
		NumDevis:   rec.TransactionID,
		Date:       recordDate(rec, opts.Location),
		NomClient:  placeholder,
		NumClient:  placeholder,
		PrixTTC:    rec.TotalAmount,
		PrixRemise: discounted,
		Produits:   strings.Join(names, ", "),
		Image:      imageValue(icon, opts.ImageFormula),
		Vendeur:    rec.CreatorID,
	}

	if rec.CustomerIDNormalized != "" {
		out.NumClient = rec.CustomerIDNormalized
	}

	if attrs != nil {
		if name := strings.TrimSpace(attrs.FirstName + " " + attrs.LastName); name != "" {
			out.NomClient = name
		}
		out.Telephone = attrs.Phone
		out.Mail = attrs.Email
		if attrs.ExternalCustomerID != "" {
			out.NumClient = attrs.ExternalCustomerID
		}
	}

	return out
}

const dateLayout = "02/01/2006"

// recordDate prefers the timestamp parsed at capture and falls back to the
// raw value.
func recordDate(rec models.PrimaryRecord, loc *time.Location) string {
	if rec.CreationDate.IsZero() {
		return FormatDate(rec.CreationDateRaw, loc)
	}
	t := rec.CreationDate
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// FormatDate renders an ISO-8601 timestamp or epoch milliseconds as
// dd/mm/yyyy in loc. Values that do not parse are returned unchanged.
func FormatDate(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return raw
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339, the zone-less variants the quotation API
// emits, and epoch milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func imageValue(icon string, formula bool) string {
	if icon == "" || !formula {
		return icon
	}
	return fmt.Sprintf(`=IMAGE("%s")`, icon)
}
