// internal/workers/quotation/process-quotation/models.go
package processquotation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const unknownProduct = "Unknown Product"

// quotationSchema is the minimum a PRIMARY body must satisfy to be processed.
const quotationSchema = `{
	"type": "object",
	"required": ["creationDate"],
	"properties": {
		"creationDate": {"type": ["string", "number"], "minLength": 1}
	}
}`

// quotationPayload is the subset of the quotation response the relay reads.
// Categories and products are decoded leniently so one odd entry does not
// discard the record.
type quotationPayload struct {
	CreationDate   dateField       `json:"creationDate"`
	CustomerID     flexString      `json:"customerId"`
	CreationUserID flexString      `json:"creationUserId"`
	TotalPV        flexNumber      `json:"totalPV"`
	Categories     json.RawMessage `json:"categories"`
}

type category struct {
	Products json.RawMessage `json:"products"`
}

// product fields never fail the decode: a wrongly typed field is left
// empty and the rest of the product is kept.
type product struct {
	NameFr          textField  `json:"nameFr"`
	NameEn          textField  `json:"nameEn"`
	Icon            textField  `json:"icon"`
	TotalDiscountPv flexNumber `json:"totalDiscountPv"`
}

func (p product) name() string {
	switch {
	case p.NameFr != "":
		return string(p.NameFr)
	case p.NameEn != "":
		return string(p.NameEn)
	default:
		return unknownProduct
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*s = ""
		return nil
	}
	*s = flexString(n.String())
	return nil
}

// textField accepts a JSON string. Any other value decodes as empty.
type textField string

func (s *textField) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = textField(v)
	return nil
}

// dateField holds creationDate as sent: an ISO string or epoch milliseconds.
type dateField struct {
	Value   string
	Numeric bool
}

func (d *dateField) UnmarshalJSON(b []byte) error {
	*d = dateField{}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		d.Value = str
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		d.Value, d.Numeric = n.String(), true
	}
	return nil
}

// missing reports an empty string or a numeric zero.
func (d dateField) missing() bool {
	if d.Numeric {
		f, err := strconv.ParseFloat(d.Value, 64)
		return err != nil || f == 0
	}
	return strings.TrimSpace(d.Value) == ""
}

// flexNumber accepts a JSON number or a numeric string. Anything else
// decodes as absent.
type flexNumber struct {
	Value float64
	Valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(b)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		n.Value, n.Valid = f, true
	}
	return nil
}

func (n flexNumber) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
