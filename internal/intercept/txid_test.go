// internal/intercept/txid_test.go
package intercept

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTransactionID(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		param string
		want  string
	}{
		{"absolute", "https://app/api/carpentry/Order/Quotation?id=Q123", "id", "Q123"},
		{"relative", "/api/carpentry/Order/Quotation?id=Q123&x=1", "id", "Q123"},
		{"escaped", "/q?id=A%2FB", "id", "A/B"},
		{"missing", "/q?other=1", "id", ""},
		{"custom param", "/q?quote=77", "quote", "77"},
		{"unparseable falls back to regex", "://bad?x=1&id=Q9#frag", "id", "Q9"},
		{"empty url", "", "id", ""},
		{"empty param", "/q?id=1", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTransactionID(tt.url, tt.param))
		})
	}
}
