// internal/intercept/matcher_test.go
package intercept

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotation-relay/internal/models"
)

const (
	testPrimary   = "/api/carpentry/Order/Quotation?id="
	testSecondary = "/colleague/v2/customers/CAFR"
)

func TestMatcher_Match(t *testing.T) {
	m := DefaultMatcher(testPrimary, testSecondary)

	tests := []struct {
		name   string
		url    string
		want   models.TargetName
		wantOK bool
	}{
		{"primary", "https://app.example.com/api/carpentry/Order/Quotation?id=Q1", models.TargetPrimary, true},
		{"secondary", "https://api.example.com/colleague/v2/customers/CAFR?filter[customerNumber]=1", models.TargetSecondary, true},
		{"relative primary", "/api/carpentry/Order/Quotation?id=Q1", models.TargetPrimary, true},
		{"other path", "https://app.example.com/api/carpentry/Order/List", "", false},
		{"primary without query", "https://app.example.com/api/carpentry/Order/Quotation", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Match(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestMatcher_FirstPatternWins(t *testing.T) {
	m := NewMatcher(
		models.TargetPattern{Name: models.TargetPrimary, Pattern: "/shared"},
		models.TargetPattern{Name: models.TargetSecondary, Pattern: "/shared/customers"},
	)
	got, ok := m.Match("https://x/shared/customers")
	require.True(t, ok)
	assert.Equal(t, models.TargetPrimary, got.Name)
}

func TestMatcher_IgnoresEmptyPattern(t *testing.T) {
	m := DefaultMatcher("", testSecondary)
	_, ok := m.Match("https://anything.example.com/")
	assert.False(t, ok)
}

func TestMatcher_MatchRequest(t *testing.T) {
	m := DefaultMatcher(testPrimary, testSecondary)

	got, ok := m.MatchRequest(httptest.NewRequest("GET", "http://x/api/carpentry/Order/Quotation?id=7", nil))
	require.True(t, ok)
	assert.Equal(t, models.TargetPrimary, got.Name)

	_, ok = m.MatchRequest(nil)
	assert.False(t, ok)

	var nilMatcher *Matcher
	_, ok = nilMatcher.Match("http://x/api/carpentry/Order/Quotation?id=7")
	assert.False(t, ok)
}
