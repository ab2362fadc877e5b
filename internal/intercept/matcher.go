// Package intercept observes the observed application's HTTP traffic without
// changing it: it classifies calls, captures the bearer credential from
// SECONDARY calls and hands PRIMARY response bodies to a ResponseSink.
package intercept

import (
	"net/http"
	"strings"

	"quotation-relay/internal/models"
)

// Matcher classifies URLs against an ordered list of patterns.
type Matcher struct {
	targets []models.TargetPattern
}

// NewMatcher keeps the given order; the first matching pattern wins.
// Patterns with an empty substring are ignored since they would match
// everything.
func NewMatcher(targets ...models.TargetPattern) *Matcher {
	kept := make([]models.TargetPattern, 0, len(targets))
	for _, t := range targets {
		if t.Pattern != "" {
			kept = append(kept, t)
		}
	}
	return &Matcher{targets: kept}
}

// DefaultMatcher builds the PRIMARY then SECONDARY matcher.
func DefaultMatcher(primary, secondary string) *Matcher {
	return NewMatcher(
		models.TargetPattern{Name: models.TargetPrimary, Pattern: primary},
		models.TargetPattern{Name: models.TargetSecondary, Pattern: secondary},
	)
}

// Match returns the first pattern contained in url.
func (m *Matcher) Match(url string) (models.TargetPattern, bool) {
	if m == nil || url == "" {
		return models.TargetPattern{}, false
	}
	for _, t := range m.targets {
		if strings.Contains(url, t.Pattern) {
			return t, true
		}
	}
	return models.TargetPattern{}, false
}

// MatchRequest classifies a request; nil requests and URLs never match.
func (m *Matcher) MatchRequest(r *http.Request) (models.TargetPattern, bool) {
	if r == nil || r.URL == nil {
		return models.TargetPattern{}, false
	}
	return m.Match(r.URL.String())
}
