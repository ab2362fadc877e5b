// internal/intercept/txid.go
package intercept

import (
	"net/url"
	"regexp"
	"sync"
)

var (
	txPatternMu sync.Mutex
	txPatterns  = map[string]*regexp.Regexp{}
)

// ExtractTransactionID reads query parameter param from rawURL. When the URL
// does not parse, a regex over the raw string is used instead.
func ExtractTransactionID(rawURL, param string) string {
	if rawURL == "" || param == "" {
		return ""
	}
	if u, err := url.Parse(rawURL); err == nil {
		return u.Query().Get(param)
	}

	m := paramPattern(param).FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	if v, err := url.QueryUnescape(m[1]); err == nil {
		return v
	}
	return m[1]
}

func paramPattern(param string) *regexp.Regexp {
	txPatternMu.Lock()
	defer txPatternMu.Unlock()
	re, ok := txPatterns[param]
	if !ok {
		re = regexp.MustCompile(`[?&]` + regexp.QuoteMeta(param) + `=([^&#]*)`)
		txPatterns[param] = re
	}
	return re
}
