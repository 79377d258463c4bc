package export

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteName derives the short site name used for file names and topics:
// the first label of the host after any "www." prefix.
//
//	https://www.wikipedia.org   → wikipedia
//	https://www.google.co.il/   → google
//	bbc.com/news                → bbc
func SiteName(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("export: site name of %q: %w", rawURL, err)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "", fmt.Errorf("export: no host in %q", rawURL)
	}
	return label, nil
}
