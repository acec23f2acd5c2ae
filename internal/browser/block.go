package browser

import (
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"
)

// resource types that never carry calendar data
var blockedTypes = map[network.ResourceType]bool{
	network.ResourceTypeImage:      true,
	network.ResourceTypeFont:       true,
	network.ResourceTypeStylesheet: true,
	network.ResourceTypeMedia:      true,
}

// trackerHosts are matched as host suffixes
var trackerHosts = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"googletagservices.com",
	"googlesyndication.com",
	"doubleclick.net",
	"adservice.google.com",
	"amazon-adsystem.com",
	"adsrvr.org",
	"facebook.net",
	"scorecardresearch.com",
	"quantserve.com",
	"hotjar.com",
	"criteo.com",
	"taboola.com",
}

// ShouldBlock reports whether a request can be failed without affecting the
// page's script state
func ShouldBlock(resourceType network.ResourceType, rawURL string) bool {
	if blockedTypes[resourceType] {
		return true
	}
	return isTracker(rawURL)
}

func isTracker(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, t := range trackerHosts {
		if host == t || strings.HasSuffix(host, "."+t) {
			return true
		}
	}
	return false
}
