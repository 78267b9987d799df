package request

import (
	"strings"

	"github.com/mssola/useragent"
)

// ClientName reduces a User-Agent header to "Browser on OS" for request logs.
// CLI clients and SDKs usually report only a product token, which is returned
// as the browser name.
func ClientName(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			os = platform
		}
	}
	if browser == "" {
		browser = "unknown"
	}
	if os == "" {
		return browser
	}
	return browser + " on " + os
}
