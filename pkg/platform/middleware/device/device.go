// Package device derives a human readable device name from a User-Agent.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "unknown device"

// Name returns "<browser> on <os>" for a User-Agent, falling back to the
// product token for non-browser clients such as curl or the CLI.
func Name(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknown
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		browser, _ := ua.Browser()
		return "bot " + browser
	}

	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		name := browser + " on " + os
		if ua.Mobile() {
			name += " (mobile)"
		}
		return name
	case browser != "":
		return browser
	}

	// Non-browser agents are usually "product/version ...".
	product, _, _ := strings.Cut(userAgent, " ")
	if product == "" {
		return unknown
	}
	return product
}
