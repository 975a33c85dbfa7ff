// Package device derives a human-readable platform label from the User-Agent
// a kid's device presents when it claims its setup token.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Platform parses a User-Agent string into a short platform label such as
// "Android 14" or "iPhone iOS 17". Empty or unparseable strings collapse to
// "Unknown Device" so the claim flow never blocks on a weird agent.
func Platform(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	osInfo := ua.OSInfo()

	label := osInfo.Name
	if label == "" {
		label = ua.Platform()
	}
	if label == "" {
		return "Unknown Device"
	}
	if osInfo.Version != "" {
		label += " " + osInfo.Version
	}
	return strings.TrimSpace(label)
}

// Description combines browser and platform for audit detail lines, in the
// form "Chrome on Android 14".
func Description(rawUA string) string {
	platform := Platform(rawUA)
	if platform == "Unknown Device" {
		return platform
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	if browser == "" {
		return platform
	}
	return browser + " on " + platform
}
