package service

import "strings"

// deviceRule pairs a set of case-insensitive user-agent substrings with the
// label reported when any of them matches.
type deviceRule struct {
	tokens []string
	label  string
}

// deviceRules is evaluated in order, first match wins. OS tokens come before
// browser tokens: an OS marker is more specific than an engine marker that
// several browsers share, so browser labels only apply once every OS check
// has failed. Safari must be checked after Chrome because Chrome UAs carry
// the Safari token too.
var deviceRules = []deviceRule{
	{tokens: []string{"android"}, label: "Android"},
	{tokens: []string{"iphone", "ipad", "ipod"}, label: "iOS"},
	{tokens: []string{"windows"}, label: "Windows"},
	{tokens: []string{"macintosh", "mac os x"}, label: "MacOS"},
	{tokens: []string{"linux"}, label: "Linux"},
	{tokens: []string{"chrome"}, label: "Chrome"},
	{tokens: []string{"firefox"}, label: "Firefox"},
	{tokens: []string{"safari"}, label: "Safari"},
}

// DeviceUnknown is reported when no rule matches.
const DeviceUnknown = "Unknown Device"

// ClassifyDevice maps a user-agent string to a coarse device/browser label.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, rule := range deviceRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.label
			}
		}
	}
	return DeviceUnknown
}
