// Package useragent classifies clients from their User-Agent header.
//
// This is best-effort sniffing against a known deny-list, not feature
// detection. Clients that are absent from the list (including an empty or
// unknown User-Agent) are assumed capable.
package useragent

import "strings"

// noVectorIcons lists User-Agent markers of browsers that cannot render
// inline SVG.
var noVectorIcons = []string{
	"Android 2",
	"MSIE 6",
	"MSIE 7",
	"MSIE 8",
}

// SupportsVectorIcons reports whether the client can render inline SVG icons.
func SupportsVectorIcons(ua string) bool {
	for _, marker := range noVectorIcons {
		if strings.Contains(ua, marker) {
			return false
		}
	}
	return true
}

// IsIPhone reports whether the client identifies as an iPhone.
func IsIPhone(ua string) bool {
	return strings.Contains(ua, "iPhone")
}
