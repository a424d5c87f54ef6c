// Package device adapts the machine's location and camera to the note forms.
// Everything here is optional: a note saves fine without a fix or a photo.
package device

import (
	"errors"
	"strings"
)

var ErrPermissionDenied = errors.New("permission denied")

type Capability string

const (
	CapabilityLocation Capability = "location"
	CapabilityCamera   Capability = "camera"
)

// PermissionGate answers whether a capability may be used right now.
type PermissionGate interface {
	Allowed(c Capability) bool
}

// StaticGate grants exactly the capabilities it holds.
type StaticGate map[Capability]bool

func (g StaticGate) Allowed(c Capability) bool {
	return g[c]
}

// ParseCapabilities builds a gate from a list such as "location,camera".
// Unknown names are ignored.
func ParseCapabilities(list string) StaticGate {
	g := StaticGate{}
	for _, name := range strings.Split(list, ",") {
		switch c := Capability(strings.ToLower(strings.TrimSpace(name))); c {
		case CapabilityLocation, CapabilityCamera:
			g[c] = true
		}
	}
	return g
}
