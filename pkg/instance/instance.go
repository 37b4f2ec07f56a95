package instance

import (
	"os"

	"github.com/angelmondragon/shopoverlay/pkg/env"
)

// GetID returns the bridge instance identifier. An explicit
// SHOPOVERLAY_INSTANCE_ID wins, then the hostname, then "local".
func GetID() string {
	if id := env.Get("SHOPOVERLAY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
