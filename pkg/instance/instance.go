package instance

import (
	"os"

	"github.com/harborline/shipline-backend/pkg/env"
)

// ID identifies this API process in logs. SHIPLINE_INSTANCE_ID wins, then the hostname.
func ID() string {
	if id := env.Lookup("", "SHIPLINE_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "api-0"
}
