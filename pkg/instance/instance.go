package instance

import "os"

// GetID returns the inspector instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("INSPECTOR_ID"); id != "" {
		return id
	}
	return "inspect-0"
}
