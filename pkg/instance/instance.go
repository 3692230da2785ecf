package instance

import "os"

// GetID returns the replica identifier used in worker log fields, falling
// back to worker-0 when WORKER_ID is unset.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
