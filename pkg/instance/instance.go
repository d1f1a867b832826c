package instance

import "os"

// ID identifies this process in logs. MEVA_INSTANCE_ID wins, then the
// platform dyno name, then the host name.
func ID() string {
	for _, key := range []string{"MEVA_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
