package buildinfo

import "time"

// Set via -ldflags at build time, e.g.
//
//	go build -ldflags "-X github.com/DevangRnd/fota-backend/internal/buildinfo.CommitHash=$(git rev-parse --short HEAD)"
var (
	BuildTime  string
	CommitHash string
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Fields returns the build metadata reported by the health endpoint.
// Unset values are reported as "dev".
func Fields() map[string]string {
	return map[string]string{
		"buildTime": orDev(BuildTime),
		"commit":    orDev(CommitHash),
		"startedAt": StartTime,
	}
}

func orDev(s string) string {
	if s == "" {
		return "dev"
	}
	return s
}
