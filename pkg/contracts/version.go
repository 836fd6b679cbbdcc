package contracts

import "fmt"

const (
	// Version is the current version of the application
	Version = "1.0.0"

	// APIVersion is the version of the HTTP and WebSocket API
	APIVersion = "v1"
)

// GitCommit is set during build using ldflags
var GitCommit = "unknown"

// VersionString returns the product name with its version and commit.
func VersionString() string {
	return fmt.Sprintf("Fusion Collections Dashboard v%s (%s)", Version, GitCommit)
}
