package version

import "fmt"

var (
	// Version is the main version number that is being run at the moment.
	Version = "0.3.0"

	// VersionPrerelease is a pre-release marker for the version. If this is ""
	// (empty string) then it means that it is a final release. Otherwise, this
	// is a pre-release such as "dev" (in development), "beta", "rc1", etc.
	VersionPrerelease = "dev"
)

// Get composes the full version string from the version number and the
// pre-release marker.
func Get() string {
	if VersionPrerelease != "" {
		return fmt.Sprintf("v%s-%s", Version, VersionPrerelease)
	}
	return fmt.Sprintf("v%s", Version)
}
