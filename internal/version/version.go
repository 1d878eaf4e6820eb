package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time with -ldflags "-X github.com/MrSnakeDoc/agora/internal/version.Version=...".
var (
	Version   = "dev"             // ex: v0.3.0
	Commit    = "none"            // ex: abcd123
	BuildDate = "unknown"         // ex: 2026-10-01T09:12:00Z
	GoVersion = runtime.Version() // go version
)

// String renders the one-line banner printed by `agora version`.
func String() string {
	return fmt.Sprintf("agora %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
