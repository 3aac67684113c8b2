// Package version reports the build of the ban binary.
//
// Version, GitCommit and BuildTime are set with -ldflags:
//
//	go build -ldflags "-X github.com/cybercog/ban/version.Version=1.2.0" ./cmd/ban
package version
