// Package version reports the stagekit build.
//
// Version, Commit and Date are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/stagekit/version.Version=0.2.0" ./cmd/stagekit
//
// When they are not set, the VCS stamp embedded by the Go toolchain is used.
package version
