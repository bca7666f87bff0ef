// Package types defines the shared types used across unpakt packages:
// the filesystem abstraction, pack and pack-file descriptors,
// reconciliation rules and the progress-handler callback surface.
package types
