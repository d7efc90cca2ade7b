// Package selection watches host page input events and turns them into
// immutable selection snapshots. It is a filter: blank selections never
// leave the package.
package selection
