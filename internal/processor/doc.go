// Package processor contains the logic behind the glossa subcommands. It
// wires the identity store, the backend client, the browser host and the
// reference backend together from the loaded configuration. This package
// serves as the main coordinator between all other components.
package processor
