// Package main hosts the reelmatch CLI entrypoint and command graph.
//
// The Cobra command tree answers recommendation queries against the catalog
// artifact, resolves posters, rebuilds the artifact from CSV, inspects the
// persistent poster cache, and runs the HTTP API. Configuration resolution
// and logger setup live in commandContext so subcommands only wire output.
package main
