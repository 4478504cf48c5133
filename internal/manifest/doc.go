// Package manifest derives the project stack descriptor from a package.json
// manifest: the allow-listed dependencies and their bare versions, used to
// keep model suggestions on the versions the project actually runs.
package manifest
