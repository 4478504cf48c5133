// Package cli wires together the Cobra command tree for the prbot binary.
//
// It defines the root command and all subcommands (review, qa, pr, post, render,
// config, models, workflow, hook, version), binds flags, reads configuration,
// runs the review pipeline and returns the process exit code.
package cli
