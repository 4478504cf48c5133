// Package config loads and merges prbot configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRBOT_PROVIDER, PRBOT_MODEL, PRBOT_BASE_REF, etc.)
//  3. Repository file (.prbot.toml in the working directory)
//  4. User file ($XDG_CONFIG_HOME/prbot/config.toml)
//  5. Built-in defaults
//
// Files are TOML. Provider credentials are not part of [Config]: they are
// read once from the provider's environment variable by [ResolveCredential].
package config
