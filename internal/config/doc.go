// Package config loads the profile service settings from defaults, an
// optional YAML file and PROFILE_* environment variables, in increasing
// order of precedence, and validates the result before anything starts.
package config
