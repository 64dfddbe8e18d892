// Package config loads and validates the amberpipe TOML configuration.
// Defaults are applied first, then overridden field-by-field from the
// resolved config file; unknown keys and out-of-range values are rejected
// at load time.
package config
