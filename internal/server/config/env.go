package config

import "github.com/caarlos0/env/v11"

// EnvPrefix is prepended to every environment variable name in Config tags.
const EnvPrefix = "GOPHAUTH_"

// parseEnv overlays set GOPHAUTH_* variables onto config. Unset variables
// leave the current value alone.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
