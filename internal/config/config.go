// Package config loads settings from the environment into plain structs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by all environment variables of this module.
const EnvPrefix = "PEREGGRN_"

// Load loads configuration from an optional .env file and environment
// variables into target.
// prefix: environment variable prefix (e.g. "PEREGGRN_")
// target: pointer to the config struct to load into
func Load(prefix string, target interface{}) error {
	v := viper.New()

	// 1. Load from .env file (if exists)
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// The file is optional; parsing problems surface later during
			// Unmarshal if a critical key is affected.
		}
	}

	// 2. Load from environment variables. Viper's AutomaticEnv does not work
	// well with Unmarshal when keys are not known up front, so populate viper
	// by iterating the environment.
	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, prefixUpper) {
			// PEREGGRN_NETWORKS_PATH -> networks.path
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")

			v.Set(propKey, value)
		}
	}

	// 3. Unmarshal into struct
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}
