package config

import "strings"

// envKeyReplacer maps nested config keys to environment variable names.
var envKeyReplacer = strings.NewReplacer(".", "_")

// EnvVarName returns the environment variable overriding a config key,
// e.g. "distribute.partition" → "CDIST_DISTRIBUTE_PARTITION".
func EnvVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))
}
