package config

import (
	"fmt"
	"strings"
)

func NonEmpty(value, key string) error {
	if value == "" {
		return fmt.Errorf("missing required config %s (env %s)", key, EnvName(key))
	}
	return nil
}

func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
