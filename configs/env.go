package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RWG"

// legacyEnvVars maps config keys onto the variable names of the Hardhat
// deploy setup so existing .env files keep working.
var legacyEnvVars = map[string][]string{
	"network.rpc-url":     {"QUICKNODE_HTTP_URL"},
	"network.private-key": {"MUMBAI_PRIVATE_KEY", "MUMBAI_PRIVETE_KEY"},
	"explorer.api-key":    {"POLYGONSCAN_KEY"},
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvVarsFor lists the environment variables consulted for key, in lookup order.
func EnvVarsFor(key string) []string {
	vars := []string{envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))}
	return append(vars, legacyEnvVars[key]...)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return nil
}

// BindEnv wires viper to the RWG_* variables and the legacy names.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	for key := range legacyEnvVars {
		if err := v.BindEnv(append([]string{key}, EnvVarsFor(key)...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return nil
}

// Unmarshal decodes v into a Config.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode application config: %w", err)
	}

	cfg.Network.RPCURL = strings.TrimSpace(cfg.Network.RPCURL)
	cfg.Network.PrivateKey = strings.TrimSpace(cfg.Network.PrivateKey)
	cfg.Explorer.APIKey = strings.TrimSpace(cfg.Explorer.APIKey)

	return cfg, nil
}
