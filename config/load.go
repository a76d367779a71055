package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "VAULTCTL"

// flagKeys are the flags that can also be provided as VAULTCTL_* env vars,
// e.g. VAULTCTL_LOG_LEVEL or VAULTCTL_FROM.
var flagKeys = []string{
	"network",
	"node",
	"log-level",
	"metrics-addr",
	"poll-interval",
	"from",
	"asset",
	"extragas",
	"interval",
}

// Load reads envFile (if it exists) into the process environment and then
// fills every flag in flags that was not set on the command line from its
// VAULTCTL_* env var. Contract address overrides are applied last.
func Load(envFile string, flags *pflag.FlagSet) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("couldn't load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range append(flagKeys, "vault-address", "aave-data-provider") {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("couldn't bind env for %s: %w", key, err)
		}
	}

	if flags != nil {
		for _, key := range flagKeys {
			f := flags.Lookup(key)
			if f == nil || f.Changed || !v.IsSet(key) {
				continue
			}
			if err := flags.Set(key, v.GetString(key)); err != nil {
				return fmt.Errorf("invalid %s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, "-", "_")), err)
			}
		}
	}

	if addr := v.GetString("vault-address"); addr != "" {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid vault address override: %s", addr)
		}
		VaultAddress = common.HexToAddress(addr)
	}
	if addr := v.GetString("aave-data-provider"); addr != "" {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid aave data provider override: %s", addr)
		}
		AaveDataProvider = common.HexToAddress(addr)
	}
	return nil
}
