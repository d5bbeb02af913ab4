package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/TwigBush/keyguard/internal/guard"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Addr           string   `yaml:"addr"            mapstructure:"addr"`
	LogJSON        bool     `yaml:"log_json"        mapstructure:"log_json"`
	EnvPrefix      string   `yaml:"env_prefix"      mapstructure:"env_prefix"`
	Secrets        []string `yaml:"secrets"         mapstructure:"secrets"`
	CredentialName string   `yaml:"credential_name" mapstructure:"credential_name"`
	ProtectedTag   string   `yaml:"protected_tag"   mapstructure:"protected_tag"`
	CORSOrigins    []string `yaml:"cors_origins"    mapstructure:"cors_origins"`
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`

	// SecretsSet is true when secrets were given at all, even as an empty list.
	SecretsSet bool `yaml:"-" mapstructure:"-"`
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetDefault("addr", ":8085")
	v.SetDefault("log_json", false)
	v.SetDefault("env_prefix", guard.DefaultEnvPrefix)
	v.SetDefault("credential_name", guard.DefaultCredentialName)
	v.SetDefault("protected_tag", guard.DefaultProtectedTag)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("timeout_seconds", 30)

	// Env overrides: KEYGUARD_ADDR, KEYGUARD_SECRETS, etc.
	v.SetEnvPrefix("KEYGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// secrets has no default, so Unmarshal only sees it once bound.
	_ = v.BindEnv("secrets")

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.SecretsSet = v.IsSet("secrets")
	if c.SecretsSet {
		c.Secrets = secretList(v.Get("secrets"))
	}
	return &c, nil
}

// secretList accepts a YAML list, used verbatim, or a comma separated env value.
func secretList(raw any) []string {
	s, ok := raw.(string)
	if !ok {
		return cast.ToStringSlice(raw)
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
