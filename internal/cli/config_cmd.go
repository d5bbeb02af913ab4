package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/TwigBush/keyguard/internal/guard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type resolvedView struct {
	Addr           string   `json:"addr"            yaml:"addr"`
	LogJSON        bool     `json:"log_json"        yaml:"log_json"`
	CredentialName string   `json:"credential_name" yaml:"credential_name"`
	ProtectedTag   string   `json:"protected_tag"   yaml:"protected_tag"`
	CORSOrigins    []string `json:"cors_origins"    yaml:"cors_origins"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	SecretSource   string   `json:"secret_source"   yaml:"secret_source"`
	EnvPrefix      string   `json:"env_prefix,omitempty" yaml:"env_prefix,omitempty"`
	SecretCount    int      `json:"secret_count"    yaml:"secret_count"`
}

func cmdConfig() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	c.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration; secrets are reported as a count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			g := guard.New(cfg.guardOptions()...)
			return render(cmd.OutOrStdout(), output, view(cfg, g))
		},
	})
	return c
}

func view(c *Config, g *guard.Guard) resolvedView {
	v := resolvedView{
		Addr:           c.Addr,
		LogJSON:        c.LogJSON,
		CredentialName: c.CredentialName,
		ProtectedTag:   c.ProtectedTag,
		CORSOrigins:    c.CORSOrigins,
		TimeoutSeconds: c.TimeoutSeconds,
		SecretSource:   string(g.Source()),
		SecretCount:    len(g.Secrets()),
	}
	if g.Source() == guard.SourceEnvironment {
		v.EnvPrefix = c.EnvPrefix
	}
	return v
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
