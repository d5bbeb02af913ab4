package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	output  string
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "keyguard",
	Short: "API key guard for tagged HTTP routes",
}

func Execute() error { return rootCmd.Execute() }

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".keyguard", "config.yaml")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "yaml", "output format: json|yaml")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config file path")

	rootCmd.AddCommand(cmdServe(), cmdConfig(), cmdVersion())

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help",
		Short: "Show help",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().Help()
		},
	})
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Use -h for help, for example: keyguard serve --addr :8085")
	}
}
