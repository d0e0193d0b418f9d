package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/dentaldiamondhn-bit/diamond-link-sub001/cmd/http"
	systemcmd "github.com/dentaldiamondhn-bit/diamond-link-sub001/cmd/system"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/constants"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "Diamond Link dental clinic backend.",
	Long: `Diamond Link runs the back office of a dental clinic: patient intake,
clinical records, consents, scheduling, promotions and staff access control.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
