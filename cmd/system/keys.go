package system

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
)

// NewKeysCommand prints a fresh PASETO key set for authentication.paseto.
func NewKeysCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate PASETO keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys pasetotoken.Keys
			switch pasetotoken.Mode(mode) {
			case pasetotoken.ModeLocal:
				keys = pasetotoken.NewLocalKeys()
			case pasetotoken.ModePublic:
				keys = pasetotoken.NewPublicKeys()
			default:
				return fmt.Errorf("unknown mode %q (use local|public)", mode)
			}

			ks := keys.Strings()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode: %s\n", ks.Mode)
			if ks.SymmetricHex != "" {
				fmt.Fprintf(out, "local_key_hex: %s\n", ks.SymmetricHex)
			}
			if ks.SecretHex != "" {
				fmt.Fprintf(out, "secret_key_hex: %s\n", ks.SecretHex)
				fmt.Fprintf(out, "public_key_hex: %s\n", ks.PublicHex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "key mode: local or public")
	return cmd
}
