package cmd

import (
	"fmt"
	"os"

	"github.com/kostaleonard/leocoin/config"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/spf13/cobra"
)

var (
	keyOutPath string
	keyEncrypt bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 key pair for signing and mining rewards",
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := transaction.GenerateEd25519Signer()
		if err != nil {
			return err
		}
		if keyEncrypt {
			passphrase := os.Getenv(config.EnvKeyPassphrase)
			if passphrase == "" {
				return fmt.Errorf("--encrypt needs %s", config.EnvKeyPassphrase)
			}
			err = config.SaveEncryptedEd25519PrivKey(keyOutPath, signer.PrivateKey(), []byte(passphrase))
		} else {
			err = config.SaveEd25519PrivKey(keyOutPath, signer.PrivateKey())
		}
		if err != nil {
			return fmt.Errorf("save private key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "private key written to %s\npublic key: %s\n", keyOutPath, signer.PublicKey())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().BoolVar(&keyEncrypt, "encrypt", false, "Encrypt the key file with LEOCOIN_KEY_PASSPHRASE")
	keygenCmd.Flags().StringVarP(&keyOutPath, "out", "o", "node.key", "File to write the hex private key to")
}
