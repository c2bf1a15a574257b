// Command walletcli is a thin out-of-core driver for the wallet library
// (spec.md §6.5: "the CLI is out of scope; its commands... are named only
// to fix end-to-end scenarios"). It exists to exercise the library, not
// to be a product surface: no transport, oracle, or remote store is wired
// in, so `sync` and `send` operate in local-only mode.
//
// Grounded on the teacher's cmd/cli/wallet.go: a cobra root command with
// a PersistentPreRunE logging/env middleware, one subcommand per
// operation, and a JSON keystore file encrypted at rest.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sphere-wallet/wallet/core"
)

func cmdContext() context.Context { return context.Background() }

var logger = logrus.StandardLogger()

func initMiddleware(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	lvl := os.Getenv("WALLET_LOG_LEVEL")
	if lvl == "" {
		lvl = "info"
	}
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		return err
	}
	logger.SetLevel(parsed)
	core.SetLogger(logger)
	return nil
}

// keystoreFile is the on-disk shape written by `wallet create`/`wallet
// init`: an opaque encrypted envelope around the raw seed bytes.
type keystoreFile struct {
	Envelope string `json:"envelope"`
}

func writeKeystore(path string, seed []byte, password string) error {
	blob, err := core.EncryptSimple(seed, password)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(keystoreFile{Envelope: blob}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readKeystore(path, password string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(raw, &ks); err != nil {
		return nil, err
	}
	return core.DecryptSimple(ks.Envelope, password)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "wallet",
		Short:             "HD wallet management for TXF tokens",
		PersistentPreRunE: initMiddleware,
	}
	root.AddCommand(createCmd(), initCmd(), balanceCmd(), syncCmd(), sendCmd())
	return root
}

func createCmd() *cobra.Command {
	var bits int
	var out, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new mnemonic and save an encrypted keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			mnemonic, err := core.GenerateMnemonic(bits)
			if err != nil {
				return err
			}
			seed, err := core.MnemonicToSeed(mnemonic, "")
			if err != nil {
				return err
			}
			if err := writeKeystore(out, seed, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "keystore saved to %s\n", out)
			fmt.Fprintf(cmd.OutOrStdout(), "mnemonic (write it down): %s\n", mnemonic)
			return nil
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 128, "entropy bits: 128 or 256")
	cmd.Flags().StringVar(&out, "out", "wallet.json", "keystore output path")
	cmd.Flags().StringVar(&password, "password", "", "keystore password (required)")
	return cmd
}

func initCmd() *cobra.Command {
	var mnemonic, passphrase, out, password string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Import an existing mnemonic into an encrypted keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			if !core.ValidateMnemonic(mnemonic) {
				return core.NewError(core.ErrInvalidMnemonic, "mnemonic failed validation")
			}
			seed, err := core.MnemonicToSeed(mnemonic, passphrase)
			if err != nil {
				return err
			}
			if err := writeKeystore(out, seed, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "keystore saved to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "existing BIP-39 mnemonic")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "optional BIP-39 passphrase")
	cmd.Flags().StringVar(&out, "out", "wallet.json", "keystore output path")
	cmd.Flags().StringVar(&password, "password", "", "keystore password (required)")
	return cmd
}

func deriveIdentity(path, password string, index uint32) (core.Identity, error) {
	seed, err := readKeystore(path, password)
	if err != nil {
		return core.Identity{}, err
	}
	defer core.Wipe(seed)

	root, err := core.MasterFromSeed(seed)
	if err != nil {
		return core.Identity{}, err
	}
	var tokenType [32]byte
	ctx := cmdContext()
	ctrl, err := core.InitIdentityController(ctx, core.IdentityConfig{
		Root:      root,
		TokenType: tokenType,
	})
	if err != nil {
		return core.Identity{}, err
	}
	defer core.ClearIdentityController()
	if err := ctrl.SwitchAddress(ctx, index); err != nil {
		return core.Identity{}, err
	}
	return ctrl.Identity(), nil
}

func balanceCmd() *cobra.Command {
	var wallet, password string
	var index uint32
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the derived address for the keystore (offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := deriveIdentity(wallet, password, index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", id.L1Address)
			fmt.Fprintf(cmd.OutOrStdout(), "direct:  %s\n", id.DirectAddress)
			fmt.Fprintln(cmd.OutOrStdout(), "balance lookup requires a remote/transport provider (out of core scope)")
			return nil
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "wallet.json", "keystore path")
	cmd.Flags().StringVar(&password, "password", "", "keystore password")
	cmd.Flags().Uint32Var(&index, "index", 0, "address index")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger a remote sync (requires a remote provider to be wired in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "no remote provider configured; nothing to sync")
			return nil
		},
	}
	return cmd
}

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a token transfer (requires a transport provider to be wired in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("no transport provider configured")
		},
	}
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
