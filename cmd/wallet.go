package cmd

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/accounts"
	"github.com/tranvictor/vaultctl/util/account"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage your wallets",
	Long:  ``,
}

var addWalletCmd = &cobra.Command{
	Use:   "add",
	Short: "Import a private key into an encrypted keystore",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := accounts.NewStore(accounts.DefaultDir())

		key, err := accounts.ReadSecret("Private key (hex, with or without 0x): ")
		if err != nil {
			return err
		}
		if _, _, err := account.PrivateKeyFromHex(key); err != nil {
			return err
		}
		pwd, err := accounts.ReadSecret("Passphrase to encrypt the keystore: ")
		if err != nil {
			return err
		}
		if len(pwd) < 8 {
			return errors.New("use a passphrase of at least 8 characters")
		}
		confirm, err := accounts.ReadSecret("Repeat the passphrase: ")
		if err != nil {
			return err
		}
		if confirm != pwd {
			return errors.New("passphrases do not match")
		}
		path, err := store.StorePrivateKeyWithKeystore(key, pwd)
		if err != nil {
			return err
		}
		address, err := accounts.VerifyKeystore(path)
		if err != nil {
			return err
		}

		appUI.Info("Please enter description of this wallet, it will be used to search your wallet by keywords")
		desc := appUI.Ask(nil)
		if err := store.StoreAccountRecord(accounts.AccDesc{
			Address: address,
			Kind:    accounts.KindKeystore,
			Keypath: path,
			Desc:    desc,
		}); err != nil {
			appUI.Error("Couldn't store your wallet info: %s. Abort.", err)
			return reported(err)
		}
		appUI.Success("Stored %s with its keystore at %s.", address, path)
		appUI.Info("Your wallet is added successfully. You can check your list of wallets using the following command:\n> vaultctl wallet list")
		return nil
	},
}

var listWalletCmd = &cobra.Command{
	Use:   "list",
	Short: "List all of the wallets you added",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := accounts.NewStore(accounts.DefaultDir())
		accs := store.GetAccounts()
		if len(accs) == 0 {
			appUI.Warn("No wallets in %s yet. Add one with: vaultctl wallet add", store.Dir())
			return
		}
		addrs := make([]string, 0, len(accs))
		for addr := range accs {
			addrs = append(addrs, addr)
		}
		sort.Strings(addrs)
		rows := [][]string{}
		for _, addr := range addrs {
			d := accs[addr]
			rows = append(rows, []string{addr, d.Kind, d.Desc})
		}
		appUI.Table([]string{"Address", "Kind", "Description"}, rows)
	},
}

func init() {
	walletCmd.AddCommand(addWalletCmd, listWalletCmd)
	rootCmd.AddCommand(walletCmd)
}
