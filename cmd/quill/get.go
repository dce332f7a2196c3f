package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var printPlain bool

func init() {
	getCmd.Flags().BoolVar(&printPlain, "plain", false, "print the decrypted value instead of a masked placeholder")
}

var getCmd = &cobra.Command{
	Use:   "get <environment> <name>",
	Short: "Fetch and decrypt one secret",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		environment, name := args[0], args[1]

		store, err := resolveStore()
		if err != nil {
			return err
		}

		secret, err := store.Fetch(environment, name)
		if err != nil {
			return err
		}

		if printPlain {
			fmt.Println(secret.PlainTextString())
		} else {
			fmt.Println(secret.String())
		}
		return nil
	},
}
