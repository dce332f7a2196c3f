package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <environment>",
	Short: "List the secret names stored for an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := resolveStore()
		if err != nil {
			return err
		}

		names, err := store.List(args[0])
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <environment> <name>",
	Short: "Print the storage-root-relative path of a secret",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := resolveStore()
		if err != nil {
			return err
		}

		rel, err := store.RelativeSecretPath(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(rel)
		return nil
	},
}
