package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var allowOverwrite bool

func init() {
	setCmd.Flags().BoolVar(&allowOverwrite, "overwrite", false, "replace the secret if it already exists")
}

var setCmd = &cobra.Command{
	Use:   "set <environment> <name> [value]",
	Short: "Encrypt and store one secret",
	Long: `Encrypt and store one secret. The value is taken from the argument when
given, otherwise read from stdin. Without --overwrite, storing under an
existing name is rejected.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		environment, name := args[0], args[1]

		var value []byte
		if len(args) == 3 {
			value = []byte(args[2])
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read value from stdin: %w", err)
			}
			value = []byte(strings.TrimRight(string(data), "\n"))
		}

		store, err := resolveStore()
		if err != nil {
			return err
		}

		if allowOverwrite {
			err = store.Put(environment, name, value)
		} else {
			err = store.Insert(environment, name, value)
		}
		if err != nil {
			return err
		}

		path, err := store.SecretPath(environment, name)
		if err != nil {
			return err
		}
		logger.Infof("stored secret at %s", path)
		return nil
	},
}
