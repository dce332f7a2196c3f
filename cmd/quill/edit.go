package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quillsec/quill"
)

var editorCommand string

func init() {
	editCmd.Flags().StringVar(&editorCommand, "editor", "", "editor command (defaults to $EDITOR, then vi)")
}

var editCmd = &cobra.Command{
	Use:   "edit <environment> <name>",
	Short: "Decrypt a secret into an editor and re-encrypt the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		environment, name := args[0], args[1]

		store, err := resolveStore()
		if err != nil {
			return err
		}

		command := editorCommand
		if command == "" {
			command = os.Getenv("EDITOR")
		}
		if command == "" {
			command = "vi"
		}

		if err := quill.EditSecret(store, environment, name, quill.NewShellEditor(command)); err != nil {
			return err
		}

		logger.Infof("updated secret %s/%s/%s", environment, store.Config().Prefix, name)
		return nil
	},
}
