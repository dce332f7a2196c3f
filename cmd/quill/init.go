package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillsec/quill"
)

var initCmd = &cobra.Command{
	Use:   "init <app-id>",
	Short: "Write a starter settings file for an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		storageRoot := storageRootFlag
		if storageRoot == "" {
			storageRoot = fmt.Sprintf("~/.local/share/quill/%s", id)
		}
		cipher := cipherFlag
		if cipher == "" {
			cipher = "aes256"
		}

		settings, err := quill.LoadSettings(settingsPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warnf("starting a fresh settings file: %v", err)
			}
			settings = quill.Settings{}
		}
		if settings.Apps == nil {
			settings.Apps = map[string]quill.AppSettings{}
		}
		if _, exists := settings.Apps[id]; exists {
			return fmt.Errorf("app %q is already configured in %s", id, settingsPath)
		}

		settings.Apps[id] = quill.AppSettings{
			Environments: []string{"dev", "test", "prod"},
			Vaults: map[string]quill.VaultSettings{
				quill.DefaultPrefix: {
					Cipher:      cipher,
					StorageRoot: storageRoot,
					Password: quill.PasswordSource{
						Type: "env",
						Name: fmt.Sprintf("%s_SECRETS_PASSWORD", envVarName(id)),
					},
				},
			},
		}

		if err := quill.SaveSettings(settings, settingsPath); err != nil {
			return err
		}

		logger.Infof("wrote settings for app %s to %s", id, settingsPath)
		return nil
	},
}

// envVarName uppercases an app ID into an environment-variable-safe name.
func envVarName(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-('a'-'A'))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
