package main

import (
	"github.com/spf13/cobra"

	"github.com/quillsec/quill"
)

const defaultSettingsPath = "~/.config/quill/settings.yaml"

var (
	settingsPath string
	appID        string

	prefixFlag      string
	cipherFlag      string
	storageRootFlag string
	passwordFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill stores encrypted application secrets as files, partitioned by environment and prefix.",
	Long: `Quill is a local, file-backed secret store for application configuration
values. Secrets live as individual encrypted files under
storage_root/<environment>/<prefix>/<name>; which cipher, storage root, and
password apply is resolved from a declared settings file, overridable per
invocation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", defaultSettingsPath, "path to the declared settings file")
	rootCmd.PersistentFlags().StringVar(&appID, "app", "", "application identifier (required)")
	rootCmd.PersistentFlags().StringVarP(&prefixFlag, "prefix", "p", "", "namespace prefix override")
	rootCmd.PersistentFlags().StringVar(&cipherFlag, "cipher", "", "cipher override")
	rootCmd.PersistentFlags().StringVar(&storageRootFlag, "storage-root", "", "storage root override")
	rootCmd.PersistentFlags().StringVar(&passwordFlag, "password", "", "password override")
	rootCmd.PersistentFlags().BoolVarP(&logger.Verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(getCmd, setCmd, editCmd, listCmd, pathCmd, auditCmd, initCmd)
}

func overrides() quill.Overrides {
	return quill.Overrides{
		Cipher:      cipherFlag,
		StorageRoot: storageRootFlag,
		Prefix:      prefixFlag,
		Password:    passwordFlag,
	}
}

// resolveStore loads the settings and resolves the store the invocation
// operates on.
func resolveStore() (*quill.Store, error) {
	settings, err := quill.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	cfg, err := quill.Resolve(settings, appID, prefixFlag, overrides())
	if err != nil {
		return nil, err
	}

	logger.Infof("resolved app %s prefix %s (cipher %s)", cfg.AppID, cfg.Prefix, cfg.Cipher().Name())
	return quill.NewStore(cfg), nil
}
