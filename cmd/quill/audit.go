package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillsec/quill"
)

var (
	auditEnvironments     []string
	minLength             int
	disableSimilarity     bool
	disablePlaintextCheck bool
	requireDigits         bool
	requireUppercase      bool
)

func init() {
	auditCmd.Flags().StringSliceVar(&auditEnvironments, "environments", nil, "environments to sweep (defaults to the app's declared list)")
	auditCmd.Flags().IntVar(&minLength, "min-length", quill.DefaultMinLength, "minimum secret length")
	auditCmd.Flags().BoolVar(&disableSimilarity, "disable-similarity", false, "skip the pairwise similarity check")
	auditCmd.Flags().BoolVar(&disablePlaintextCheck, "disable-plaintext-check", false, "skip flagging plaintext-cipher secrets")
	auditCmd.Flags().BoolVar(&requireDigits, "require-digits", false, "flag secrets containing no digit")
	auditCmd.Flags().BoolVar(&requireUppercase, "require-uppercase", false, "flag secrets containing no uppercase letter")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Scan every stored secret for weak or duplicated passwords",
	Long: `Audit decrypts all secrets across the application's environment and prefix
combinations and checks each one against the active policy. The command
exits non-zero when any check flags any secret.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := quill.LoadSettings(settingsPath)
		if err != nil {
			return err
		}

		records, err := quill.Sweep(settings, appID, auditEnvironments, overrides())
		if err != nil {
			return err
		}
		logger.Infof("audited %d secrets", len(records))

		policy := quill.Policy{
			MinLength:        minLength,
			Similarity:       !disableSimilarity,
			PlaintextCheck:   !disablePlaintextCheck,
			RequireDigits:    requireDigits,
			RequireUppercase: requireUppercase,
		}

		report := quill.Audit(records, policy)
		for _, finding := range report.Findings {
			logger.Warnf("%s", finding)
		}

		if report.Failed() {
			return fmt.Errorf("audit produced %d findings across %d secrets", len(report.Findings), report.Checked)
		}
		logger.Infof("no findings across %d secrets", report.Checked)
		return nil
	},
}
