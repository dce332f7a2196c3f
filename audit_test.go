package quill_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillsec/quill"
)

func auditSettings(t *testing.T, cipher string) quill.Settings {
	t.Helper()

	return quill.Settings{
		Apps: map[string]quill.AppSettings{
			"app": {
				Environments: []string{"dev", "prod"},
				Vaults: map[string]quill.VaultSettings{
					"default": {
						Cipher:      cipher,
						StorageRoot: t.TempDir(),
						Password:    quill.PasswordSource{Type: "value", Value: "audit-test-password"},
					},
				},
			},
		},
	}
}

func sweepRecords(t *testing.T, settings quill.Settings, environments []string) []quill.Record {
	t.Helper()

	records, err := quill.Sweep(settings, "app", environments, quill.Overrides{})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	return records
}

func putForAudit(t *testing.T, settings quill.Settings, prefix, environment, name, value string) {
	t.Helper()

	cfg, err := quill.Resolve(settings, "app", prefix, quill.Overrides{})
	if err != nil {
		t.Fatalf("Failed to resolve config: %v", err)
	}
	if err := quill.NewStore(cfg).Put(environment, name, []byte(value)); err != nil {
		t.Fatalf("Failed to put %s: %v", name, err)
	}
}

func findingsFor(report quill.Report, check string) []quill.Finding {
	var matched []quill.Finding
	for _, finding := range report.Findings {
		if finding.Check == check {
			matched = append(matched, finding)
		}
	}
	return matched
}

func TestSimilarSecretsAreBothFlagged(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "p1", "Summer2023!")
	putForAudit(t, settings, "default", "dev", "p2", "Summer2023#")

	records := sweepRecords(t, settings, nil)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	report := quill.Audit(records, quill.DefaultPolicy())
	similar := findingsFor(report, quill.CheckSimilarity)
	if len(similar) != 2 {
		t.Fatalf("Expected both sides of the pair to be flagged, got %d findings", len(similar))
	}

	flagged := map[string]bool{}
	for _, finding := range similar {
		for _, name := range []string{"p1", "p2"} {
			if strings.HasSuffix(finding.Path, "/"+name) {
				flagged[name] = true
			}
		}
	}
	if !flagged["p1"] || !flagged["p2"] {
		t.Errorf("Expected findings naming both secrets, got %v", similar)
	}
}

func TestDissimilarSecretsPassSimilarityCheck(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "p1", "xK9#mQ2$vL8pWn4z")
	putForAudit(t, settings, "default", "dev", "p2", "Tr7!bJ3&cF5yHd1s")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if similar := findingsFor(report, quill.CheckSimilarity); len(similar) != 0 {
		t.Errorf("Expected no similarity findings, got %v", similar)
	}
}

func TestSimilarityCheckRunsAcrossEnvironments(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "p1", "Correct-Horse-Battery-1")
	putForAudit(t, settings, "default", "prod", "p2", "Correct-Horse-Battery-2")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if similar := findingsFor(report, quill.CheckSimilarity); len(similar) != 2 {
		t.Errorf("Similarity must compare the full flattened set, got %v", similar)
	}
}

func TestSimilarityCheckCanBeDisabled(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "p1", "Summer2023!Summer")
	putForAudit(t, settings, "default", "dev", "p2", "Summer2023#Summer")

	policy := quill.DefaultPolicy()
	policy.Similarity = false

	report := quill.Audit(sweepRecords(t, settings, nil), policy)
	if similar := findingsFor(report, quill.CheckSimilarity); len(similar) != 0 {
		t.Errorf("Expected no similarity findings when disabled, got %v", similar)
	}
}

func TestMinimumLengthCheck(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "too-short", "short")
	putForAudit(t, settings, "default", "dev", "long-enough", "aB3$longEnoughValue9")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	short := findingsFor(report, quill.CheckMinLength)
	if len(short) != 1 {
		t.Fatalf("Expected exactly one min-length finding, got %v", short)
	}
	if !strings.HasSuffix(short[0].Path, "/too-short") {
		t.Errorf("Expected the 5-byte value to be flagged, got %s", short[0].Path)
	}
}

func TestMinimumLengthAlwaysRuns(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "short", "tiny")

	// a zeroed policy still applies the default threshold
	report := quill.Audit(sweepRecords(t, settings, nil), quill.Policy{})
	if short := findingsFor(report, quill.CheckMinLength); len(short) != 1 {
		t.Errorf("Expected the min-length check to run on a zero policy, got %v", short)
	}
}

func TestPlaintextCipherIsFlagged(t *testing.T) {
	settings := auditSettings(t, "plaintext")
	putForAudit(t, settings, "default", "dev", "anything", "aB3$longEnoughValue9")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if plaintext := findingsFor(report, quill.CheckPlaintextCipher); len(plaintext) != 1 {
		t.Errorf("Expected the plaintext-cipher check to flag the secret, got %v", plaintext)
	}

	policy := quill.DefaultPolicy()
	policy.PlaintextCheck = false
	report = quill.Audit(sweepRecords(t, settings, nil), policy)
	if plaintext := findingsFor(report, quill.CheckPlaintextCipher); len(plaintext) != 0 {
		t.Errorf("Expected no plaintext findings when disabled, got %v", plaintext)
	}
}

func TestDigitAndUppercaseChecksAreOptIn(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "weak", "alllowercasenodigits")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if len(findingsFor(report, quill.CheckDigits)) != 0 || len(findingsFor(report, quill.CheckUppercase)) != 0 {
		t.Error("Digit and uppercase checks must be disabled by default")
	}

	policy := quill.DefaultPolicy()
	policy.RequireDigits = true
	policy.RequireUppercase = true

	report = quill.Audit(sweepRecords(t, settings, nil), policy)
	if len(findingsFor(report, quill.CheckDigits)) != 1 {
		t.Errorf("Expected a digits finding, got %v", report.Findings)
	}
	if len(findingsFor(report, quill.CheckUppercase)) != 1 {
		t.Errorf("Expected an uppercase finding, got %v", report.Findings)
	}
}

func TestChecksAreNonExclusive(t *testing.T) {
	settings := auditSettings(t, "plaintext")
	putForAudit(t, settings, "default", "dev", "terrible", "abc")

	policy := quill.DefaultPolicy()
	policy.RequireDigits = true
	policy.RequireUppercase = true

	report := quill.Audit(sweepRecords(t, settings, nil), policy)

	// one secret, four independent findings
	for _, check := range []string{
		quill.CheckPlaintextCipher,
		quill.CheckMinLength,
		quill.CheckDigits,
		quill.CheckUppercase,
	} {
		if len(findingsFor(report, check)) != 1 {
			t.Errorf("Expected a %s finding, got %v", check, report.Findings)
		}
	}
}

func TestAggregateResult(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "good", "xK9#mQ2$vL8pWn4z")

	report := quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if report.Failed() {
		t.Errorf("Expected a clean audit to pass, got %v", report.Findings)
	}
	if report.Checked != 1 {
		t.Errorf("Expected 1 checked secret, got %d", report.Checked)
	}

	putForAudit(t, settings, "default", "prod", "bad", "short")
	report = quill.Audit(sweepRecords(t, settings, nil), quill.DefaultPolicy())
	if !report.Failed() {
		t.Error("One flagged secret anywhere must fail the audit")
	}
}

func TestSweepToleratesMissingDirectories(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "only-dev", "xK9#mQ2$vL8pWn4z")

	// prod has no directory at all; the sweep must treat it as empty
	records := sweepRecords(t, settings, nil)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Environment != "dev" || records[0].Name != "only-dev" {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestSweepRecordOrderIsDeterministic(t *testing.T) {
	settings := auditSettings(t, "aes256")
	app := settings.Apps["app"]
	app.Vaults["payments"] = quill.VaultSettings{
		Cipher:      "aes256",
		StorageRoot: app.Vaults["default"].StorageRoot,
		Password:    quill.PasswordSource{Type: "value", Value: "audit-test-password"},
	}
	settings.Apps["app"] = app

	putForAudit(t, settings, "payments", "dev", "b-secret", "xK9#mQ2$vL8pWn4z")
	putForAudit(t, settings, "default", "prod", "a-secret", "Tr7!bJ3&cF5yHd1s")
	putForAudit(t, settings, "default", "dev", "z-secret", "qW5^nM8*xC2kRt6v")

	records := sweepRecords(t, settings, nil)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	// environments in declared order, prefixes sorted, names sorted
	expected := []struct{ environment, prefix, name string }{
		{"dev", "default", "z-secret"},
		{"dev", "payments", "b-secret"},
		{"prod", "default", "a-secret"},
	}
	for i, want := range expected {
		record := records[i]
		if record.Environment != want.environment || record.Config.Prefix != want.prefix || record.Name != want.name {
			t.Errorf("records[%d]: expected %v, got %s/%s/%s",
				i, want, record.Environment, record.Config.Prefix, record.Name)
		}
	}
}

func TestSweepPropagatesDecryptFailures(t *testing.T) {
	settings := auditSettings(t, "aes256")
	putForAudit(t, settings, "default", "dev", "token", "xK9#mQ2$vL8pWn4z")

	app := settings.Apps["app"]
	vault := app.Vaults["default"]
	vault.Password = quill.PasswordSource{Type: "value", Value: "a different password"}
	app.Vaults["default"] = vault
	settings.Apps["app"] = app

	_, err := quill.Sweep(settings, "app", nil, quill.Overrides{})
	if !errors.Is(err, quill.ErrInvalidEncryptionKey) {
		t.Errorf("Expected ErrInvalidEncryptionKey to end the sweep, got %v", err)
	}
}

func TestSweepWithoutVaults(t *testing.T) {
	settings := quill.Settings{Apps: map[string]quill.AppSettings{}}

	_, err := quill.Sweep(settings, "app", nil, quill.Overrides{})
	if !errors.Is(err, quill.ErrNoVaultsConfigured) {
		t.Errorf("Expected ErrNoVaultsConfigured, got %v", err)
	}
}
