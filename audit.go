package quill

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const (
	// DefaultMinLength is the minimum secret length the audit enforces when
	// no threshold is configured.
	DefaultMinLength = 16

	// similarityThreshold is the normalized similarity score above which two
	// secrets are flagged as too similar. Strictly greater-than.
	similarityThreshold = 0.5
)

// Audit check identifiers, reported with each finding.
const (
	CheckPlaintextCipher = "plaintext-cipher"
	CheckSimilarity      = "similarity"
	CheckDigits          = "digits"
	CheckUppercase       = "uppercase"
	CheckMinLength       = "min-length"
)

// Policy enumerates which audit checks run and their parameters. The
// minimum-length check always runs.
type Policy struct {
	MinLength        int
	Similarity       bool
	PlaintextCheck   bool
	RequireDigits    bool
	RequireUppercase bool
}

// DefaultPolicy enables the plaintext and similarity checks; digit and
// uppercase requirements are opt-in.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      DefaultMinLength,
		Similarity:     true,
		PlaintextCheck: true,
	}
}

// Record is one decrypted secret held in memory for the duration of an
// audit pass. Records are never persisted.
type Record struct {
	Config      ResolvedConfig
	Environment string
	Name        string
	Value       Secret

	// Path is the secret's resolved file path, used to identify the secret
	// in findings.
	Path string
}

// Finding reports one check flagging one secret.
type Finding struct {
	Path   string
	Check  string
	Detail string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: [%s] %s", f.Path, f.Check, f.Detail)
}

// Report aggregates the findings of one audit pass.
type Report struct {
	Checked  int
	Findings []Finding
}

// Failed reports whether any check flagged any secret.
func (r Report) Failed() bool {
	return len(r.Findings) > 0
}

// Sweep collects every secret across the application's environment x prefix
// combinations into audit records. Environments default to the application's
// declared list; a prefix override narrows the sweep to that prefix. Missing
// prefix or environment directories are tolerated as "no secrets here";
// every other error ends the sweep. Record order is deterministic:
// environments in the given order, prefixes sorted, names sorted.
func Sweep(settings Settings, appID string, environments []string, overrides Overrides) ([]Record, error) {
	app, exists := settings.Apps[appID]
	if !exists || len(app.Vaults) == 0 {
		return nil, fmt.Errorf("%w: app %q", ErrNoVaultsConfigured, appID)
	}

	if len(environments) == 0 {
		environments = app.Environments
	}

	prefixes := make([]string, 0, len(app.Vaults))
	for prefix := range app.Vaults {
		if overrides.Prefix != "" && prefix != overrides.Prefix {
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoConfigurationForPrefix, overrides.Prefix)
	}
	sort.Strings(prefixes)

	var records []Record
	for _, environment := range environments {
		for _, prefix := range prefixes {
			prefixOverrides := overrides
			prefixOverrides.Prefix = prefix

			cfg, err := Resolve(settings, appID, prefix, prefixOverrides)
			if err != nil {
				return nil, err
			}

			store := NewStore(cfg)
			secrets, err := store.FetchAll(environment)
			if err != nil {
				if errors.Is(err, ErrUnknownPrefix) || errors.Is(err, ErrUnknownEnvironment) {
					continue
				}
				return nil, err
			}

			for _, secret := range secrets {
				path, err := SecretPath(cfg, environment, secret.Name)
				if err != nil {
					return nil, err
				}
				records = append(records, Record{
					Config:      cfg,
					Environment: environment,
					Name:        secret.Name,
					Value:       secret.Value,
					Path:        path,
				})
			}
		}
	}

	return records, nil
}

// Audit runs the policy's checks over the flattened record set. Checks are
// non-exclusive: a flagged secret is still examined by every remaining
// check. Findings are emitted in record order, with similarity pair findings
// appended last.
func Audit(records []Record, policy Policy) Report {
	minLength := policy.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	report := Report{Checked: len(records)}
	flag := func(record Record, check, detail string) {
		report.Findings = append(report.Findings, Finding{
			Path:   record.Path,
			Check:  check,
			Detail: detail,
		})
	}

	for _, record := range records {
		value := record.Value.PlainTextString()

		if policy.PlaintextCheck && record.Config.Cipher().Plaintext() {
			flag(record, CheckPlaintextCipher, "stored with the insecure plaintext cipher")
		}
		if len(value) < minLength {
			flag(record, CheckMinLength,
				fmt.Sprintf("value is %d bytes, shorter than the minimum of %d", len(value), minLength))
		}
		if policy.RequireDigits && !strings.ContainsFunc(value, unicode.IsDigit) {
			flag(record, CheckDigits, "value contains no digit")
		}
		if policy.RequireUppercase && !strings.ContainsFunc(value, unicode.IsUpper) {
			flag(record, CheckUppercase, "value contains no uppercase letter")
		}
	}

	if policy.Similarity {
		metric := metrics.NewLevenshtein()
		for i := 0; i < len(records); i++ {
			for j := i + 1; j < len(records); j++ {
				a, b := records[i], records[j]
				score := strutil.Similarity(a.Value.PlainTextString(), b.Value.PlainTextString(), metric)
				if score > similarityThreshold {
					flag(a, CheckSimilarity, fmt.Sprintf("too similar to %s (score %.2f)", b.Path, score))
					flag(b, CheckSimilarity, fmt.Sprintf("too similar to %s (score %.2f)", a.Path, score))
				}
			}
		}
	}

	return report
}
