// Package normalizer maps raw provider records to canonical inventory records.
//
// Every mapping is a pure function of its input: nothing here reads the clock or calls a
// provider. A record that cannot be mapped produces one skipped diagnostic and never stops the
// remaining records from being processed.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/types"
)

var (
	ErrMissingIdentity = errors.New("missing identity")
	ErrMissingValidity = errors.New("missing validity window")
	ErrMissingField    = errors.New("missing required field")
)

type DiagnosticKind int

const (
	DiagnosticSkipped       DiagnosticKind = iota + 1 // record could not be mapped and was dropped
	DiagnosticIdentityProxy                           // record was emitted with a substitute identity key
)

var diagnosticKindToStr = map[DiagnosticKind]string{
	DiagnosticSkipped:       "skipped",
	DiagnosticIdentityProxy: "identity_proxy",
}

func (k DiagnosticKind) String() string               { return diagnosticKindToStr[k] }
func (k DiagnosticKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// Diagnostic one per-record finding
type Diagnostic struct {
	Kind        DiagnosticKind    `json:"kind"`
	Environment types.Environment `json:"environment"`
	Record      string            `json:"record"` // key or certificate
	RecordID    string            `json:"record_id,omitempty"`
	Message     string            `json:"message"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s %s %s %s: %s", d.Kind, d.Environment, d.Record, d.RecordID, d.Message)
}

// Result records and diagnostics of one normalization run
type Result struct {
	Keys         []*types.Key         `json:"keys"`
	Certificates []*types.Certificate `json:"certificates"`
	Diagnostics  []*Diagnostic        `json:"diagnostics"`
}

// Batch ingestion payload of the normalized records
func (r *Result) Batch() *types.Batch {
	return &types.Batch{Keys: r.Keys, Certificates: r.Certificates}
}

// Skipped diagnostics of dropped records
func (r *Result) Skipped() []*Diagnostic {
	return fx.Filter(r.Diagnostics, func(d *Diagnostic) bool { return d.Kind == DiagnosticSkipped })
}

// Err aggregate of skipped records, nil if every record was mapped
func (r *Result) Err() error {
	var result *multierror.Error
	for _, d := range r.Skipped() {
		result = multierror.Append(result, d)
	}
	return result.ErrorOrNil()
}

// Normalizer accumulate normalized records of one collection run
type Normalizer struct {
	result Result
}

func New() *Normalizer {
	return &Normalizer{
		result: Result{
			Keys:         []*types.Key{},
			Certificates: []*types.Certificate{},
			Diagnostics:  []*Diagnostic{},
		},
	}
}

func (n *Normalizer) Result() *Result { return &n.result }

func (n *Normalizer) addKey(env types.Environment, recordID string, key *types.Key, err error) {
	if err != nil {
		n.skip(env, "key", recordID, err)
		return
	}

	n.result.Keys = append(n.result.Keys, key.Canonicalize())
}

func (n *Normalizer) addCertificate(env types.Environment, recordID string, cert *types.Certificate, proxy string, err error) {
	if err != nil {
		n.skip(env, "certificate", recordID, err)
		return
	}

	if proxy != "" {
		n.result.Diagnostics = append(n.result.Diagnostics, &Diagnostic{
			Kind:        DiagnosticIdentityProxy,
			Environment: env,
			Record:      "certificate",
			RecordID:    cert.SerialNumber,
			Message:     "no certificate serial exposed; identity is " + proxy,
		})
	}

	n.result.Certificates = append(n.result.Certificates, cert.Canonicalize())
}

func (n *Normalizer) skip(env types.Environment, record, recordID string, err error) {
	log.Infof("skip %s %s %s: %v", env, record, recordID, err)

	n.result.Diagnostics = append(n.result.Diagnostics, &Diagnostic{
		Kind:        DiagnosticSkipped,
		Environment: env,
		Record:      record,
		RecordID:    recordID,
		Message:     err.Error(),
	})
}

// dashed upper snake provider enum to descriptor, e.g. RSA_4096 -> RSA-4096
func dashed(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), "_", "-") }

// canonicalSerial lower case hex without separators
func canonicalSerial(s string) string {
	return strings.ToLower(strings.NewReplacer(":", "", " ", "", "-", "").Replace(strings.TrimSpace(s)))
}

func nonEmptyP(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func defaultString(s, def string) string { return fx.Ternary(s == "", def, s) }
