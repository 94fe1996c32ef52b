package types

import (
	"encoding/json"
	"strings"
)

// Environment where a key or certificate was discovered
type Environment int

const (
	EnvironmentNone Environment = iota
	EnvironmentAWS
	EnvironmentAzure
	EnvironmentGCP
	EnvironmentVMware
	EnvironmentOnPrem
)

// KeyState canonical key lifecycle state
type KeyState int

const (
	KeyStateNone KeyState = iota
	KeyStateEnabled
	KeyStateDisabled
	KeyStatePendingDeletion
	KeyStateUnavailable
)

// ChainStatus provider reported certificate status
type ChainStatus int

const (
	ChainStatusNone ChainStatus = iota
	ChainStatusValid
	ChainStatusExpired
	ChainStatusRevoked
	ChainStatusUntrusted
)

// issuance types reported by normalizers; the field itself is free-form
const (
	IssuanceACME      = "ACME"
	IssuanceManual    = "Manual"
	IssuanceAutomated = "Automated"
	IssuanceImported  = "Imported"
)

type enumTable[T comparable] struct {
	toStr map[T]string
	toVal map[string]T
}

// newEnumTable builds lookup tables; the first name of each value is its canonical tag,
// the rest are accepted aliases. Lookups are case-insensitive.
func newEnumTable[T comparable](names map[T][]string) *enumTable[T] {
	t := &enumTable[T]{
		toStr: map[T]string{},
		toVal: map[string]T{},
	}

	for v, strs := range names {
		t.toStr[v] = strs[0]
		for _, s := range strs {
			t.toVal[strings.ToLower(s)] = v
		}
	}

	return t
}

func (t *enumTable[T]) str(v T) string { return t.toStr[v] }
func (t *enumTable[T]) val(s string) T { return t.toVal[strings.ToLower(strings.TrimSpace(s))] }

func (t *enumTable[T]) unmarshal(data []byte, v *T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*v = t.val(s)
	return nil
}

var (
	environments = newEnumTable(map[Environment][]string{
		EnvironmentNone:   {""},
		EnvironmentAWS:    {"AWS"},
		EnvironmentAzure:  {"Azure"},
		EnvironmentGCP:    {"GCP"},
		EnvironmentVMware: {"VMware"},
		EnvironmentOnPrem: {"On-Prem", "ON_PREM", "onprem"},
	})

	keyStates = newEnumTable(map[KeyState][]string{
		KeyStateNone:            {""},
		KeyStateEnabled:         {"Enabled"},
		KeyStateDisabled:        {"Disabled"},
		KeyStatePendingDeletion: {"PendingDeletion", "PENDING_DELETION"},
		KeyStateUnavailable:     {"Unavailable"},
	})

	chainStatuses = newEnumTable(map[ChainStatus][]string{
		ChainStatusNone:      {""},
		ChainStatusValid:     {"Valid"},
		ChainStatusExpired:   {"Expired"},
		ChainStatusRevoked:   {"Revoked"},
		ChainStatusUntrusted: {"Untrusted Root", "UNTRUSTED", "Untrusted"},
	})
)

func (e Environment) String() string               { return environments.str(e) }
func (e Environment) MarshalJSON() ([]byte, error) { return json.Marshal(e.String()) }
func (e *Environment) UnmarshalJSON(data []byte) error {
	return environments.unmarshal(data, e)
}
func (e Environment) MarshalYAML() (interface{}, error) { return e.String(), nil }
func (e *Environment) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*e = StrToEnvironment(s)
	return nil
}

// StrToEnvironment returns EnvironmentNone for unknown tags
func StrToEnvironment(s string) Environment { return environments.val(s) }

// Environments all known environments in declaration order
func Environments() []Environment {
	return []Environment{EnvironmentAWS, EnvironmentAzure, EnvironmentGCP, EnvironmentVMware, EnvironmentOnPrem}
}

func (st KeyState) String() string               { return keyStates.str(st) }
func (st KeyState) MarshalJSON() ([]byte, error) { return json.Marshal(st.String()) }
func (st *KeyState) UnmarshalJSON(data []byte) error {
	return keyStates.unmarshal(data, st)
}
func (st KeyState) MarshalYAML() (interface{}, error) { return st.String(), nil }
func (st *KeyState) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*st = StrToKeyState(s)
	return nil
}

func StrToKeyState(s string) KeyState { return keyStates.val(s) }

func (st ChainStatus) String() string               { return chainStatuses.str(st) }
func (st ChainStatus) MarshalJSON() ([]byte, error) { return json.Marshal(st.String()) }
func (st *ChainStatus) UnmarshalJSON(data []byte) error {
	return chainStatuses.unmarshal(data, st)
}
func (st ChainStatus) MarshalYAML() (interface{}, error) { return st.String(), nil }
func (st *ChainStatus) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*st = StrToChainStatus(s)
	return nil
}

func StrToChainStatus(s string) ChainStatus { return chainStatuses.val(s) }
