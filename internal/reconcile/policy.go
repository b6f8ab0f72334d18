// Package reconcile applies a candidate admin record to the store with
// create-or-update semantics.
//
// Import Path: kv-shepherd.io/adminseed/internal/reconcile
package reconcile

import "kv-shepherd.io/adminseed/internal/domain"

// Policy names the fields a reconciliation owns on an existing record.
// Everything else on the stored record is left as found.
type Policy struct {
	// SecretField is always overwritten with the current secret hash.
	SecretField string
	// RoleField is always forced to AdminRole.
	RoleField string
	AdminRole string
	// CopiedFields are copied from the candidate when present there.
	CopiedFields []string
}

// DefaultPolicy manages the secret, the role marker, and the name and
// contact fields of a user document.
func DefaultPolicy() Policy {
	return Policy{
		SecretField:  "password",
		RoleField:    "role",
		AdminRole:    "admin",
		CopiedFields: []string{"firstname", "lastname", "mobile"},
	}
}

// Overrides returns the field set an update writes: synthesized values,
// then copied identity attributes, then the forced role and secret.
// Later entries win, so the role and secret are never displaced by a
// synthesized value of the same name.
func (p Policy) Overrides(candidate, synthesized domain.Record, secretHash string) domain.Record {
	out := synthesized.Clone()
	for _, f := range p.CopiedFields {
		if v, ok := candidate[f]; ok {
			out[f] = v
		}
	}
	out[p.RoleField] = p.AdminRole
	out[p.SecretField] = secretHash
	return out
}
