// Package synth invents placeholder values for mandatory fields the caller
// did not supply.
//
// Import Path: kv-shepherd.io/adminseed/internal/synth
package synth

import "strings"

// Placeholder values written into synthesized fields.
const (
	PlaceholderName   = "Admin"
	PlaceholderPhone  = "0000000000"
	FallbackPrefix    = "auto_"
	secretFieldMarker = "password"
)

// Identity carries the run-wide values some rules copy into fields.
type Identity struct {
	Email      string
	SecretHash string
}

// Rule pairs a field-name predicate with the value it produces.
type Rule struct {
	Name  string
	Match func(field string) bool
	Value func(field string, id Identity) any
}

// DefaultRules is the ordered heuristic list; the first match wins.
// Matching is a case-insensitive substring test on the field name, except
// for the secret rule which requires the exact name "password".
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "email",
			Match: nameContains("email"),
			Value: func(_ string, id Identity) any { return id.Email },
		},
		{
			Name:  "name",
			Match: nameContains("name"),
			Value: constant(PlaceholderName),
		},
		{
			Name:  "phone",
			Match: nameContains("mobile", "phone"),
			Value: constant(PlaceholderPhone),
		},
		{
			Name:  "secret",
			Match: func(field string) bool { return field == secretFieldMarker },
			Value: func(_ string, id Identity) any { return id.SecretHash },
		},
		Fallback(),
	}
}

// Fallback matches every field and yields "auto_" + field name, which is
// unique per field and easy to spot in logs.
func Fallback() Rule {
	return Rule{
		Name:  "fallback",
		Match: func(string) bool { return true },
		Value: func(field string, _ Identity) any { return FallbackPrefix + field },
	}
}

func nameContains(needles ...string) func(string) bool {
	return func(field string) bool {
		lower := strings.ToLower(field)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

func constant(v string) func(string, Identity) any {
	return func(string, Identity) any { return v }
}
