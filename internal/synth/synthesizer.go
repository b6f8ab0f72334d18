package synth

import (
	"fmt"
	"iter"
	"slices"

	"kv-shepherd.io/adminseed/internal/domain"
	"kv-shepherd.io/adminseed/internal/schema"
)

// Result is the outcome of one synthesis pass.
type Result struct {
	// Candidate is the base record with every synthesized value merged in.
	Candidate domain.Record
	// Synthesized holds only the invented values, keyed by field name.
	Synthesized domain.Record
	// Filled lists the synthesized field names in schema order.
	Filled []string
}

// Synthesizer fills required fields from an ordered rule list.
type Synthesizer struct {
	rules []Rule
}

// New returns a Synthesizer evaluating rules in order. With no rules it uses
// DefaultRules. Fallback is always appended last, so every required field
// receives a value; it never fires when an earlier rule matches.
func New(rules ...Rule) *Synthesizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Synthesizer{rules: append(slices.Clip(rules), Fallback())}
}

// Synthesize fills every required field that is blank in base.
//
// base is never modified and its non-blank values always win. The first
// error yielded by fields is returned as-is with no partial result.
func (s *Synthesizer) Synthesize(base domain.Record, fields iter.Seq2[schema.Field, error], id Identity) (*Result, error) {
	res := &Result{
		Candidate:   base.Clone(),
		Synthesized: domain.Record{},
	}

	for f, err := range fields {
		if err != nil {
			return nil, err
		}
		if !f.IsRequired || !base.IsBlank(f.Name) {
			continue
		}
		v, err := s.valueFor(f.Name, id)
		if err != nil {
			return nil, err
		}
		res.Synthesized[f.Name] = v
		res.Candidate[f.Name] = v
		res.Filled = append(res.Filled, f.Name)
	}
	return res, nil
}

func (s *Synthesizer) valueFor(field string, id Identity) (any, error) {
	for _, r := range s.rules {
		if r.Match(field) {
			return r.Value(field, id), nil
		}
	}
	return nil, fmt.Errorf("no synthesis rule matched field %q", field)
}
