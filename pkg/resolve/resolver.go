// Package resolve decides which bag entry feeds each property of a class.
package resolve

import (
	"github.com/nauticalab/propbind/pkg/binding"
	"github.com/nauticalab/propbind/pkg/problems"
	"github.com/nauticalab/propbind/pkg/properties"
)

// State of a property after resolution.
type State int

const (
	// Absent means no key was supplied; the default is kept.
	Absent State = iota
	// Bound means Value must be applied.
	Bound
	// Conflict means more than one key of the property was supplied.
	Conflict
	// Defunct means a removed key was supplied.
	Defunct
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Bound:
		return "bound"
	case Conflict:
		return "conflict"
	case Defunct:
		return "defunct"
	default:
		return "unknown"
	}
}

// Outcome is the resolution of one property, or of one defunct key.
type Outcome struct {
	State State
	// Property is nil for Defunct outcomes.
	Property *binding.Property
	// Key is the prefixed key the outcome is about: the consumed key when
	// Bound, the conflicting alias for Conflict, the removed key for Defunct.
	Key string
	// Operative is the key that won a Conflict.
	Operative string
	// Value is the raw value when Bound.
	Value string
}

// Result of resolving one class against a bag.
type Result struct {
	Outcomes []Outcome
	// Consumed lists every bag key matched to a property, in resolution order.
	Consumed []string
}

// Bound returns only the outcomes whose value must be applied.
func (r Result) Bound() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == Bound {
			out = append(out, o)
		}
	}
	return out
}

// Resolve resolves every property of spec against bag under prefix, adding
// the resulting errors and warnings to sink.
//
// Removed keys are reported first. Then for each property the current key,
// when present, is operative; legacy keys are scanned in declaration order,
// each present one is reported as replaced and, if a key was already
// operative, as conflicting with it. Values are never compared.
func Resolve(spec *binding.Spec, bag properties.Bag, prefix string, sink *problems.Problems) Result {
	var res Result

	for _, key := range spec.Defunct {
		full := properties.Join(prefix, key)
		if bag.Has(full) {
			sink.Add(problems.Defunct(spec.Name, full))
			res.Outcomes = append(res.Outcomes, Outcome{State: Defunct, Key: full})
		}
	}

	for i := range spec.Properties {
		prop := &spec.Properties[i]
		res.Outcomes = append(res.Outcomes, resolveProperty(spec.Name, prop, bag, prefix, sink, &res.Consumed))
	}
	return res
}

func resolveProperty(class string, prop *binding.Property, bag properties.Bag, prefix string, sink *problems.Problems, consumed *[]string) Outcome {
	current := properties.Join(prefix, prop.Key)
	out := Outcome{State: Absent, Property: prop}

	if v, ok := bag.Lookup(current); ok {
		out = Outcome{State: Bound, Property: prop, Key: current, Value: v}
		*consumed = append(*consumed, current)
		if prop.Deprecated {
			sink.Add(problems.Deprecated(class, current))
		}
	}

	for _, alias := range prop.Legacy {
		full := properties.Join(prefix, alias)
		v, ok := bag.Lookup(full)
		if !ok {
			continue
		}
		*consumed = append(*consumed, full)
		sink.Add(problems.Replaced(class, full, current))

		switch out.State {
		case Absent:
			out = Outcome{State: Bound, Property: prop, Key: full, Value: v}
		case Bound:
			sink.Add(problems.Conflict(class, full, out.Key))
			out = Outcome{State: Conflict, Property: prop, Key: full, Operative: out.Key}
		case Conflict:
			sink.Add(problems.Conflict(class, full, out.Operative))
		}
	}
	return out
}
