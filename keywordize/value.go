package keywordize

import (
	"fmt"
	"strconv"
	"strings"
)

type valueKind int

const (
	scalarValue valueKind = iota
	sequenceValue
)

// value is one source of candidate tokens: a scalar that gets split on
// whitespace, or a sequence whose elements are candidates as they are.
type value struct {
	kind   valueKind
	scalar string
	seq    []string
}

func newValue(raw any) value {
	switch t := raw.(type) {
	case []string:
		return value{kind: sequenceValue, seq: t}
	case []any:
		seq := make([]string, 0, len(t))
		for _, e := range t {
			seq = append(seq, scalarString(e))
		}
		return value{kind: sequenceValue, seq: seq}
	default:
		return value{kind: scalarValue, scalar: scalarString(raw)}
	}
}

// newSequence is newValue with scalars wrapped as one-element sequences.
func newSequence(raw any) value {
	v := newValue(raw)
	if v.kind == scalarValue {
		return value{kind: sequenceValue, seq: []string{v.scalar}}
	}
	return v
}

// candidates returns the raw, untrimmed tokens of the value in order.
func (v value) candidates() []string {
	if v.kind == sequenceValue {
		return v.seq
	}
	return strings.Fields(v.scalar)
}

// scalarString renders a field value as text. Absent and false values are
// empty, and so are nested objects.
func scalarString(raw any) string {
	switch t := raw.(type) {
	case nil, map[string]any, map[string]string:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
