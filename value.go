package templify

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind classifies the variant held by a Value. The variant set is closed:
// Null, Bool, Integer, Decimal, String, Sequence, Mapping, Object.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindDecimal
	KindString
	KindSequence
	KindMapping
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// ObjectAccessor is the capability set a caller-supplied opaque object must
// implement for the engine to read named properties off it at evaluation
// time. There is no reflection fallback: Object values are inert unless the
// caller wires this interface for dynamic data access over its own types.
type ObjectAccessor interface {
	GetProperty(name string) (*Value, bool)
}

// Value is the tagged-union runtime data type over which expressions
// evaluate. A zero Value is Null.
type Value struct {
	kind Kind

	boolVal bool
	intVal  int64
	decVal  Decimal
	strVal  string
	seqVal  []*Value
	mapVal  *orderedmap.OrderedMap[string, *Value]
	objVal  ObjectAccessor
	missing bool // true if this Value represents a "missing" lookup result
}

// Null is the shared Null value.
var Null = &Value{kind: KindNull}

// Missing returns a Null-kind value additionally marked "missing" so
// callers can distinguish an explicit null from an absent path.
func Missing() *Value {
	return &Value{kind: KindNull, missing: true}
}

func NewBool(b bool) *Value { return &Value{kind: KindBool, boolVal: b} }

func NewInteger(i int64) *Value { return &Value{kind: KindInteger, intVal: i} }

func NewDecimal(d Decimal) *Value { return &Value{kind: KindDecimal, decVal: d} }

func NewString(s string) *Value { return &Value{kind: KindString, strVal: s} }

func NewSequence(items []*Value) *Value { return &Value{kind: KindSequence, seqVal: items} }

func NewMapping(m *orderedmap.OrderedMap[string, *Value]) *Value {
	if m == nil {
		m = orderedmap.New[string, *Value]()
	}
	return &Value{kind: KindMapping, mapVal: m}
}

func NewObject(o ObjectAccessor) *Value { return &Value{kind: KindObject, objVal: o} }

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsMissing reports whether this Value is the result of a failed lookup
// (missing map key, out-of-range index, unresolved root identifier) as
// opposed to an explicit JSON/caller null.
func (v *Value) IsMissing() bool {
	return v == nil || v.missing
}

func (v *Value) IsNull() bool     { return v.Kind() == KindNull }
func (v *Value) IsBool() bool     { return v.Kind() == KindBool }
func (v *Value) IsInteger() bool  { return v.Kind() == KindInteger }
func (v *Value) IsDecimal() bool  { return v.Kind() == KindDecimal }
func (v *Value) IsNumeric() bool  { return v.IsInteger() || v.IsDecimal() }
func (v *Value) IsString() bool   { return v.Kind() == KindString }
func (v *Value) IsSequence() bool { return v.Kind() == KindSequence }
func (v *Value) IsMapping() bool  { return v.Kind() == KindMapping }
func (v *Value) IsObject() bool   { return v.Kind() == KindObject }

func (v *Value) Bool() bool {
	if v == nil {
		return false
	}
	return v.boolVal
}

// Int64 returns the Value's integer content, widening a Decimal by
// truncation. Used internally for integer-only contexts such as @index
// arithmetic.
func (v *Value) Int64() int64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindInteger:
		return v.intVal
	case KindDecimal:
		i, _ := v.decVal.Int64()
		return i
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err == nil {
			return i
		}
	}
	return 0
}

func (v *Value) Decimal() Decimal {
	if v == nil {
		return Decimal{}
	}
	switch v.kind {
	case KindDecimal:
		return v.decVal
	case KindInteger:
		return DecimalFromInt64(v.intVal)
	}
	return Decimal{}
}

func (v *Value) Sequence() []*Value {
	if v == nil {
		return nil
	}
	return v.seqVal
}

func (v *Value) Mapping() *orderedmap.OrderedMap[string, *Value] {
	if v == nil {
		return nil
	}
	return v.mapVal
}

func (v *Value) Object() ObjectAccessor {
	if v == nil {
		return nil
	}
	return v.objVal
}

// IsTrue implements the engine's truthiness rules: zero numerics, empty
// collections/strings, null, and missing are all false.
func (v *Value) IsTrue() bool {
	if v == nil || v.missing {
		return false
	}
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolVal
	case KindInteger:
		return v.intVal != 0
	case KindDecimal:
		return !v.decVal.IsZero()
	case KindString:
		return v.strVal != ""
	case KindSequence:
		return len(v.seqVal) > 0
	case KindMapping:
		return v.mapVal != nil && v.mapVal.Len() > 0
	case KindObject:
		return true
	default:
		return false
	}
}

// Len reports the element count of a Sequence, Mapping, or String; -1 for
// other kinds.
func (v *Value) Len() int {
	if v == nil {
		return -1
	}
	switch v.kind {
	case KindSequence:
		return len(v.seqVal)
	case KindMapping:
		if v.mapVal == nil {
			return 0
		}
		return v.mapVal.Len()
	case KindString:
		return len([]rune(v.strVal))
	default:
		return -1
	}
}

// AsString renders the Value using the default, culture-invariant,
// format-specifier-free conversion used by bare String() interpolation and
// debugging. Format-aware conversion (culture, boolean specifiers) lives in
// format.go.
func (v *Value) AsString() string {
	if v == nil || v.missing {
		return ""
	}
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolVal {
			return "True"
		}
		return "False"
	case KindInteger:
		return strconv.FormatInt(v.intVal, 10)
	case KindDecimal:
		return v.decVal.String()
	case KindString:
		return v.strVal
	case KindSequence, KindMapping, KindObject:
		// Direct interpolation of structured values is undefined;
		// callers should have routed through the warning collector
		// before reaching here.
		return fmt.Sprintf("[%s]", v.kind)
	default:
		return ""
	}
}

// EqualValueTo implements value equality for the `=`/`==` operators.
// Numeric kinds widen (see numericCompare in decimal.go); string equality
// is case-sensitive.
func (v *Value) EqualValueTo(other *Value) bool {
	if v.IsMissing() || other.IsMissing() {
		return v.IsMissing() && other.IsMissing()
	}
	if v.IsNumeric() && other.IsNumeric() {
		cmp, ok := numericCompare(v, other)
		return ok && cmp == 0
	}
	if (v.IsNumeric() && other.IsString()) || (v.IsString() && other.IsNumeric()) {
		da, db, ok := coerceToDecimalPair(v, other)
		return ok && da.Compare(db) == 0
	}
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindString:
		return v.strVal == other.strVal
	default:
		return false
	}
}

// Contains reports membership: Sequence element equality, String
// substring search, Mapping key presence.
func (v *Value) Contains(needle *Value) bool {
	if v == nil {
		return false
	}
	switch v.kind {
	case KindString:
		return strings.Contains(v.strVal, needle.AsString())
	case KindSequence:
		for _, item := range v.seqVal {
			if item.EqualValueTo(needle) {
				return true
			}
		}
		return false
	case KindMapping:
		if v.mapVal == nil {
			return false
		}
		_, ok := v.mapVal.Get(needle.AsString())
		return ok
	default:
		return false
	}
}
