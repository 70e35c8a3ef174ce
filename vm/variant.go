package classvm

// VariantTag discriminates the shape held by a Variant. Tags are
// advisory: opcodes assume whoever produced a Variant placed the
// right shape on it, there is no runtime type check on use (§3).
type VariantTag int

const (
	// TagNone is the default/empty Variant, used for uninitialized
	// locals and freshly-allocated object fields.
	TagNone VariantTag = iota
	// TagInt holds a 32-bit signed integer.
	TagInt
	// TagRef holds an opaque pointer, used for raw byte strings and
	// for array handles.
	TagRef
	// TagObject holds a handle to an Object instance.
	TagObject
)

func (t VariantTag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagInt:
		return "int"
	case TagRef:
		return "ref"
	case TagObject:
		return "object"
	default:
		return "?unknown?"
	}
}

// Variant is the tagged value type every operand-stack slot and local
// variable holds (§3). Exactly one of the payload fields is
// meaningful for a given Tag.
type Variant struct {
	Tag VariantTag
	I   int32
	Ref any
	Obj *Object
}

// NoneVariant is the default zero-value Variant.
var NoneVariant = Variant{Tag: TagNone}

// IntVariant builds an Int-tagged Variant.
func IntVariant(v int32) Variant {
	return Variant{Tag: TagInt, I: v}
}

// RefVariant builds a Ref-tagged Variant, used for raw byte strings
// (from ldc of a Utf8 constant) and for Array handles.
func RefVariant(v any) Variant {
	return Variant{Tag: TagRef, Ref: v}
}

// ObjectVariant builds an Object-tagged Variant.
func ObjectVariant(o *Object) Variant {
	return Variant{Tag: TagObject, Obj: o}
}

// Array unwraps a Ref-tagged Variant as an *Array, for opcodes that
// assume their operand is an array handle (aaload, aastore,
// arraylength).
func (v Variant) Array() (*Array, bool) {
	if v.Tag != TagRef {
		return nil, false
	}
	a, ok := v.Ref.(*Array)
	return a, ok
}
