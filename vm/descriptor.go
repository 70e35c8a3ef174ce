package classvm

import "strings"

// DescriptorKind distinguishes the three descriptor shapes this
// subset recognizes (§4.3). Anything else is treated as Void, a known
// limitation the spec calls out rather than hides.
type DescriptorKind int

const (
	DescVoid DescriptorKind = iota
	DescInt
	DescObject
)

// Descriptor is one parsed type: a kind, an object name when the kind
// is DescObject, and an array-dimension count (incremented once per
// leading '[').
type Descriptor struct {
	Kind            DescriptorKind
	ObjectName      string
	ArrayDimensions int
}

// Descriptors carries the parsed argument list and single return type
// for a method, plus the original descriptor string retained verbatim
// for exact-match method lookup (§3).
type Descriptors struct {
	Raw    string
	Args   []Descriptor
	Return Descriptor
}

// parseSingleDescriptor consumes one type from s starting at i:
// leading '['s bump ArrayDimensions, then either a single primitive
// letter or an 'L...;' run. Returns the descriptor and the index just
// past what it consumed.
func parseSingleDescriptor(s string, i int) (Descriptor, int) {
	dims := 0
	for i < len(s) && s[i] == '[' {
		dims++
		i++
	}

	if i >= len(s) {
		return Descriptor{Kind: DescVoid, ArrayDimensions: dims}, i
	}

	switch s[i] {
	case 'V':
		return Descriptor{Kind: DescVoid, ArrayDimensions: dims}, i + 1
	case 'I':
		return Descriptor{Kind: DescInt, ArrayDimensions: dims}, i + 1
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			// Unterminated object descriptor: consume the rest as the
			// name rather than looping forever.
			return Descriptor{Kind: DescObject, ObjectName: s[i+1:], ArrayDimensions: dims}, len(s)
		}
		name := s[i+1 : i+end]
		return Descriptor{Kind: DescObject, ObjectName: name, ArrayDimensions: dims}, i + end + 1
	default:
		// Outside {V, I, L}: treated as Void per §4.3's known
		// limitation, advancing by one byte so callers make progress.
		return Descriptor{Kind: DescVoid, ArrayDimensions: dims}, i + 1
	}
}

// parseMethodDescriptor parses "(ARG*)RET".
func parseMethodDescriptor(s string) Descriptors {
	d := Descriptors{Raw: s}

	open := strings.IndexByte(s, '(')
	closeIdx := strings.IndexByte(s, ')')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		// Not a method descriptor shape; treat whole thing as a bare
		// field/return descriptor.
		ret, _ := parseSingleDescriptor(s, 0)
		d.Return = ret
		return d
	}

	i := open + 1
	for i < closeIdx {
		var arg Descriptor
		arg, i = parseSingleDescriptor(s, i)
		d.Args = append(d.Args, arg)
	}

	ret, _ := parseSingleDescriptor(s, closeIdx+1)
	d.Return = ret
	return d
}

// parseFieldDescriptor parses a bare field/type descriptor (no
// parens).
func parseFieldDescriptor(s string) Descriptor {
	d, _ := parseSingleDescriptor(s, 0)
	return d
}

// descriptorArgCount counts the arguments of a method descriptor by
// peeking: each iteration consumes all '['s, then either a single
// primitive letter or an 'L...;' run (§4.3, testable property 4).
func descriptorArgCount(s string) int {
	return len(parseMethodDescriptor(s).Args)
}
