package classvm

import "fmt"

// Constant pool tags (§4.2).
const (
	cpUtf8               = 1
	cpInteger            = 3
	cpClass              = 7
	cpString             = 8
	cpFieldRef           = 9
	cpMethodRef          = 10
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpDynamic            = 17
	cpInvokeDynamic      = 18
)

// cpEntry is a tagged constant-pool entry. Only the fields relevant to
// its tag are populated; the rest stay zero.
type cpEntry struct {
	tag byte

	// Utf8
	utf8 []byte

	// Integer
	intVal uint32

	// Class
	nameIndex uint16

	// String
	utf8Index uint16

	// FieldRef / MethodRef
	classIndex       uint16
	nameAndTypeIndex uint16

	// NameAndType
	descriptorIndex uint16

	// MethodHandle
	refKind  byte
	refIndex uint16

	// Dynamic / InvokeDynamic
	bootstrapIndex uint16
}

// ConstantPool is the class file's interned table of literals, names,
// and cross-references (§4.2). Index 0 is reserved and unused, as on
// the wire; entries are addressed 1-based throughout.
type ConstantPool struct {
	entries []cpEntry // entries[0] is the unused reserved slot
}

func parseConstantPool(r *reader) (*ConstantPool, error) {
	count, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading constant_pool_count: %v", ErrParse, err)
	}

	pool := &ConstantPool{entries: make([]cpEntry, count)}

	for i := 1; i < int(count); i++ {
		tag, err := r.u8()
		if err != nil {
			return nil, fmt.Errorf("%w: reading constant pool tag at index %d: %v", ErrParse, i, err)
		}

		entry := cpEntry{tag: tag}

		switch tag {
		case cpUtf8:
			length, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading Utf8 length at index %d: %v", ErrParse, i, err)
			}
			b, err := r.bytes(int(length))
			if err != nil {
				return nil, fmt.Errorf("%w: reading Utf8 bytes at index %d: %v", ErrParse, i, err)
			}
			entry.utf8 = append([]byte(nil), b...)
		case cpInteger:
			v, err := r.u32be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading Integer at index %d: %v", ErrParse, i, err)
			}
			entry.intVal = v
		case cpClass:
			v, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading Class name_index at index %d: %v", ErrParse, i, err)
			}
			entry.nameIndex = v
		case cpString:
			v, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading String utf8_index at index %d: %v", ErrParse, i, err)
			}
			entry.utf8Index = v
		case cpFieldRef, cpMethodRef:
			ci, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading ref class_index at index %d: %v", ErrParse, i, err)
			}
			nti, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading ref name_and_type_index at index %d: %v", ErrParse, i, err)
			}
			entry.classIndex = ci
			entry.nameAndTypeIndex = nti
		case cpNameAndType:
			ni, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading NameAndType name_index at index %d: %v", ErrParse, i, err)
			}
			di, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading NameAndType descriptor_index at index %d: %v", ErrParse, i, err)
			}
			entry.nameIndex = ni
			entry.descriptorIndex = di
		case cpDynamic, cpInvokeDynamic:
			bi, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading Dynamic bootstrap_index at index %d: %v", ErrParse, i, err)
			}
			nti, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading Dynamic name_and_type_index at index %d: %v", ErrParse, i, err)
			}
			entry.bootstrapIndex = bi
			entry.nameAndTypeIndex = nti
		case cpMethodHandle:
			rk, err := r.u8()
			if err != nil {
				return nil, fmt.Errorf("%w: reading MethodHandle ref_kind at index %d: %v", ErrParse, i, err)
			}
			ri, err := r.u16be()
			if err != nil {
				return nil, fmt.Errorf("%w: reading MethodHandle ref_index at index %d: %v", ErrParse, i, err)
			}
			entry.refKind = rk
			entry.refIndex = ri
		default:
			return nil, fmt.Errorf("%w: unknown constant pool tag %d at index %d", ErrParse, tag, i)
		}

		pool.entries[i] = entry
	}

	return pool, nil
}

// tagAt returns the raw tag byte of the entry at i, used by ldc to
// decide how to materialize the constant (§4.9's ldc semantics).
func (p *ConstantPool) tagAt(i uint16) (byte, bool) {
	e, ok := p.get(i)
	if !ok {
		return 0, false
	}
	return e.tag, true
}

// utf8Bytes returns the raw bytes of a Utf8 entry, or false if i
// doesn't name one.
func (p *ConstantPool) utf8Bytes(i uint16) ([]byte, bool) {
	e, ok := p.get(i)
	if !ok || e.tag != cpUtf8 {
		return nil, false
	}
	return e.utf8, true
}

func (p *ConstantPool) get(i uint16) (cpEntry, bool) {
	if int(i) <= 0 || int(i) >= len(p.entries) {
		return cpEntry{}, false
	}
	return p.entries[i], true
}

// resolveString collapses Class -> Utf8 or String -> Utf8 by one
// level of indirection, returning empty string if the chain doesn't
// terminate in a Utf8 (§4.2).
func (p *ConstantPool) resolveString(i uint16) string {
	entry, ok := p.get(i)
	if !ok {
		return ""
	}

	switch entry.tag {
	case cpUtf8:
		return string(entry.utf8)
	case cpClass:
		return p.resolveString(entry.nameIndex)
	case cpString:
		return p.resolveString(entry.utf8Index)
	default:
		return ""
	}
}

// resolveClassName dereferences a FieldRef/MethodRef's class_index
// and returns that Class entry's name.
func (p *ConstantPool) resolveClassName(i uint16) string {
	entry, ok := p.get(i)
	if !ok {
		return ""
	}
	return p.resolveString(entry.classIndex)
}

// resolveFieldName follows a FieldRef/MethodRef to its NameAndType
// and returns the name_index's Utf8.
func (p *ConstantPool) resolveFieldName(i uint16) string {
	entry, ok := p.get(i)
	if !ok {
		return ""
	}
	nat, ok := p.get(entry.nameAndTypeIndex)
	if !ok {
		return ""
	}
	return p.resolveString(nat.nameIndex)
}

// resolveDescriptor follows a FieldRef/MethodRef to its NameAndType
// and returns the descriptor_index's Utf8.
func (p *ConstantPool) resolveDescriptor(i uint16) string {
	entry, ok := p.get(i)
	if !ok {
		return ""
	}
	nat, ok := p.get(entry.nameAndTypeIndex)
	if !ok {
		return ""
	}
	return p.resolveString(nat.descriptorIndex)
}

// resolveInt returns the u32 payload of an Integer entry, or -1 if
// the entry isn't one.
func (p *ConstantPool) resolveInt(i uint16) int64 {
	entry, ok := p.get(i)
	if !ok || entry.tag != cpInteger {
		return -1
	}
	return int64(entry.intVal)
}

// referencedClassNames walks every Class entry in the pool and
// returns the set of class names it points at, stripped of array
// marker and object wrapper (§4.2's referenced-class pass).
func (p *ConstantPool) referencedClassNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag != cpClass {
			continue
		}
		name := p.resolveString(uint16(i))
		name = stripClassNameWrapping(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// stripClassNameWrapping removes a leading '[' (array marker) and an
// 'L...;' object wrapper, per §4.2's loader pass.
func stripClassNameWrapping(name string) string {
	for len(name) > 0 && name[0] == '[' {
		name = name[1:]
	}
	if len(name) >= 2 && name[0] == 'L' && name[len(name)-1] == ';' {
		name = name[1 : len(name)-1]
	}
	return name
}
