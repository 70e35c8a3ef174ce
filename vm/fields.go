package classvm

import "fmt"

// Access flag bits relevant to this subset (§4.6 step 7).
const (
	accStatic = 0x0008
)

// FieldInfo is a parsed field or method table entry: access flags,
// name, descriptor, and (for methods) its Code attribute (§3).
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Code        *CodeAttribute // nil for fields and for built-in/abstract methods
}

func (f FieldInfo) isStatic() bool {
	return f.AccessFlags&accStatic != 0
}

// parseFieldOrMethodTable parses `count` entries, each access_flags,
// name_index, descriptor_index, plus an attributes table (§4.5). Used
// for both the fields table and the methods table.
func parseFieldOrMethodTable(r *reader, pool *ConstantPool) ([]FieldInfo, error) {
	count, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading table count: %v", ErrParse, err)
	}

	table := make([]FieldInfo, 0, count)
	for i := 0; i < int(count); i++ {
		flags, err := r.u16be()
		if err != nil {
			return nil, fmt.Errorf("%w: reading access_flags: %v", ErrParse, err)
		}
		nameIdx, err := r.u16be()
		if err != nil {
			return nil, fmt.Errorf("%w: reading name_index: %v", ErrParse, err)
		}
		descIdx, err := r.u16be()
		if err != nil {
			return nil, fmt.Errorf("%w: reading descriptor_index: %v", ErrParse, err)
		}

		_, code, err := parseAttributeTable(r, pool)
		if err != nil {
			return nil, err
		}

		table = append(table, FieldInfo{
			AccessFlags: flags,
			Name:        pool.resolveString(nameIdx),
			Descriptor:  pool.resolveString(descIdx),
			Code:        code,
		})
	}

	return table, nil
}
