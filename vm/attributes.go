package classvm

import "fmt"

// AttributeInfo is a named attribute with its raw length (§3). Only
// Code attributes are materialized further; everything else is
// skipped by length.
type AttributeInfo struct {
	Name   string
	Length uint32
}

// CodeAttribute is the one attribute shape this interpreter cares
// about: a method's bytecode plus the stack/locals sizing needed to
// allocate its Frame (§3, §4.4).
type CodeAttribute struct {
	MaxStack  uint16
	MaxLocals uint16
	Code      []byte
}

func parseAttributeTable(r *reader, pool *ConstantPool) ([]AttributeInfo, *CodeAttribute, error) {
	count, err := r.u16be()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading attributes_count: %v", ErrParse, err)
	}

	attrs := make([]AttributeInfo, 0, count)
	var code *CodeAttribute

	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u16be()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading attribute_name_index: %v", ErrParse, err)
		}
		length, err := r.u32be()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading attribute_length: %v", ErrParse, err)
		}
		name := pool.resolveString(nameIdx)

		if name == "Code" {
			c, err := parseCodeAttribute(r, pool)
			if err != nil {
				return nil, nil, err
			}
			code = c
		} else {
			if err := r.skip(int(length)); err != nil {
				return nil, nil, fmt.Errorf("%w: skipping attribute %q: %v", ErrParse, name, err)
			}
		}

		attrs = append(attrs, AttributeInfo{Name: name, Length: length})
	}

	return attrs, code, nil
}

func parseCodeAttribute(r *reader, pool *ConstantPool) (*CodeAttribute, error) {
	maxStack, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading Code max_stack: %v", ErrParse, err)
	}
	maxLocals, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading Code max_locals: %v", ErrParse, err)
	}
	codeLength, err := r.u32be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading Code code_length: %v", ErrParse, err)
	}
	code, err := r.bytes(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("%w: reading Code bytes: %v", ErrParse, err)
	}
	code = append([]byte(nil), code...)

	excTableLen, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading exception_table_length: %v", ErrParse, err)
	}
	if err := r.skip(int(excTableLen) * 8); err != nil {
		return nil, fmt.Errorf("%w: skipping exception table: %v", ErrParse, err)
	}

	// Nested attributes table, parsed recursively and discarded (a
	// Code attribute's own attributes, e.g. LineNumberTable, are of no
	// interest to this interpreter).
	if _, _, err := parseAttributeTable(r, pool); err != nil {
		return nil, err
	}

	return &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Code: code}, nil
}
