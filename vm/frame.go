package classvm

import "fmt"

// Frame carries all per-invocation state: program counter, the
// method's code bytes, an operand stack bounded to max_stack, and a
// local-variable array indexed to max_locals-1 (§3, §4.8).
type Frame struct {
	PC     int
	Code   []byte
	Stack  *Stack
	Locals []Variant
	Method *Method
}

func newFrame(m *Method) *Frame {
	return &Frame{
		Code:   m.Code,
		Stack:  newStack(int(m.MaxStack)),
		Locals: make([]Variant, m.MaxLocals),
		Method: m,
	}
}

func (f *Frame) getLocalInt(i int) (int32, error) {
	if i < 0 || i >= len(f.Locals) {
		return 0, fmt.Errorf("%w: local variable index %d out of range (max_locals=%d)", ErrExecution, i, len(f.Locals))
	}
	return f.Locals[i].I, nil
}

func (f *Frame) getLocalObject(i int) (*Object, error) {
	if i < 0 || i >= len(f.Locals) {
		return nil, fmt.Errorf("%w: local variable index %d out of range (max_locals=%d)", ErrExecution, i, len(f.Locals))
	}
	v := f.Locals[i]
	if v.Tag != TagObject || v.Obj == nil {
		return nil, fmt.Errorf("%w: local variable %d is not an object reference", ErrExecution, i)
	}
	return v.Obj, nil
}

func (f *Frame) local(i int) (Variant, error) {
	if i < 0 || i >= len(f.Locals) {
		return NoneVariant, fmt.Errorf("%w: local variable index %d out of range (max_locals=%d)", ErrExecution, i, len(f.Locals))
	}
	return f.Locals[i], nil
}

func (f *Frame) setLocal(i int, v Variant) error {
	if i < 0 || i >= len(f.Locals) {
		return fmt.Errorf("%w: local variable index %d out of range (max_locals=%d)", ErrExecution, i, len(f.Locals))
	}
	f.Locals[i] = v
	return nil
}

// pool returns the constant pool instructions in this frame's code
// should be resolved against: the owning class's pool. Built-in
// methods have no code and never call these.
func (f *Frame) pool() *ConstantPool {
	return f.Method.Owner.pool
}

func (f *Frame) readU8() (byte, error) {
	if f.PC >= len(f.Code) {
		return 0, fmt.Errorf("%w: program counter ran past end of code reading u8 operand", ErrExecution)
	}
	b := f.Code[f.PC]
	f.PC++
	return b, nil
}

func (f *Frame) readS8() (int8, error) {
	b, err := f.readU8()
	return int8(b), err
}

func (f *Frame) readU16be() (uint16, error) {
	if f.PC+2 > len(f.Code) {
		return 0, fmt.Errorf("%w: program counter ran past end of code reading u16 operand", ErrExecution)
	}
	v := uint16(f.Code[f.PC])<<8 | uint16(f.Code[f.PC+1])
	f.PC += 2
	return v, nil
}

func (f *Frame) readS16be() (int16, error) {
	v, err := f.readU16be()
	return int16(v), err
}
