package classvm

import "fmt"

// BuiltinFunc is the host callback contract for a built-in method: it
// receives the method being invoked and the pre-populated sub-frame,
// and writes any return value to the top of that frame's stack (§6).
type BuiltinFunc func(m *Method, f *Frame) error

// Method is bound to its owning class and holds exactly one of a
// parsed body (Code + MaxStack/MaxLocals) or a built-in callback (§3).
type Method struct {
	Owner       *Class
	Name        string
	AccessFlags uint16
	Descriptors Descriptors

	Code      []byte
	MaxStack  uint16
	MaxLocals uint16

	Builtin BuiltinFunc
}

func (m *Method) isBuiltin() bool { return m.Builtin != nil }

func (m *Method) isStatic() bool { return m.AccessFlags&accStatic != 0 }

// Class holds a parsed or built-in class: its name, parent pointer,
// constant pool (parsed classes only), methods, static fields, and
// the instance-field template new Objects clone from (§3).
type Class struct {
	Name    string
	Parent  *Class
	BuiltIn bool

	pool *ConstantPool

	Methods []*Method

	StaticFields       []Field
	StaticInitialized  bool
	clinit             *Method // cached lookup of <clinit>()V, may be nil

	InstanceFields []string // names only; per-object values are cloned in newObject

	registry *Registry
}

// FindMethod matches on (name, descriptor) within this class only,
// per §3's invariant that a method's descriptor string uniquely
// identifies it within its class. Callers that want inherited lookup
// use Registry.resolveMethod instead.
func (c *Class) FindMethod(name, descriptor string) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptors.Raw == descriptor {
			return m, true
		}
	}
	return nil, false
}

// FindStaticField performs a linear scan by name over this class's
// static fields only (no inheritance walk — the spec never exercises
// inherited statics).
func (c *Class) FindStaticField(name string) (*Field, error) {
	for i := range c.StaticFields {
		if c.StaticFields[i].Name == name {
			return &c.StaticFields[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no such static field %q on class %s", ErrResolve, name, c.Name)
}

func (c *Class) hasStaticFields() bool {
	return len(c.StaticFields) > 0
}
