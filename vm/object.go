package classvm

import "fmt"

// Field is a named slot owned by a class (static) or object
// (instance), holding a Variant (§3).
type Field struct {
	Name  string
	Value Variant
}

// Object is an allocation of a Class: an ordered list of named field
// slots cloned from the class's instance-field descriptors, plus an
// Initialized flag set by <init> dispatch (§3, §4.9.3).
type Object struct {
	Class       *Class
	Initialized bool
	fields      []Field
}

func newObject(class *Class) *Object {
	obj := &Object{Class: class, fields: make([]Field, len(class.InstanceFields))}
	for i, name := range class.InstanceFields {
		obj.fields[i] = Field{Name: name, Value: NoneVariant}
	}
	return obj
}

// GetField performs a linear scan by name (§4.9.3).
func (o *Object) GetField(name string) (*Field, error) {
	for i := range o.fields {
		if o.fields[i].Name == name {
			return &o.fields[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no such field %q on class %s", ErrResolve, name, o.Class.Name)
}

// Array is a class pointer plus a fixed-size vector of Variants of
// that element class; length is frozen at creation (§3).
type Array struct {
	ElementClass *Class
	Elements     []Variant
}

func newArray(elementClass *Class, length int32) (*Array, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length %d", ErrExecution, length)
	}
	return &Array{ElementClass: elementClass, Elements: make([]Variant, length)}, nil
}

func (a *Array) get(index int32) (Variant, error) {
	if index < 0 || int(index) >= len(a.Elements) {
		return NoneVariant, fmt.Errorf("%w: array index %d out of bounds for length %d", ErrExecution, index, len(a.Elements))
	}
	return a.Elements[index], nil
}

func (a *Array) set(index int32, v Variant) error {
	if index < 0 || int(index) >= len(a.Elements) {
		return fmt.Errorf("%w: array index %d out of bounds for length %d", ErrExecution, index, len(a.Elements))
	}
	a.Elements[index] = v
	return nil
}
