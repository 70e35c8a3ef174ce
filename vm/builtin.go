package classvm

import (
	"fmt"
	"io"
	"os"
)

// builtinFieldDef is one field definition in a built-in class's static
// descriptor record (§4.6): a name plus access flags.
type builtinFieldDef struct {
	name  string
	flags uint16
}

// builtinMethodDef is one method definition in a built-in class's
// static descriptor record: name, descriptor, the stack depth its
// callback needs, and the callback itself (§4.6, §6).
type builtinMethodDef struct {
	name       string
	descriptor string
	maxStack   uint16
	maxLocals  uint16
	fn         BuiltinFunc
}

// builtinClassDef is a built-in class's static descriptor record:
// parent name (or "" for none), field definitions, and method
// definitions (§4.6).
type builtinClassDef struct {
	name    string
	parent  string
	fields  []builtinFieldDef
	methods []builtinMethodDef
}

// toClass converts a built-in descriptor into a Class with the same
// shape as a parsed class, minus the constant pool (§4.6 "Built-in
// class registration").
func (d builtinClassDef) toClass(registry *Registry) *Class {
	class := &Class{
		Name:    d.name,
		BuiltIn: true,
	}
	if d.parent != "" {
		class.Parent, _ = registry.GetByName(d.parent)
	}

	for _, f := range d.fields {
		if f.flags&accStatic != 0 {
			class.StaticFields = append(class.StaticFields, Field{Name: f.name, Value: NoneVariant})
		} else {
			class.InstanceFields = append(class.InstanceFields, f.name)
		}
	}

	for _, m := range d.methods {
		method := &Method{
			Owner:       class,
			Name:        m.name,
			Descriptors: parseMethodDescriptor(m.descriptor),
			MaxStack:    m.maxStack,
			MaxLocals:   m.maxLocals,
			Builtin:     m.fn,
		}
		class.Methods = append(class.Methods, method)
		if method.Name == "<clinit>" && method.Descriptors.Raw == "()V" {
			class.clinit = method
		}
	}

	return class
}

// writerFieldName is the PrintStream instance field that holds the
// host io.Writer a given PrintStream object writes to. It's a model
// convenience, not part of the JVM surface: user bytecode never reads
// or writes it directly.
const writerFieldName = "w"

// RegisterBuiltins installs the handful of host-provided classes this
// interpreter ships (§6): java/lang/Object, java/lang/System,
// java/io/PrintStream, java/util/Objects, and java/lang/String. out is where
// PrintStream.println ultimately writes.
//
// Built-ins must be registered before any parsed class is loaded, so
// that parent-pointer resolution (§4.6 step 4) can find them.
func RegisterBuiltins(registry *Registry, out io.Writer) error {
	defs := []builtinClassDef{
		{
			name: "java/lang/Object",
			methods: []builtinMethodDef{
				{name: "<init>", descriptor: "()V", maxStack: 0, maxLocals: 1, fn: builtinObjectInit},
			},
		},
		{
			name:   "java/io/PrintStream",
			parent: "java/lang/Object",
			fields: []builtinFieldDef{
				{name: writerFieldName},
			},
			methods: []builtinMethodDef{
				{name: "<init>", descriptor: "()V", maxStack: 0, maxLocals: 1, fn: builtinObjectInit},
				{name: "println", descriptor: "(I)V", maxStack: 1, maxLocals: 2, fn: makePrintlnInt(out)},
				{name: "println", descriptor: "(Ljava/lang/String;)V", maxStack: 1, maxLocals: 2, fn: makePrintlnString(out)},
			},
		},
		{
			name:   "java/lang/System",
			parent: "java/lang/Object",
			fields: []builtinFieldDef{
				{name: "out", flags: accStatic},
			},
			methods: []builtinMethodDef{
				{name: "<clinit>", descriptor: "()V", maxStack: 1, maxLocals: 0, fn: makeSystemClinit(out)},
			},
		},
		{
			name:   "java/util/Objects",
			parent: "java/lang/Object",
			methods: []builtinMethodDef{
				{name: "requireNonNull", descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", maxStack: 1, maxLocals: 2, fn: builtinRequireNonNull},
			},
		},
		{
			name:   "java/lang/String",
			parent: "java/lang/Object",
			fields: []builtinFieldDef{
				{name: "value"},
			},
			methods: []builtinMethodDef{
				{name: "<init>", descriptor: "()V", maxStack: 0, maxLocals: 1, fn: builtinObjectInit},
			},
		},
	}

	for _, d := range defs {
		if err := registry.Add(d.toClass(registry)); err != nil {
			return fmt.Errorf("registering built-in %s: %w", d.name, err)
		}
	}
	return nil
}

// builtinObjectInit is java/lang/Object.<init>: it does nothing beyond
// marking the receiver initialized, which is also how every other
// built-in's constructor in this subset behaves.
func builtinObjectInit(m *Method, f *Frame) error {
	recv, err := f.getLocalObject(0)
	if err != nil {
		return err
	}
	recv.Initialized = true
	return nil
}

func makeSystemClinit(out io.Writer) BuiltinFunc {
	return func(m *Method, f *Frame) error {
		psClass, ok := m.Owner.registry.GetByName("java/io/PrintStream")
		if !ok {
			return fmt.Errorf("%w: java/io/PrintStream is not registered", ErrResolve)
		}
		ps := newObject(psClass)
		wField, err := ps.GetField(writerFieldName)
		if err != nil {
			return err
		}
		wField.Value = RefVariant(out)
		ps.Initialized = true

		outField, err := m.Owner.FindStaticField("out")
		if err != nil {
			return err
		}
		outField.Value = ObjectVariant(ps)
		return nil
	}
}

func makePrintlnInt(defaultOut io.Writer) BuiltinFunc {
	return func(m *Method, f *Frame) error {
		recv, err := f.getLocalObject(0)
		if err != nil {
			return err
		}
		v, err := f.getLocalInt(1)
		if err != nil {
			return err
		}
		w := writerOf(recv, defaultOut)
		fmt.Fprintln(w, v)
		return nil
	}
}

func makePrintlnString(defaultOut io.Writer) BuiltinFunc {
	return func(m *Method, f *Frame) error {
		recv, err := f.getLocalObject(0)
		if err != nil {
			return err
		}
		arg := f.Locals[1]
		w := writerOf(recv, defaultOut)

		if arg.Tag == TagObject && arg.Obj != nil {
			valueField, err := arg.Obj.GetField("value")
			if err == nil {
				if b, ok := valueField.Value.Ref.([]byte); ok {
					fmt.Fprintln(w, string(b))
					return nil
				}
			}
		}
		fmt.Fprintln(w)
		return nil
	}
}

func writerOf(recv *Object, fallback io.Writer) io.Writer {
	wField, err := recv.GetField(writerFieldName)
	if err != nil {
		return fallback
	}
	if w, ok := wField.Value.Ref.(io.Writer); ok {
		return w
	}
	return fallback
}

// builtinRequireNonNull has no exception model to throw into (§1
// Non-goals): a None-tagged argument is logged as a diagnostic rather
// than aborting the run, and the argument is always returned
// unchanged.
func builtinRequireNonNull(m *Method, f *Frame) error {
	arg := f.Locals[1]
	if arg.Tag == TagNone {
		fmt.Fprintln(os.Stderr, "Objects.requireNonNull received a null argument")
	}
	return f.Stack.push(arg)
}
