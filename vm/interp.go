package classvm

import (
	"fmt"
	"io"
	"os"
)

// Interpreter is the frame-based evaluator driven by a per-method
// program counter over an operand stack and local-variable array
// (§4.9): opcode dispatch, method invocation with frame construction,
// static-field initialization, and object/array allocation.
type Interpreter struct {
	Registry *Registry

	// Trace, when set, prints each executed instruction to TraceOut
	// (defaulting to os.Stderr) before it runs — the supplemental
	// single-step/disassembly tooling the teacher always carries
	// alongside its interpreter (KTStephano-GVM/vm/run.go).
	Trace    bool
	TraceOut io.Writer
}

// NewInterpreter returns an Interpreter driven by registry, which
// must already have its built-ins registered and the main class
// loaded.
func NewInterpreter(registry *Registry) *Interpreter {
	return &Interpreter{Registry: registry}
}

func (in *Interpreter) traceWriter() io.Writer {
	if in.TraceOut != nil {
		return in.TraceOut
	}
	return os.Stderr
}

// RunMain locates the main method via the registry and executes it
// with a fresh, argument-less frame (§2: "the interpreter is handed
// the main method and a fresh frame").
func (in *Interpreter) RunMain() error {
	method, err := in.Registry.MainMethod()
	if err != nil {
		return err
	}
	_, _, err = in.invoke(method, nil)
	return err
}

// invoke runs method (built-in or parsed) against a fresh frame whose
// locals are seeded from args, and returns its result per §4.9.1 step
// 6: non-Void methods return (value, true, nil); Void methods return
// (NoneVariant, false, nil).
func (in *Interpreter) invoke(method *Method, args []Variant) (Variant, bool, error) {
	frame := newFrame(method)
	copy(frame.Locals, args)

	if method.isBuiltin() {
		if err := method.Builtin(method, frame); err != nil {
			return NoneVariant, false, err
		}
	} else {
		if err := in.execute(frame); err != nil {
			return NoneVariant, false, err
		}
	}

	if method.Descriptors.Return.Kind == DescVoid {
		return NoneVariant, false, nil
	}

	v, err := frame.Stack.pop()
	if err != nil {
		return NoneVariant, false, fmt.Errorf("%w: method %s%s did not leave a return value on its stack", ErrExecution, method.Name, method.Descriptors.Raw)
	}
	return v, true, nil
}

// ensureStaticInit runs class's <clinit> exactly once, the first time
// any of its static fields are accessed (§4.9.2). The initialized
// flag is set before the call to prevent reentry if <clinit> itself
// somehow triggers another static access on the same class.
func (in *Interpreter) ensureStaticInit(class *Class) error {
	if !class.hasStaticFields() || class.StaticInitialized {
		return nil
	}
	class.StaticInitialized = true
	if class.clinit == nil {
		return nil
	}
	_, _, err := in.invoke(class.clinit, nil)
	return err
}

// execute runs frame from its current PC until an ireturn or return
// opcode, advancing PC past each opcode and its inline operands as it
// goes (§4.9).
func (in *Interpreter) execute(frame *Frame) error {
	for {
		if frame.PC >= len(frame.Code) {
			return fmt.Errorf("%w: program counter %d ran past end of code (len %d)", ErrExecution, frame.PC, len(frame.Code))
		}

		opcodeStart := frame.PC
		opcode := Opcode(frame.Code[frame.PC])
		frame.PC++

		if in.Trace {
			fmt.Fprintf(in.traceWriter(), "  %4d: %s\n", opcodeStart, opcode)
		}

		if err := in.step(frame, opcode, opcodeStart); err != nil {
			return err
		}

		if opcode == OpIreturn || opcode == OpReturn {
			return nil
		}
	}
}

// step executes exactly one opcode, mutating frame's PC, stack, and
// locals in place.
func (in *Interpreter) step(frame *Frame, opcode Opcode, opcodeStart int) error {
	switch opcode {
	case OpIconstM1, OpIconst0, OpIconst1, OpIconst2, OpIconst3, OpIconst4, OpIconst5:
		return frame.Stack.pushInt(int32(opcode) - 3)

	case OpBipush:
		b, err := frame.readU8()
		if err != nil {
			return err
		}
		// Treated as unsigned per §4.9's documented departure from the
		// JVM spec's sign extension, to match this interpreter's one
		// chosen convention (§9 open question).
		return frame.Stack.pushInt(int32(b))

	case OpSipush:
		v, err := frame.readS16be()
		if err != nil {
			return err
		}
		return frame.Stack.pushInt(int32(v))

	case OpLdc:
		return in.execLdc(frame)

	case OpIload, OpAload:
		i, err := frame.readU8()
		if err != nil {
			return err
		}
		v, err := frame.local(int(i))
		if err != nil {
			return err
		}
		return frame.Stack.push(v)

	case OpIload0, OpIload1, OpIload2, OpIload3:
		return in.pushLocal(frame, int(opcode-OpIload0))
	case OpAload0, OpAload1, OpAload2, OpAload3:
		return in.pushLocal(frame, int(opcode-OpAload0))

	case OpAaload:
		return execAaload(frame)

	case OpIstore, OpAstore:
		i, err := frame.readU8()
		if err != nil {
			return err
		}
		v, err := frame.Stack.pop()
		if err != nil {
			return err
		}
		return frame.setLocal(int(i), v)

	case OpIstore0, OpIstore1, OpIstore2, OpIstore3:
		return popIntoLocal(frame, int(opcode-OpIstore0))
	case OpAstore0, OpAstore1, OpAstore2, OpAstore3:
		return popIntoLocal(frame, int(opcode-OpAstore0))

	case OpAastore:
		return execAastore(frame)

	case OpPop:
		_, err := frame.Stack.pop()
		return err

	case OpDup:
		return frame.Stack.dup()

	case OpIadd:
		a, err := frame.Stack.pop()
		if err != nil {
			return err
		}
		b, err := frame.Stack.pop()
		if err != nil {
			return err
		}
		return frame.Stack.pushInt(b.I + a.I)

	case OpIinc:
		idx, err := frame.readU8()
		if err != nil {
			return err
		}
		delta, err := frame.readS8()
		if err != nil {
			return err
		}
		v, err := frame.local(int(idx))
		if err != nil {
			return err
		}
		return frame.setLocal(int(idx), IntVariant(v.I+int32(delta)))

	case OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple:
		return execIfIcmp(frame, opcode, opcodeStart)

	case OpGoto:
		offset, err := frame.readS16be()
		if err != nil {
			return err
		}
		frame.PC = opcodeStart + int(offset)
		return nil

	case OpIreturn, OpReturn:
		return nil

	case OpGetstatic:
		return in.execGetstatic(frame)
	case OpPutstatic:
		return in.execPutstatic(frame)
	case OpGetfield:
		return execGetfield(frame)
	case OpPutfield:
		return execPutfield(frame)

	case OpInvokevirtual, OpInvokespecial:
		return in.execInvoke(frame)

	case OpInvokedynamic:
		// u16 bootstrap-method-adjacent index + 2 reserved bytes,
		// parsed then ignored (§4.9).
		_, err := frame.readU16be()
		if err != nil {
			return err
		}
		_, err = frame.readU16be()
		return err

	case OpNew:
		return in.execNew(frame)
	case OpAnewarray:
		return in.execAnewarray(frame)
	case OpArraylength:
		return execArraylength(frame)

	default:
		return fmt.Errorf("%w: unknown opcode %d at pc %d", ErrExecution, byte(opcode), opcodeStart)
	}
}

func (in *Interpreter) pushLocal(frame *Frame, i int) error {
	v, err := frame.local(i)
	if err != nil {
		return err
	}
	return frame.Stack.push(v)
}

func popIntoLocal(frame *Frame, i int) error {
	v, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	return frame.setLocal(i, v)
}

func (in *Interpreter) execLdc(frame *Frame) error {
	idx, err := frame.readU8()
	if err != nil {
		return err
	}
	pool := frame.pool()
	tag, ok := pool.tagAt(uint16(idx))
	if !ok {
		return fmt.Errorf("%w: ldc index %d not present in constant pool", ErrResolve, idx)
	}

	switch tag {
	case cpInteger:
		v := pool.resolveInt(uint16(idx))
		return frame.Stack.pushInt(int32(v))
	case cpString:
		stringClass, ok := in.Registry.GetByName("java/lang/String")
		if !ok {
			return fmt.Errorf("%w: java/lang/String is not registered", ErrResolve)
		}
		obj := newObject(stringClass)
		valueField, err := obj.GetField("value")
		if err != nil {
			return err
		}
		bytes := []byte(pool.resolveString(uint16(idx)))
		valueField.Value = RefVariant(bytes)
		obj.Initialized = true
		return frame.Stack.pushObject(obj)
	case cpUtf8:
		bytes, _ := pool.utf8Bytes(uint16(idx))
		return frame.Stack.pushRef(bytes)
	default:
		return fmt.Errorf("%w: ldc of constant pool tag %d is not supported", ErrExecution, tag)
	}
}

func execAaload(frame *Frame) error {
	idxVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	arrVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	arr, ok := arrVar.Array()
	if !ok {
		return fmt.Errorf("%w: aaload operand is not an array reference", ErrExecution)
	}
	v, err := arr.get(idxVar.I)
	if err != nil {
		return err
	}
	return frame.Stack.push(v)
}

func execAastore(frame *Frame) error {
	value, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	idxVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	arrVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	arr, ok := arrVar.Array()
	if !ok {
		return fmt.Errorf("%w: aastore operand is not an array reference", ErrExecution)
	}
	return arr.set(idxVar.I, value)
}

func execArraylength(frame *Frame) error {
	arrVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	arr, ok := arrVar.Array()
	if !ok {
		return fmt.Errorf("%w: arraylength operand is not an array reference", ErrExecution)
	}
	return frame.Stack.pushInt(int32(len(arr.Elements)))
}

func execIfIcmp(frame *Frame, opcode Opcode, opcodeStart int) error {
	offset, err := frame.readS16be()
	if err != nil {
		return err
	}
	v2, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	v1, err := frame.Stack.pop()
	if err != nil {
		return err
	}

	var taken bool
	switch opcode {
	case OpIfIcmpeq:
		taken = v1.I == v2.I
	case OpIfIcmpne:
		taken = v1.I != v2.I
	case OpIfIcmplt:
		taken = v1.I < v2.I
	case OpIfIcmpge:
		taken = v1.I >= v2.I
	case OpIfIcmpgt:
		taken = v1.I > v2.I
	case OpIfIcmple:
		taken = v1.I <= v2.I
	}

	if taken {
		frame.PC = opcodeStart + int(offset)
	}
	return nil
}

func (in *Interpreter) execGetstatic(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	class, field, err := in.resolveStatic(frame, idx)
	if err != nil {
		return err
	}
	if err := in.ensureStaticInit(class); err != nil {
		return err
	}
	// ensureStaticInit may have run <clinit>, which is the only thing
	// allowed to populate the field; re-fetch in case static field
	// storage moved (it never does in this model, but this keeps the
	// two lookups symmetric with putstatic).
	field, err = class.FindStaticField(field.Name)
	if err != nil {
		return err
	}
	return frame.Stack.push(field.Value)
}

func (in *Interpreter) execPutstatic(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	class, field, err := in.resolveStatic(frame, idx)
	if err != nil {
		return err
	}
	if err := in.ensureStaticInit(class); err != nil {
		return err
	}
	value, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	field.Value = value
	return nil
}

func (in *Interpreter) resolveStatic(frame *Frame, idx uint16) (*Class, *Field, error) {
	pool := frame.pool()
	className := pool.resolveClassName(idx)
	class, ok := in.Registry.GetByName(className)
	if !ok {
		return nil, nil, fmt.Errorf("%w: class %s not found resolving static field", ErrResolve, className)
	}
	fieldName := pool.resolveFieldName(idx)
	field, err := class.FindStaticField(fieldName)
	if err != nil {
		return nil, nil, err
	}
	return class, field, nil
}

func execGetfield(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	objVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	if objVar.Tag != TagObject || objVar.Obj == nil {
		return fmt.Errorf("%w: getfield operand is not an object reference", ErrExecution)
	}
	name := frame.pool().resolveFieldName(idx)
	field, err := objVar.Obj.GetField(name)
	if err != nil {
		return err
	}
	return frame.Stack.push(field.Value)
}

func execPutfield(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	value, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	objVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	if objVar.Tag != TagObject || objVar.Obj == nil {
		return fmt.Errorf("%w: putfield operand is not an object reference", ErrExecution)
	}
	name := frame.pool().resolveFieldName(idx)
	field, err := objVar.Obj.GetField(name)
	if err != nil {
		return err
	}
	field.Value = value
	return nil
}

// execInvoke implements §4.9.1: invokevirtual and invokespecial share
// this mechanism, neither honoring any vtable/receiver-class override
// policy (§9's documented limitation).
func (in *Interpreter) execInvoke(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	pool := frame.pool()
	className := pool.resolveClassName(idx)
	methodName := pool.resolveFieldName(idx)
	descriptor := pool.resolveDescriptor(idx)

	class, ok := in.Registry.GetByName(className)
	if !ok {
		return fmt.Errorf("%w: class %s not found for invocation of %s%s", ErrResolve, className, methodName, descriptor)
	}
	method, err := in.Registry.resolveMethod(class, methodName, descriptor)
	if err != nil {
		return err
	}

	argc := len(method.Descriptors.Args)
	args := make([]Variant, argc+1)
	for i := argc; i >= 1; i-- {
		v, err := frame.Stack.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}
	recv, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	args[0] = recv

	value, hasValue, err := in.invoke(method, args)
	if err != nil {
		return err
	}
	if hasValue {
		return frame.Stack.push(value)
	}
	return nil
}

func (in *Interpreter) execNew(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	className := frame.pool().resolveString(idx)
	class, ok := in.Registry.GetByName(className)
	if !ok {
		return fmt.Errorf("%w: class %s not found for new", ErrResolve, className)
	}
	return frame.Stack.pushObject(newObject(class))
}

func (in *Interpreter) execAnewarray(frame *Frame) error {
	idx, err := frame.readU16be()
	if err != nil {
		return err
	}
	countVar, err := frame.Stack.pop()
	if err != nil {
		return err
	}
	className := frame.pool().resolveString(idx)
	class, ok := in.Registry.GetByName(className)
	if !ok {
		return fmt.Errorf("%w: class %s not found for anewarray", ErrResolve, className)
	}
	arr, err := newArray(class, countVar.I)
	if err != nil {
		return err
	}
	return frame.Stack.pushRef(arr)
}
