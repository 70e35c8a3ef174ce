package classvm

import "testing"

// newBareFrame builds a Frame directly from raw code bytes, bypassing
// any class/method machinery, for scenarios that touch no constant
// pool (iconst/iadd/ireturn and the iinc/goto loop).
func newBareFrame(code []byte, maxStack, maxLocals int) *Frame {
	return &Frame{
		Code:   code,
		Stack:  newStack(maxStack),
		Locals: make([]Variant, maxLocals),
		Method: &Method{},
	}
}

// iconst + iadd + ireturn (§8 property 6).
func TestInterpreterIaddLeavesSumOnStack(t *testing.T) {
	in := &Interpreter{Registry: NewRegistry()}
	frame := newBareFrame([]byte{5, 6, 96, 172}, 2, 0) // iconst_2, iconst_3, iadd, ireturn
	assert(t, in.execute(frame) == nil, "execute failed")

	v, err := frame.Stack.pop()
	assert(t, err == nil, "expected a value on the stack, got error: %v", err)
	assert(t, v.I == 5, "sum = %d, want 5", v.I)
}

// iinc + backward goto + if_icmpge loop bound (§8 property 7).
func TestInterpreterIincGotoLoopBound(t *testing.T) {
	code := []byte{
		26,          // iload_0
		17, 0, 10,   // sipush 10
		162, 0, 9,   // if_icmpge +9 -> targets the return opcode
		132, 0, 1,   // iinc 0, +1
		167, 0xFF, 0xF6, // goto -10 -> targets iload_0
		177, // return
	}
	in := &Interpreter{Registry: NewRegistry()}
	frame := newBareFrame(code, 2, 1)
	frame.Locals[0] = IntVariant(0)

	assert(t, in.execute(frame) == nil, "execute failed")
	assert(t, frame.Locals[0].I == 10, "locals[0] = %d, want 10", frame.Locals[0].I)
}

// new + putfield + getfield (§8 property 8).
func TestInterpreterNewPutfieldGetfield(t *testing.T) {
	cb := newClassBuilder("test/C", "java/lang/Object")
	cb.addField(0, "x", "I")
	fieldIdx := cb.fieldRef("test/C", "x", "I")
	classIdx := cb.classRef("test/C")

	code := []byte{
		byte(OpNew), byte(classIdx >> 8), byte(classIdx),
		byte(OpDup),
		byte(OpBipush), 7,
		byte(OpPutfield), byte(fieldIdx >> 8), byte(fieldIdx),
		byte(OpGetfield), byte(fieldIdx >> 8), byte(fieldIdx),
		byte(OpIreturn),
	}
	cb.addMethod("make", "()I", 3, 0, code)

	registry := NewRegistry()
	assert(t, RegisterBuiltins(registry, &stringsWriter{}) == nil, "RegisterBuiltins failed")

	source := mapSource{"test/C": cb.build()}
	loader := NewLoader(registry, source)
	_, err := loader.Load("test/C")
	assert(t, err == nil, "Load failed: %v", err)

	class, _ := registry.GetByName("test/C")
	method, ok := class.FindMethod("make", "()I")
	assert(t, ok, "method make()I not found")

	in := NewInterpreter(registry)
	v, hasValue, err := in.invoke(method, nil)
	assert(t, err == nil, "invoke failed: %v", err)
	assert(t, hasValue, "expected a return value")
	assert(t, v.I == 7, "returned %d, want 7", v.I)
}

// anewarray + aastore + aaload + arraylength (§8 property 9).
func TestInterpreterArrayRoundTrip(t *testing.T) {
	cb := newClassBuilder("test/D", "java/lang/Object")
	objClassIdx := cb.classRef("java/lang/Object")

	code := []byte{
		byte(OpIconst3),
		byte(OpAnewarray), byte(objClassIdx >> 8), byte(objClassIdx),

		byte(OpDup),
		byte(OpIconst0),
		byte(OpNew), byte(objClassIdx >> 8), byte(objClassIdx),
		byte(OpAastore),

		byte(OpDup),
		byte(OpIconst1),
		byte(OpNew), byte(objClassIdx >> 8), byte(objClassIdx),
		byte(OpAastore),

		byte(OpDup),
		byte(OpIconst2),
		byte(OpNew), byte(objClassIdx >> 8), byte(objClassIdx),
		byte(OpAastore),

		byte(OpDup),
		byte(OpIconst1),
		byte(OpAaload),
		byte(OpPop),

		byte(OpArraylength),
		byte(OpIreturn),
	}
	cb.addMethod("make", "()I", 4, 0, code)

	registry := NewRegistry()
	assert(t, RegisterBuiltins(registry, &stringsWriter{}) == nil, "RegisterBuiltins failed")

	source := mapSource{"test/D": cb.build()}
	loader := NewLoader(registry, source)
	_, err := loader.Load("test/D")
	assert(t, err == nil, "Load failed: %v", err)

	class, _ := registry.GetByName("test/D")
	method, ok := class.FindMethod("make", "()I")
	assert(t, ok, "method make()I not found")

	in := NewInterpreter(registry)
	v, hasValue, err := in.invoke(method, nil)
	assert(t, err == nil, "invoke failed: %v", err)
	assert(t, hasValue, "expected a return value")
	assert(t, v.I == 3, "arraylength = %d, want 3", v.I)
}

// Static initialization runs <clinit> exactly once, on first access
// (§8 property 10).
func TestInterpreterStaticInitRunsOnce(t *testing.T) {
	cb := newClassBuilder("test/S", "java/lang/Object")
	cb.addField(accStatic, "n", "I")
	cb.addField(accStatic, "cnt", "I")
	nIdx := cb.fieldRef("test/S", "n", "I")
	cntIdx := cb.fieldRef("test/S", "cnt", "I")

	clinit := []byte{
		byte(OpBipush), 42,
		byte(OpPutstatic), byte(nIdx >> 8), byte(nIdx),
		byte(OpGetstatic), byte(cntIdx >> 8), byte(cntIdx),
		byte(OpIconst1),
		byte(OpIadd),
		byte(OpPutstatic), byte(cntIdx >> 8), byte(cntIdx),
		byte(OpReturn),
	}
	cb.addMethod("<clinit>", "()V", 2, 0, clinit)

	readN := []byte{
		byte(OpGetstatic), byte(nIdx >> 8), byte(nIdx),
		byte(OpIreturn),
	}
	cb.addMethod("readN", "()I", 1, 0, readN)

	registry := NewRegistry()
	assert(t, RegisterBuiltins(registry, &stringsWriter{}) == nil, "RegisterBuiltins failed")

	source := mapSource{"test/S": cb.build()}
	loader := NewLoader(registry, source)
	_, err := loader.Load("test/S")
	assert(t, err == nil, "Load failed: %v", err)

	class, _ := registry.GetByName("test/S")
	readNMethod, ok := class.FindMethod("readN", "()I")
	assert(t, ok, "method readN()I not found")

	in := NewInterpreter(registry)
	for i := 0; i < 3; i++ {
		v, hasValue, err := in.invoke(readNMethod, nil)
		assert(t, err == nil, "invoke %d failed: %v", i, err)
		assert(t, hasValue, "expected a return value on call %d", i)
		assert(t, v.I == 42, "readN() call %d = %d, want 42", i, v.I)
	}

	cntField, err := class.FindStaticField("cnt")
	assert(t, err == nil, "cnt field missing: %v", err)
	assert(t, cntField.Value.I == 1, "cnt = %d after 3 accesses, want 1 (clinit ran once)", cntField.Value.I)
}

// invokevirtual with a return value (§8 property 11).
func TestInterpreterInvokevirtualReturnsValue(t *testing.T) {
	cb := newClassBuilder("test/Main", "java/lang/Object")
	mainClassIdx := cb.classRef("test/Main")
	fiveRefIdx := cb.methodRef("test/Main", "five", "()I")

	fiveCode := []byte{byte(OpIconst5), byte(OpIreturn)}
	cb.addMethod("five", "()I", 1, 1, fiveCode)

	callerCode := []byte{
		byte(OpNew), byte(mainClassIdx >> 8), byte(mainClassIdx),
		byte(OpInvokevirtual), byte(fiveRefIdx >> 8), byte(fiveRefIdx),
		byte(OpIreturn),
	}
	cb.addMethod("caller", "()I", 1, 0, callerCode)

	registry := NewRegistry()
	assert(t, RegisterBuiltins(registry, &stringsWriter{}) == nil, "RegisterBuiltins failed")

	source := mapSource{"test/Main": cb.build()}
	loader := NewLoader(registry, source)
	_, err := loader.Load("test/Main")
	assert(t, err == nil, "Load failed: %v", err)

	class, _ := registry.GetByName("test/Main")
	caller, ok := class.FindMethod("caller", "()I")
	assert(t, ok, "method caller()I not found")

	in := NewInterpreter(registry)
	v, hasValue, err := in.invoke(caller, nil)
	assert(t, err == nil, "invoke failed: %v", err)
	assert(t, hasValue, "expected a return value")
	assert(t, v.I == 5, "caller() = %d, want 5", v.I)
}
