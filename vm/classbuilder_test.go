package classvm

import "encoding/binary"

// byteBuf is a tiny big-endian byte-appending writer, the mirror
// image of reader (reader.go) — used only by tests to assemble
// class-file byte blobs.
type byteBuf struct {
	b []byte
}

func (w *byteBuf) u8(v byte)     { w.b = append(w.b, v) }
func (w *byteBuf) u16(v uint16)  { w.b = binary.BigEndian.AppendUint16(w.b, v) }
func (w *byteBuf) u32(v uint32)  { w.b = binary.BigEndian.AppendUint32(w.b, v) }
func (w *byteBuf) bytes(v []byte) { w.b = append(w.b, v...) }

// classBuilder assembles a class-file byte blob for tests. It plays
// the same role the teacher's compile.go plays — turning a
// human-friendly description into the binary form the machine
// consumes (KTStephano-GVM/vm/compile.go) — adapted here to the
// JVM-style class-file format instead of a custom stack-machine
// assembly syntax.
type classBuilder struct {
	thisNameVal string
	superName   string
	thisIdx     uint16
	superIdx    uint16
	pool        []cpEntry // pool[0] is the reserved unused slot

	utf8Index  map[string]uint16
	classIndex map[string]uint16
	natIndex   map[string]uint16
	refIndex   map[string]uint16

	fields  []builtMember
	methods []builtMember
}

type builtMember struct {
	flags      uint16
	nameIdx    uint16
	descIdx    uint16
	code       *builtCode // nil for fields and for bodiless methods
}

type builtCode struct {
	maxStack  uint16
	maxLocals uint16
	bytes     []byte
}

func newClassBuilder(thisName, superName string) *classBuilder {
	cb := &classBuilder{
		thisNameVal: thisName,
		superName:   superName,
		pool:        []cpEntry{{}},
		utf8Index:   make(map[string]uint16),
		classIndex:  make(map[string]uint16),
		natIndex:    make(map[string]uint16),
		refIndex:    make(map[string]uint16),
	}
	cb.thisIdx = cb.classRef(thisName)
	if superName != "" {
		cb.superIdx = cb.classRef(superName)
	}
	return cb
}

func (cb *classBuilder) addEntry(e cpEntry) uint16 {
	cb.pool = append(cb.pool, e)
	return uint16(len(cb.pool) - 1)
}

func (cb *classBuilder) utf8(s string) uint16 {
	if idx, ok := cb.utf8Index[s]; ok {
		return idx
	}
	idx := cb.addEntry(cpEntry{tag: cpUtf8, utf8: []byte(s)})
	cb.utf8Index[s] = idx
	return idx
}

func (cb *classBuilder) classRef(name string) uint16 {
	if idx, ok := cb.classIndex[name]; ok {
		return idx
	}
	nameIdx := cb.utf8(name)
	idx := cb.addEntry(cpEntry{tag: cpClass, nameIndex: nameIdx})
	cb.classIndex[name] = idx
	return idx
}

func (cb *classBuilder) nameAndType(name, descriptor string) uint16 {
	key := name + "\x00" + descriptor
	if idx, ok := cb.natIndex[key]; ok {
		return idx
	}
	idx := cb.addEntry(cpEntry{tag: cpNameAndType, nameIndex: cb.utf8(name), descriptorIndex: cb.utf8(descriptor)})
	cb.natIndex[key] = idx
	return idx
}

func (cb *classBuilder) methodRef(className, name, descriptor string) uint16 {
	key := "m:" + className + "\x00" + name + "\x00" + descriptor
	if idx, ok := cb.refIndex[key]; ok {
		return idx
	}
	idx := cb.addEntry(cpEntry{tag: cpMethodRef, classIndex: cb.classRef(className), nameAndTypeIndex: cb.nameAndType(name, descriptor)})
	cb.refIndex[key] = idx
	return idx
}

func (cb *classBuilder) fieldRef(className, name, descriptor string) uint16 {
	key := "f:" + className + "\x00" + name + "\x00" + descriptor
	if idx, ok := cb.refIndex[key]; ok {
		return idx
	}
	idx := cb.addEntry(cpEntry{tag: cpFieldRef, classIndex: cb.classRef(className), nameAndTypeIndex: cb.nameAndType(name, descriptor)})
	cb.refIndex[key] = idx
	return idx
}

func (cb *classBuilder) intConst(v int32) uint16 {
	return cb.addEntry(cpEntry{tag: cpInteger, intVal: uint32(v)})
}

func (cb *classBuilder) stringConst(s string) uint16 {
	return cb.addEntry(cpEntry{tag: cpString, utf8Index: cb.utf8(s)})
}

func (cb *classBuilder) addField(flags uint16, name, descriptor string) {
	cb.fields = append(cb.fields, builtMember{flags: flags, nameIdx: cb.utf8(name), descIdx: cb.utf8(descriptor)})
}

func (cb *classBuilder) addMethod(name, descriptor string, maxStack, maxLocals uint16, code []byte) {
	cb.methods = append(cb.methods, builtMember{
		nameIdx: cb.utf8(name),
		descIdx: cb.utf8(descriptor),
		code:    &builtCode{maxStack: maxStack, maxLocals: maxLocals, bytes: code},
	})
}

// build serializes the accumulated constant pool, fields, and methods
// into a class-file byte blob the loader can parse.
func (cb *classBuilder) build() []byte {
	codeNameIdx := cb.utf8("Code")

	w := &byteBuf{}
	w.u32(classFileMagic)
	w.u16(0) // minor
	w.u16(0) // major

	w.u16(uint16(len(cb.pool)))
	for i := 1; i < len(cb.pool); i++ {
		writeCPEntry(w, cb.pool[i])
	}

	w.u16(0) // access_flags
	w.u16(cb.thisIdx)
	w.u16(cb.superIdx)
	w.u16(0) // interfaces_count

	w.u16(uint16(len(cb.fields)))
	for _, f := range cb.fields {
		writeMember(w, f, codeNameIdx)
	}

	w.u16(uint16(len(cb.methods)))
	for _, m := range cb.methods {
		writeMember(w, m, codeNameIdx)
	}

	w.u16(0) // class attributes_count
	return w.b
}

func writeCPEntry(w *byteBuf, e cpEntry) {
	w.u8(e.tag)
	switch e.tag {
	case cpUtf8:
		w.u16(uint16(len(e.utf8)))
		w.bytes(e.utf8)
	case cpInteger:
		w.u32(e.intVal)
	case cpClass:
		w.u16(e.nameIndex)
	case cpString:
		w.u16(e.utf8Index)
	case cpFieldRef, cpMethodRef:
		w.u16(e.classIndex)
		w.u16(e.nameAndTypeIndex)
	case cpNameAndType:
		w.u16(e.nameIndex)
		w.u16(e.descriptorIndex)
	case cpDynamic, cpInvokeDynamic:
		w.u16(e.bootstrapIndex)
		w.u16(e.nameAndTypeIndex)
	case cpMethodHandle:
		w.u8(e.refKind)
		w.u16(e.refIndex)
	default:
		panic("writeCPEntry: unknown tag")
	}
}

func writeMember(w *byteBuf, m builtMember, codeNameIdx uint16) {
	w.u16(m.flags)
	w.u16(m.nameIdx)
	w.u16(m.descIdx)

	if m.code == nil {
		w.u16(0) // attributes_count
		return
	}

	w.u16(1) // attributes_count: just Code
	w.u16(codeNameIdx)

	inner := &byteBuf{}
	inner.u16(m.code.maxStack)
	inner.u16(m.code.maxLocals)
	inner.u32(uint32(len(m.code.bytes)))
	inner.bytes(m.code.bytes)
	inner.u16(0) // exception_table_length
	inner.u16(0) // nested attributes_count

	w.u32(uint32(len(inner.b)))
	w.bytes(inner.b)
}
