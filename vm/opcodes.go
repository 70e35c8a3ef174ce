package classvm

// Opcode is one instruction byte from the bytecode subset this
// interpreter implements (§4.9's required opcode set).
type Opcode byte

const (
	OpIconstM1 Opcode = 2
	OpIconst0  Opcode = 3
	OpIconst1  Opcode = 4
	OpIconst2  Opcode = 5
	OpIconst3  Opcode = 6
	OpIconst4  Opcode = 7
	OpIconst5  Opcode = 8

	OpBipush Opcode = 16
	OpSipush Opcode = 17
	OpLdc    Opcode = 18

	OpIload Opcode = 21
	OpAload Opcode = 25

	OpIload0 Opcode = 26
	OpIload1 Opcode = 27
	OpIload2 Opcode = 28
	OpIload3 Opcode = 29

	OpAload0 Opcode = 42
	OpAload1 Opcode = 43
	OpAload2 Opcode = 44
	OpAload3 Opcode = 45

	OpAaload Opcode = 50

	OpIstore Opcode = 54
	OpAstore Opcode = 58

	OpIstore0 Opcode = 59
	OpIstore1 Opcode = 60
	OpIstore2 Opcode = 61
	OpIstore3 Opcode = 62

	OpAstore0 Opcode = 75
	OpAstore1 Opcode = 76
	OpAstore2 Opcode = 77
	OpAstore3 Opcode = 78

	OpAastore Opcode = 83

	OpPop Opcode = 87
	OpDup Opcode = 89

	OpIadd Opcode = 96

	OpIinc Opcode = 132

	OpIfIcmpeq Opcode = 159
	OpIfIcmpne Opcode = 160
	OpIfIcmplt Opcode = 161
	OpIfIcmpge Opcode = 162
	OpIfIcmpgt Opcode = 163
	OpIfIcmple Opcode = 164

	OpGoto Opcode = 167

	OpIreturn Opcode = 172
	OpReturn  Opcode = 177

	OpGetstatic Opcode = 178
	OpPutstatic Opcode = 179
	OpGetfield  Opcode = 180
	OpPutfield  Opcode = 181

	OpInvokevirtual Opcode = 182
	OpInvokespecial Opcode = 183

	OpInvokedynamic Opcode = 186

	OpNew        Opcode = 187
	OpAnewarray  Opcode = 189
	OpArraylength Opcode = 190
)

var opcodeNames = map[Opcode]string{
	OpIconstM1: "iconst_m1", OpIconst0: "iconst_0", OpIconst1: "iconst_1",
	OpIconst2: "iconst_2", OpIconst3: "iconst_3", OpIconst4: "iconst_4", OpIconst5: "iconst_5",
	OpBipush: "bipush", OpSipush: "sipush", OpLdc: "ldc",
	OpIload: "iload", OpAload: "aload",
	OpIload0: "iload_0", OpIload1: "iload_1", OpIload2: "iload_2", OpIload3: "iload_3",
	OpAload0: "aload_0", OpAload1: "aload_1", OpAload2: "aload_2", OpAload3: "aload_3",
	OpAaload: "aaload",
	OpIstore: "istore", OpAstore: "astore",
	OpIstore0: "istore_0", OpIstore1: "istore_1", OpIstore2: "istore_2", OpIstore3: "istore_3",
	OpAstore0: "astore_0", OpAstore1: "astore_1", OpAstore2: "astore_2", OpAstore3: "astore_3",
	OpAastore: "aastore",
	OpPop:     "pop", OpDup: "dup",
	OpIadd: "iadd", OpIinc: "iinc",
	OpIfIcmpeq: "if_icmpeq", OpIfIcmpne: "if_icmpne", OpIfIcmplt: "if_icmplt",
	OpIfIcmpge: "if_icmpge", OpIfIcmpgt: "if_icmpgt", OpIfIcmple: "if_icmple",
	OpGoto: "goto", OpIreturn: "ireturn", OpReturn: "return",
	OpGetstatic: "getstatic", OpPutstatic: "putstatic",
	OpGetfield: "getfield", OpPutfield: "putfield",
	OpInvokevirtual: "invokevirtual", OpInvokespecial: "invokespecial",
	OpInvokedynamic: "invokedynamic",
	OpNew:           "new", OpAnewarray: "anewarray", OpArraylength: "arraylength",
}

// String gives each opcode a mnemonic for trace output and error
// messages, mirroring the teacher's Bytecode.String() table
// (KTStephano-GVM/vm/bytecode.go).
func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "?unknown?"
}
