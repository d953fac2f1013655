package signature

// PatchOffset is where, within the entry object's data, the start-up code
// clears the saved language selection.
const PatchOffset = 0x3939F

// Wide matches the full ten-byte sequence and replaces the register clears
// with NOPs, turning the store of BH into a load of DL from the same operand.
var Wide = &Rule{
	Name:        "wide",
	Description: "xor bh,bh / xor edx,edx / mov [0x3fa35],bh",
	Offset:      PatchOffset,
	Fields: []Field{
		Replace("zero-language",
			[]byte{
				0x30, 0xff, // xor bh,bh
				0x31, 0xd2, // xor edx,edx
				0x88, 0x3d, 0x35, 0xfa, 0x03, 0x00, // mov ds:0x3fa35,bh
			},
			[]byte{
				0x90, 0x90, 0x90, 0x90, // nop x4
				0x8a, 0x15, 0x35, 0xfa, 0x03, 0x00, // mov dl,ds:0x3fa35
			}),
	},
}

// Narrow keeps the register clears and rewrites only the opcode and ModRM
// byte, leaving the memory operand as reported data.
var Narrow = &Rule{
	Name:        "narrow",
	Description: "xor edx,edx / xor bh,bh / mov [m32],bh",
	Offset:      PatchOffset,
	Fields: []Field{
		Literal("clear-registers",
			0x31, 0xd2, // xor edx,edx
			0x30, 0xff, // xor bh,bh
		),
		Replace("store-to-load",
			[]byte{0x88, 0x3d}, // mov [m32],bh
			[]byte{0x8a, 0x15}, // mov dl,[m32]
		),
		Address("language"),
	},
}
