package wasmhost

// A hand-assembled minimal WebAssembly binary encoder used only by this
// package's tests. There is no guest compiler available in this
// environment, so the fixture guests exercised by instance_test.go are
// built directly from the binary format rather than compiled from source
// text — the same approach wazero's own low-level tests use for small
// fixtures.

const (
	opI32Const = 0x41
	opI32Load  = 0x28
	opCall     = 0x10
	opDrop     = 0x1a
	opEnd      = 0x0b

	valtypeI32 = 0x7f

	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10

	importKindFunc = 0x00
	exportKindFunc = 0x00
	exportKindMem  = 0x02
)

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			return out
		}
	}
}

func sleb128(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func vecName(s string) []byte {
	return append(uleb128(uint64(len(s))), []byte(s)...)
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb128(uint64(len(payload)))...)
	return append(out, payload...)
}

// funcType encodes a function type with the given param and result value
// types (all i32 in these fixtures).
func funcType(params, results int) []byte {
	out := []byte{0x60}
	out = append(out, uleb128(uint64(params))...)
	for i := 0; i < params; i++ {
		out = append(out, valtypeI32)
	}
	out = append(out, uleb128(uint64(results))...)
	for i := 0; i < results; i++ {
		out = append(out, valtypeI32)
	}
	return out
}

// funcBody encodes a code-section entry with no locals and the given
// instruction bytes.
func funcBody(instructions []byte) []byte {
	body := append([]byte{0x00}, instructions...) // 0x00: zero local decl groups
	return append(uleb128(uint64(len(body))), body...)
}

func i32Const(v int64) []byte { return append([]byte{opI32Const}, sleb128(v)...) }
func i32Load() []byte         { return []byte{opI32Load, 0x02, 0x00} } // align=4 bytes, offset=0
func call(fn uint64) []byte   { return append([]byte{opCall}, uleb128(fn)...) }

// echoModuleBytes builds a guest that reads the request via read_request and
// immediately writes the same bytes back via write_response — the literal
// round-trip described in the testable properties for the request handler.
//
// Host function indices: 0 = read_request, 1 = write_response.
// Guest function indices: 2 = alloc, 3 = main.
// Memory layout: scratch ptr/len pair at byte offsets 0 and 4.
func echoModuleBytes() []byte {
	typeReqResp := funcType(2, 1) // (i32,i32) -> i32 : shared by read_request/write_response
	typeAlloc := funcType(1, 1)   // (i32) -> i32
	typeMain := funcType(0, 0)    // () -> ()

	typeSec := section(secType, append(uleb128(3), append(append(typeReqResp, typeAlloc...), typeMain...)...))

	importReadRequest := append(vecName("oak_functions"), vecName("read_request")...)
	importReadRequest = append(importReadRequest, importKindFunc)
	importReadRequest = append(importReadRequest, uleb128(0)...) // typeidx 0

	importWriteResponse := append(vecName("oak_functions"), vecName("write_response")...)
	importWriteResponse = append(importWriteResponse, importKindFunc)
	importWriteResponse = append(importWriteResponse, uleb128(0)...) // typeidx 0, same shape

	importSec := section(secImport, append(uleb128(2), append(importReadRequest, importWriteResponse...)...))

	funcSec := section(secFunction, append(uleb128(2), append(uleb128(1), uleb128(2)...)...)) // alloc:type1, main:type2

	memSec := section(secMemory, append(uleb128(1), append([]byte{0x00}, uleb128(1)...)...)) // 1 memory, min=1 page

	exportAlloc := append(vecName("alloc"), exportKindFunc)
	exportAlloc = append(exportAlloc, uleb128(2)...) // func index 2
	exportMainE := append(vecName("main"), exportKindFunc)
	exportMainE = append(exportMainE, uleb128(3)...) // func index 3
	exportMem := append(vecName("memory"), exportKindMem)
	exportMem = append(exportMem, uleb128(0)...)
	exportSec := section(secExport, append(uleb128(3), append(append(exportMem, exportAlloc...), exportMainE...)...))

	allocBody := funcBody(append(i32Const(1024), opEnd))

	var mainInstr []byte
	mainInstr = append(mainInstr, i32Const(0)...)  // destPtrPtr
	mainInstr = append(mainInstr, i32Const(4)...)  // destLenPtr
	mainInstr = append(mainInstr, call(0)...)      // read_request
	mainInstr = append(mainInstr, opDrop)          // discard status
	mainInstr = append(mainInstr, i32Const(0)...)  // &ptr
	mainInstr = append(mainInstr, i32Load()...)    // ptr
	mainInstr = append(mainInstr, i32Const(4)...)  // &len
	mainInstr = append(mainInstr, i32Load()...)    // len
	mainInstr = append(mainInstr, call(1)...)      // write_response
	mainInstr = append(mainInstr, opDrop)          // discard status
	mainInstr = append(mainInstr, opEnd)
	mainBody := funcBody(mainInstr)

	codeSec := section(secCode, append(uleb128(2), append(allocBody, mainBody...)...))

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, typeSec...)
	out = append(out, importSec...)
	out = append(out, funcSec...)
	out = append(out, memSec...)
	out = append(out, exportSec...)
	out = append(out, codeSec...)
	return out
}

// moduleMissingAllocBytes builds a module that exports memory and main but
// not alloc, to exercise Load's export verification.
func moduleMissingAllocBytes() []byte {
	typeMain := funcType(0, 0)
	typeSec := section(secType, append(uleb128(1), typeMain...))

	funcSec := section(secFunction, append(uleb128(1), uleb128(0)...)) // main: type0

	memSec := section(secMemory, append(uleb128(1), append([]byte{0x00}, uleb128(1)...)...))

	exportMainE := append(vecName("main"), exportKindFunc)
	exportMainE = append(exportMainE, uleb128(0)...) // func index 0 (no imports here)
	exportMem := append(vecName("memory"), exportKindMem)
	exportMem = append(exportMem, uleb128(0)...)
	exportSec := section(secExport, append(uleb128(2), append(exportMem, exportMainE...)...))

	mainBody := funcBody([]byte{opEnd})
	codeSec := section(secCode, append(uleb128(1), mainBody...))

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, typeSec...)
	out = append(out, funcSec...)
	out = append(out, memSec...)
	out = append(out, exportSec...)
	out = append(out, codeSec...)
	return out
}
