package server

// A hand-assembled minimal WebAssembly binary encoder, the same technique
// pkg/wasmhost's own tests use: there is no guest compiler available in
// this environment, so the fixture guest exercised by handler_test.go is
// built directly from the binary format.

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

func funcBody(instructions []byte) []byte {
	body := append([]byte{0x00}, instructions...)
	return append(uleb128(uint64(len(body))), body...)
}

func i32Const(v int64) []byte { return append([]byte{opI32Const}, sleb128(v)...) }
func i32Load() []byte         { return []byte{opI32Load, 0x02, 0x00} }
func call(fn uint64) []byte   { return append([]byte{opCall}, uleb128(fn)...) }

// echoModuleBytes builds a guest that reads the request via read_request and
// immediately writes the same bytes back via write_response.
//
// Host function indices: 0 = read_request, 1 = write_response.
// Guest function indices: 2 = alloc, 3 = main.
// Memory layout: scratch ptr/len pair at byte offsets 0 and 4.
func echoModuleBytes() []byte {
	typeReqResp := funcType(2, 1)
	typeAlloc := funcType(1, 1)
	typeMain := funcType(0, 0)

	typeSec := section(secType, append(uleb128(3), append(append(typeReqResp, typeAlloc...), typeMain...)...))

	importReadRequest := append(vecName("oak_functions"), vecName("read_request")...)
	importReadRequest = append(importReadRequest, importKindFunc)
	importReadRequest = append(importReadRequest, uleb128(0)...)

	importWriteResponse := append(vecName("oak_functions"), vecName("write_response")...)
	importWriteResponse = append(importWriteResponse, importKindFunc)
	importWriteResponse = append(importWriteResponse, uleb128(0)...)

	importSec := section(secImport, append(uleb128(2), append(importReadRequest, importWriteResponse...)...))

	funcSec := section(secFunction, append(uleb128(2), append(uleb128(1), uleb128(2)...)...))

	memSec := section(secMemory, append(uleb128(1), append([]byte{0x00}, uleb128(1)...)...))

	exportAlloc := append(vecName("alloc"), exportKindFunc)
	exportAlloc = append(exportAlloc, uleb128(2)...)
	exportMainE := append(vecName("main"), exportKindFunc)
	exportMainE = append(exportMainE, uleb128(3)...)
	exportMem := append(vecName("memory"), exportKindMem)
	exportMem = append(exportMem, uleb128(0)...)
	exportSec := section(secExport, append(uleb128(3), append(append(exportMem, exportAlloc...), exportMainE...)...))

	allocBody := funcBody(append(i32Const(1024), opEnd))

	var mainInstr []byte
	mainInstr = append(mainInstr, i32Const(0)...)
	mainInstr = append(mainInstr, i32Const(4)...)
	mainInstr = append(mainInstr, call(0)...)
	mainInstr = append(mainInstr, opDrop)
	mainInstr = append(mainInstr, i32Const(0)...)
	mainInstr = append(mainInstr, i32Load()...)
	mainInstr = append(mainInstr, i32Const(4)...)
	mainInstr = append(mainInstr, i32Load()...)
	mainInstr = append(mainInstr, call(1)...)
	mainInstr = append(mainInstr, opDrop)
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
