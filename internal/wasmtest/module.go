// Package wasmtest encodes small WebAssembly modules for tests. It covers
// only what the loader tests need: function types, function imports, one
// memory, exports and active data segments.
package wasmtest

// ValType is a WebAssembly value type.
type ValType byte

// Value types.
const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	kindFunc   = 0x00
	kindMemory = 0x02
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a defined function. Its index follows all imports.
type Func struct {
	// Export is the exported name, empty for none.
	Export string
	// Body is the instruction sequence without the final end.
	Body []byte
	Type uint32
}

// Data is an active data segment in memory 0.
type Data struct {
	Bytes  []byte
	Offset uint32
}

// Module is an encodable module.
type Module struct {
	// MemoryExport names the exported memory, empty for none.
	MemoryExport string
	Types        []FuncType
	Imports      []Import
	Funcs        []Func
	Data         []Data
	// MemoryPages is the minimum size of memory 0. Zero means no memory.
	MemoryPages uint32
}

// Encode returns the binary form of m.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.Types) > 0 {
		sec := AppendU32(nil, uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec = append(sec, 0x60)
			sec = appendValTypes(sec, ft.Params)
			sec = appendValTypes(sec, ft.Results)
		}
		out = appendSection(out, sectionType, sec)
	}

	if len(m.Imports) > 0 {
		sec := AppendU32(nil, uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec = appendName(sec, imp.Module)
			sec = appendName(sec, imp.Name)
			sec = append(sec, kindFunc)
			sec = AppendU32(sec, imp.Type)
		}
		out = appendSection(out, sectionImport, sec)
	}

	if len(m.Funcs) > 0 {
		sec := AppendU32(nil, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			sec = AppendU32(sec, f.Type)
		}
		out = appendSection(out, sectionFunction, sec)
	}

	if m.MemoryPages > 0 {
		sec := AppendU32(nil, 1)
		sec = append(sec, 0x00)
		sec = AppendU32(sec, m.MemoryPages)
		out = appendSection(out, sectionMemory, sec)
	}

	var exports [][]byte
	for i, f := range m.Funcs {
		if f.Export == "" {
			continue
		}
		e := appendName(nil, f.Export)
		e = append(e, kindFunc)
		e = AppendU32(e, uint32(len(m.Imports)+i))
		exports = append(exports, e)
	}
	if m.MemoryPages > 0 && m.MemoryExport != "" {
		e := appendName(nil, m.MemoryExport)
		e = append(e, kindMemory, 0x00)
		exports = append(exports, e)
	}
	if len(exports) > 0 {
		sec := AppendU32(nil, uint32(len(exports)))
		for _, e := range exports {
			sec = append(sec, e...)
		}
		out = appendSection(out, sectionExport, sec)
	}

	if len(m.Funcs) > 0 {
		sec := AppendU32(nil, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			body := append([]byte{0x00}, f.Body...) // no locals
			body = append(body, OpEnd)
			sec = AppendU32(sec, uint32(len(body)))
			sec = append(sec, body...)
		}
		out = appendSection(out, sectionCode, sec)
	}

	if len(m.Data) > 0 {
		sec := AppendU32(nil, uint32(len(m.Data)))
		for _, d := range m.Data {
			sec = append(sec, 0x00)
			sec = append(sec, I32Const(int32(d.Offset))...) //nolint:gosec // test offsets are small
			sec = append(sec, OpEnd)
			sec = AppendU32(sec, uint32(len(d.Bytes)))
			sec = append(sec, d.Bytes...)
		}
		out = appendSection(out, sectionData, sec)
	}

	return out
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = AppendU32(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendName(b []byte, name string) []byte {
	b = AppendU32(b, uint32(len(name)))
	return append(b, name...)
}

func appendValTypes(b []byte, types []ValType) []byte {
	b = AppendU32(b, uint32(len(types)))
	for _, t := range types {
		b = append(b, byte(t))
	}
	return b
}
