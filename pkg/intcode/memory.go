package intcode

import (
	"maps"
	"slices"
)

// Memory is the address space of a single machine. Addresses inside the
// loaded program are stored densely, anything past it lives in a sparse
// map that is created on first use.
type Memory struct {
	cells []int64
	extra map[int64]int64
}

func NewMemory(program []int64) *Memory {
	return &Memory{
		cells: slices.Clone(program),
	}
}

func (m *Memory) Read(addr int64) int64 {
	if addr < int64(len(m.cells)) {
		return m.cells[addr]
	}

	return m.extra[addr]
}

func (m *Memory) Write(addr int64, val int64) {
	if addr < int64(len(m.cells)) {
		m.cells[addr] = val
		return
	}

	if m.extra == nil {
		m.extra = make(map[int64]int64)
	}

	m.extra[addr] = val
}

// Len is the size of the dense region, i.e. the length of the program the
// memory was created from.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Snapshot returns a copy of the dense region.
func (m *Memory) Snapshot() []int64 {
	return slices.Clone(m.cells)
}

// Extra returns the populated sparse addresses in ascending order.
func (m *Memory) Extra() []int64 {
	addrs := slices.Collect(maps.Keys(m.extra))
	slices.Sort(addrs)
	return addrs
}
