// Package register implements the Register Property Table: the static
// descriptor set mapping an NVMe register byte offset to {size, name,
// writable}, used by the Property handler to validate a
// Property-Get/Set request before dispatching it to the virtual
// controller.
//
// The table mirrors struct nvmf_prop and find_prop in
// original_source/lib/nvmf/session.c: a small linear-search descriptor
// list keyed by offset, since there are only four entries and the hot
// path is dominated by network I/O, not dispatch cost.
package register

import "github.com/liujun01203/spdk/internal/nvmf/types"

// Descriptor is one immutable entry of the Register Property Table.
// Writable is false for every register except CC. There is no readable
// flag: all four entries this target defines are readable (an absent Get
// in the original source means "reserved, reads as zero", which this
// target never needs since every offset it recognizes has a real backing
// value).
type Descriptor struct {
	Offset   uint32
	Size     uint8 // 4 or 8
	Name     string
	Writable bool
}

// Table is the compile-time Register Property Table, ordered by offset.
var Table = []Descriptor{
	{Offset: types.OffsetCAP, Size: 8, Name: "cap", Writable: false},
	{Offset: types.OffsetVS, Size: 4, Name: "vs", Writable: false},
	{Offset: types.OffsetCC, Size: 4, Name: "cc", Writable: true},
	{Offset: types.OffsetCSTS, Size: 4, Name: "csts", Writable: false},
}

// Find locates the descriptor for a byte offset. The second return
// value is false if no entry matches, mirroring find_prop returning
// NULL for an unknown offset.
func Find(offset uint32) (Descriptor, bool) {
	for _, d := range Table {
		if d.Offset == offset {
			return d, true
		}
	}
	return Descriptor{}, false
}
