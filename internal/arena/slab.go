// Package arena provides the bump allocator that owns every node of one
// compilation.
//
// A Slab hands out pointers into fixed-size chunks. Chunks are never moved or
// resized, so a pointer returned by Alloc stays valid until Release. Releasing
// drops every chunk at once; there is no per-node free.
package arena

import "unsafe"

const defaultChunk = 256

// Slab is a typed region allocator.
type Slab[T any] struct {
	chunks    [][]T
	chunkSize int
	count     int
}

// NewSlab creates a slab whose chunks hold chunkSize values. A non-positive
// size selects the default.
func NewSlab[T any](chunkSize int) *Slab[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunk
	}
	return &Slab[T]{chunkSize: chunkSize}
}

// Alloc copies v into the slab and returns its stable address.
func (s *Slab[T]) Alloc(v T) *T {
	if s.chunkSize == 0 {
		s.chunkSize = defaultChunk
	}
	n := len(s.chunks)
	if n == 0 || len(s.chunks[n-1]) == cap(s.chunks[n-1]) {
		s.chunks = append(s.chunks, make([]T, 0, s.chunkSize))
		n++
	}
	last := &s.chunks[n-1]
	*last = append(*last, v)
	s.count++
	return &(*last)[len(*last)-1]
}

// AllocSlice copies vs into the slab as one contiguous run. Runs longer than a
// chunk get a dedicated chunk.
func (s *Slab[T]) AllocSlice(vs []T) []T {
	if len(vs) == 0 {
		return nil
	}
	if s.chunkSize == 0 {
		s.chunkSize = defaultChunk
	}
	n := len(s.chunks)
	if n == 0 || cap(s.chunks[n-1])-len(s.chunks[n-1]) < len(vs) {
		size := s.chunkSize
		if len(vs) > size {
			size = len(vs)
		}
		s.chunks = append(s.chunks, make([]T, 0, size))
		n++
	}
	last := &s.chunks[n-1]
	start := len(*last)
	*last = append(*last, vs...)
	s.count += len(vs)
	return (*last)[start:len(*last):len(*last)]
}

// Len returns the number of values allocated since the last Release.
func (s *Slab[T]) Len() int {
	return s.count
}

// Bytes returns the reserved capacity in bytes.
func (s *Slab[T]) Bytes() uint64 {
	var zero T
	size := uint64(unsafe.Sizeof(zero))
	var total uint64
	for _, c := range s.chunks {
		total += uint64(cap(c)) * size
	}
	return total
}

// Release drops every chunk. Pointers handed out earlier must not be used
// afterwards.
func (s *Slab[T]) Release() {
	s.chunks = nil
	s.count = 0
}

// Stats summarises the occupancy of a group of slabs.
type Stats struct {
	Nodes int
	Bytes uint64
}

// Add accumulates the occupancy of one slab.
func (st *Stats) Add(nodes int, bytes uint64) {
	st.Nodes += nodes
	st.Bytes += bytes
}
