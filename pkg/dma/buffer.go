/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package dma

// Buffer is a pinned DMA-capable memory region with a bus address that
// stays valid for the lifetime of the buffer. The RISC program generator
// and the SRAM tables only ever see the bus address.
type Buffer struct {
	buf []byte
	bus uint32
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) BusAddr() uint32 {
	return b.bus
}

func (b *Buffer) Size() int {
	return len(b.buf)
}

// Allocator hands out pinned buffers. Allocation happens once per device
// attach on a single goroutine; implementations need no locking.
type Allocator interface {
	AllocBuffer(size int) (*Buffer, error)
	FreeBuffer(b *Buffer) error
}

// HeapAllocator backs buffers with ordinary Go memory and synthesizes bus
// addresses from a fixed base. It is what tests and dry runs use; driving
// real hardware needs an allocator backed by kernel pinned memory.
type HeapAllocator struct {
	next uint32
}

var _ Allocator = &HeapAllocator{}

const heapBusBase = 0x01000000

func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{next: heapBusBase}
}

func (a *HeapAllocator) AllocBuffer(size int) (*Buffer, error) {
	if size <= 0 || size%4 != 0 {
		return nil, ErrBadBufferSize{Size: size}
	}
	b := &Buffer{
		buf: make([]byte, size),
		bus: a.next,
	}
	a.next += uint32((size + PageSize - 1) &^ (PageSize - 1))
	return b, nil
}

func (a *HeapAllocator) FreeBuffer(b *Buffer) error {
	b.buf = nil
	return nil
}
