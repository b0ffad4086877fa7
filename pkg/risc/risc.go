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

// Package risc generates the micro-instruction program the CX2388x DMA
// engine executes on its own. The program writes the capture ring pages
// in order, two half-page clusters per page, and jumps back on itself so
// the engine runs forever without software intervention.
package risc

import (
	"unsafe"

	"github.com/HorstBoy/cx88-sdr/pkg/dma"
)

const (
	OpWrite = 0x10000000
	OpJump  = 0x70000000
	OpSync  = 0x80000000

	// SOL and EOL bits: each cluster write is a complete line.
	BitsSolEol = 3 << 26
	// IRQ1 flag, requests an interrupt when the instruction completes.
	BitIRQ1 = 1 << 24
	// Counter control field: 01 increments the write counter, 11
	// increments and re-arms it for the next lap of the ring.
	CntInc      = 1 << 16
	CntIncReset = 3 << 16

	// IRQPeriod is the distance between interrupt-flagged writes.
	IRQPeriod = 512
)

// BufferSize returns the pinned buffer size needed for a ring of
// pageCount pages: four words per page plus one page of slack for the
// sync and jump overhead.
func BufferSize(pageCount int) int {
	return pageCount*16 + dma.PageSize
}

// Program is a generated instruction sequence held in a pinned buffer so
// the DMA engine can fetch it by bus address.
type Program struct {
	buf *dma.Buffer
	n   int
}

func NewProgram(buf *dma.Buffer) *Program {
	return &Program{buf: buf}
}

func (p *Program) BusAddr() uint32 {
	return p.buf.BusAddr()
}

// LoopAddr is the jump target: the instruction right after the sync word.
func (p *Program) LoopAddr() uint32 {
	return p.buf.BusAddr() + 4
}

// Len is the number of generated words.
func (p *Program) Len() int {
	return p.n
}

// Instructions is the number of generated instructions: two writes per
// page plus the sync and the jump.
func (p *Program) Instructions() int {
	if p.n == 0 {
		return 0
	}
	return (p.n-3)/2 + 2
}

// Words exposes the generated words. The slice aliases the pinned buffer.
func (p *Program) Words() []uint32 {
	return p.words()[:p.n]
}

func (p *Program) words() []uint32 {
	b := p.buf.Bytes()
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// Generate overwrites the program with the instruction sequence for the
// given ring. The buffer is zeroed first so a regeneration can never
// leave stale instructions behind the new jump. Pure generation into
// fixed capacity, no error path.
func (p *Program) Generate(ring *dma.Ring) {
	words := p.words()
	for i := range words {
		words[i] = 0
	}

	i := 0
	words[i] = OpSync | CntIncReset
	i++

	irqt := 0
	for pn := 0; pn < ring.PageCount(); pn++ {
		irqt++
		irqt &= IRQPeriod - 1
		busAddr := ring.Page(pn).BusAddr()

		words[i] = OpWrite | dma.ClusterSize | BitsSolEol
		i++
		words[i] = busAddr
		i++

		instr := uint32(OpWrite | dma.ClusterSize | BitsSolEol)
		if irqt == 0 {
			instr |= BitIRQ1
		}
		if pn < ring.PageCount()-1 {
			instr |= CntInc
		} else {
			instr |= CntIncReset
		}
		words[i] = instr
		i++
		words[i] = busAddr + dma.ClusterSize
		i++
	}

	words[i] = OpJump
	i++
	words[i] = p.LoopAddr()
	i++
	p.n = i
}
