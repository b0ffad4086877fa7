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

// Package dma owns the page backed circular capture buffer. The chip's
// DMA engine is the only writer of page contents; the package provides no
// synchronization of its own, the capture session read protocol carries
// that responsibility.
package dma

const (
	// PageSize is the size of one ring slot. The DMA engine fills a page
	// with two cluster writes of ClusterSize bytes each, so clusters tile
	// pages exactly.
	PageSize    = 4096
	PageShift   = 12
	ClusterSize = 2048

	// DefaultRingSize matches the 64 MiB ring of the reference hardware
	// setup, giving 16384 pages.
	DefaultRingSize = 64 * 1024 * 1024
)

// Ring is the fixed pool of pinned pages the DMA engine cycles through.
// Pages are allocated once at device attach and never resized.
type Ring struct {
	alloc Allocator
	pages []*Buffer
}

func NewRing(alloc Allocator, size int) (*Ring, error) {
	if size <= 0 || size%PageSize != 0 {
		return nil, ErrBadRingSize{Size: size}
	}
	r := &Ring{alloc: alloc}
	for i := 0; i < size/PageSize; i++ {
		page, err := alloc.AllocBuffer(PageSize)
		if err != nil {
			r.Free()
			return nil, err
		}
		r.pages = append(r.pages, page)
	}
	return r, nil
}

func (r *Ring) PageCount() int {
	return len(r.pages)
}

func (r *Ring) Size() int {
	return len(r.pages) * PageSize
}

func (r *Ring) Page(i int) *Buffer {
	return r.pages[i]
}

// PageForPos maps a session's logical stream offset onto the physical
// ring: the page index rotated by the page the hardware was about to
// write when the session opened, and the byte offset inside that page.
func (r *Ring) PageForPos(initialPage uint32, pos int64) (pnum, off int) {
	pnum = int((int64(initialPage) + (pos%int64(r.Size()))>>PageShift) % int64(len(r.pages)))
	off = int(pos % PageSize)
	return pnum, off
}

// LastCompletedPage converts the raw hardware counter value into the
// index of the last fully written page. The counter names the page the
// engine will write next, so raw value 0 means it just wrapped onto the
// last page.
func (r *Ring) LastCompletedPage(raw uint32) uint32 {
	if raw == 0 {
		return uint32(len(r.pages) - 1)
	}
	return raw - 1
}

// Free releases every page. Only the device detach path calls this.
func (r *Ring) Free() {
	for _, page := range r.pages {
		r.alloc.FreeBuffer(page)
	}
	r.pages = nil
}
