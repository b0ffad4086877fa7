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

// Package capture implements the byte stream read protocol on top of the
// DMA ring. The hardware is the single producer, advancing the write
// counter page by page; a session is one consumer position in the stream.
//
// The producer never stalls for a slow consumer. If a session falls a
// whole ring behind, the engine overwrites unread pages and the samples
// are silently lost; there is no overrun detection, matching the
// hardware's behavior. Pages are zeroed as they are consumed so a stalled
// producer can never cause already-delivered bytes to be read again.
package capture

import (
	"sync"
	"time"

	"github.com/HorstBoy/cx88-sdr/pkg/dma"
)

// pollInterval paces the blocking wait for the hardware counter. Even at
// the fastest sample rate the engine needs over 100 microseconds to
// complete a page, so this costs no throughput.
const pollInterval = 50 * time.Microsecond

// Counter reads the hardware write-position counter.
type Counter func() uint32

// Session is one open handle on the capture stream. pos is the logical
// byte offset into an unbounded virtual stream anchored at the page the
// hardware was about to write when the session opened.
//
// A single mutex serializes Read calls; two goroutines sharing a session
// take turns, they do not corrupt pos.
type Session struct {
	mu          sync.Mutex
	ring        *dma.Ring
	counter     Counter
	initialPage uint32
	pos         int64
	nonblock    bool
	onClose     func()
}

// NewSession snapshots the hardware position so that pos 0 maps to the
// page the engine was about to write. The raw counter value 0 means the
// engine just wrapped onto the last page.
func NewSession(ring *dma.Ring, counter Counter, nonblock bool, onClose func()) *Session {
	pageCount := uint32(ring.PageCount())
	return &Session{
		ring:        ring,
		counter:     counter,
		initialPage: (counter() + pageCount - 1) % pageCount,
		nonblock:    nonblock,
		onClose:     onClose,
	}
}

// Pos returns the session's logical stream offset.
func (s *Session) Pos() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *Session) NonBlocking() bool {
	return s.nonblock
}

func (s *Session) Close() error {
	if s.onClose != nil {
		s.onClose()
		s.onClose = nil
	}
	return nil
}

// Read fills p with the next bytes of the stream. In blocking mode it
// returns only once p is full; in non-blocking mode it returns whatever
// the hardware has completed, possibly zero bytes. It never returns an
// error: the stream has no end and the copy cannot fault.
func (s *Session) Read(p []byte) (int, error) {
	pos := 0
	n, _ := s.Consume(len(p), func(src []byte) error {
		copy(p[pos:], src)
		pos += len(src)
		return nil
	})
	return n, nil
}

// Consume runs the read protocol for size bytes, handing each copied
// chunk to sink. A sink error aborts the call immediately; bytes already
// handed over stay consumed and are not re-delivered, exactly like a
// caller buffer fault in the reference read path.
func (s *Session) Consume(size int, sink func(src []byte) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if size == 0 {
		return 0, nil
	}

	pnum, _ := s.ring.PageForPos(s.initialPage, s.pos)
	hwPage := int(s.ring.LastCompletedPage(s.counter()))

	if pnum == hwPage && s.nonblock {
		return 0, nil
	}

	result := 0
	for size > 0 {
		for size > 0 && pnum != hwPage {
			off := int(s.pos % dma.PageSize)
			// One step never crosses a page boundary.
			length := dma.PageSize - off
			if length > size {
				length = size
			}
			src := s.ring.Page(pnum).Bytes()[off : off+length]
			if err := sink(src); err != nil {
				return result, err
			}
			// Clear consumed bytes so they can never be delivered
			// twice. The producer has already moved past this window.
			for i := range src {
				src[i] = 0
			}
			result += length
			s.pos += int64(length)
			size -= length
			pnum, _ = s.ring.PageForPos(s.initialPage, s.pos)
		}
		if size > 0 {
			if s.nonblock {
				return result, nil
			}
			time.Sleep(pollInterval)
			hwPage = int(s.ring.LastCompletedPage(s.counter()))
		}
	}
	return result, nil
}
