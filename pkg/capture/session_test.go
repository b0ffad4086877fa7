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

package capture

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HorstBoy/cx88-sdr/pkg/dma"
)

// fakeCard stands in for the DMA engine: a ring plus the write counter
// register the engine advances after completing each page.
type fakeCard struct {
	ring    *dma.Ring
	counter atomic.Uint32
}

func newFakeCard(t *testing.T, pageCount int) *fakeCard {
	ring, err := dma.NewRing(dma.NewHeapAllocator(), pageCount*dma.PageSize)
	require.NoError(t, err)
	return &fakeCard{ring: ring}
}

// complete fills a page and advances the counter past it, the way the
// engine completes a page and moves on to the next one.
func (c *fakeCard) complete(page int, val byte) {
	b := c.ring.Page(page).Bytes()
	for i := range b {
		b[i] = val
	}
	c.counter.Store(uint32((page + 1) % c.ring.PageCount()))
}

func (c *fakeCard) open(nonblock bool) *Session {
	return NewSession(c.ring, c.counter.Load, nonblock, nil)
}

func TestNonBlockingCaughtUp(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(4)
	s := card.open(true)

	n, err := s.Read(make([]byte, dma.PageSize))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, s.Pos())
}

func TestNonBlockingShortRead(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(1)
	s := card.open(true)

	// Two pages completed, three requested.
	card.complete(0, 0xa1)
	card.complete(1, 0xa2)
	card.counter.Store(3)

	p := make([]byte, 3*dma.PageSize)
	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2*dma.PageSize, n)
	assert.Equal(t, int64(2*dma.PageSize), s.Pos())

	for i := 0; i < dma.PageSize; i++ {
		require.Equal(t, byte(0xa1), p[i])
		require.Equal(t, byte(0xa2), p[dma.PageSize+i])
	}

	// Consumed pages are cleared behind the read.
	for _, page := range []int{0, 1} {
		for _, b := range card.ring.Page(page).Bytes() {
			require.Zero(t, b)
		}
	}
}

func TestBlockingReadFollowsProducer(t *testing.T) {
	card := newFakeCard(t, 8)
	card.complete(0, 1)
	s := card.open(false)

	go func() {
		for p := 1; p <= 5; p++ {
			time.Sleep(200 * time.Microsecond)
			card.complete(p, byte(p+1))
		}
	}()

	p := make([]byte, 4*dma.PageSize)
	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 4*dma.PageSize, n)
	assert.Equal(t, int64(4*dma.PageSize), s.Pos())

	for page := 0; page < 4; page++ {
		for i := 0; i < dma.PageSize; i++ {
			require.Equal(t, byte(page+1), p[page*dma.PageSize+i],
				"page %d offset %d", page, i)
		}
	}
}

// TestRingWraparound walks a session anchored at page 3 of an 8 page
// ring across one full lap and checks that the logical stream visits the
// physical pages 3,4,...,7,0,1,2 and then lands back on page 3.
func TestRingWraparound(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(4)
	s := card.open(true)

	pageCount := card.ring.PageCount()
	for i := 0; i <= pageCount; i++ {
		phys := (3 + i) % pageCount
		card.complete(phys, byte(phys+1))
		card.counter.Store(uint32((phys + 2) % pageCount))

		p := make([]byte, dma.PageSize)
		n, err := s.Read(p)
		require.NoError(t, err)
		require.Equal(t, dma.PageSize, n, "lap step %d", i)
		require.Equal(t, byte(phys+1), p[0], "lap step %d", i)
		require.Equal(t, byte(phys+1), p[dma.PageSize-1], "lap step %d", i)
	}
	assert.Equal(t, int64(9*dma.PageSize), s.Pos())
}

func TestReadCrossesPageBoundary(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(1)
	s := card.open(true)

	card.complete(0, 0x11)
	card.complete(1, 0x22)
	card.counter.Store(3)

	// Half a page in, then a read spanning the boundary.
	n, err := s.Read(make([]byte, dma.PageSize/2))
	require.NoError(t, err)
	require.Equal(t, dma.PageSize/2, n)

	p := make([]byte, dma.PageSize)
	n, err = s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, dma.PageSize, n)
	for i := 0; i < dma.PageSize/2; i++ {
		require.Equal(t, byte(0x11), p[i])
		require.Equal(t, byte(0x22), p[dma.PageSize/2+i])
	}
}

func TestConsumeZeroLength(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(1)
	s := card.open(false)

	// Must not block even though nothing is available.
	n, err := s.Consume(0, func([]byte) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsumeSinkError(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(1)
	s := card.open(true)

	card.complete(0, 0x33)
	card.complete(1, 0x44)
	card.counter.Store(3)

	boom := errors.New("sink full")
	calls := 0
	n, err := s.Consume(2*dma.PageSize, func(src []byte) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, dma.PageSize, n)
	assert.Equal(t, int64(dma.PageSize), s.Pos())

	// Delivered bytes stay consumed; the next read starts on page 1.
	p := make([]byte, dma.PageSize)
	n, err = s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, dma.PageSize, n)
	assert.Equal(t, byte(0x44), p[0])
}

func TestCloseRunsOnCloseOnce(t *testing.T) {
	card := newFakeCard(t, 8)
	card.counter.Store(1)

	closed := 0
	s := NewSession(card.ring, card.counter.Load, true, func() { closed++ })
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, closed)
}

func TestInitialPageAnchor(t *testing.T) {
	card := newFakeCard(t, 8)

	// Raw counter 0 anchors on the last page of the ring.
	s := card.open(true)
	assert.Equal(t, uint32(7), s.initialPage)

	card.counter.Store(4)
	s = card.open(true)
	assert.Equal(t, uint32(3), s.initialPage)
}
