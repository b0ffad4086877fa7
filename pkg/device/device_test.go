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

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HorstBoy/cx88-sdr/pkg/dma"
	"github.com/HorstBoy/cx88-sdr/pkg/mmio"
)

func attach(t *testing.T) (*Device, *mmio.Mem) {
	mem := mmio.NewMem()
	d, err := Attach("cx88sdr0", mem, dma.NewHeapAllocator(), 8*dma.PageSize)
	require.NoError(t, err)
	return d, mem
}

func TestAttachProgramsCard(t *testing.T) {
	d, mem := attach(t)

	// SRAM tables point the engine at the program and the CDT.
	assert.Equal(t, d.prog.BusAddr(), mem.Read32(Chn24CmdsBase+0))
	assert.Equal(t, uint32(CDTBase), mem.Read32(Chn24CmdsBase+4))
	assert.Equal(t, uint32(ClusterBufNum*2), mem.Read32(Chn24CmdsBase+8))
	assert.Equal(t, uint32(RISCInstQueue), mem.Read32(Chn24CmdsBase+12))

	for i := uint32(0); i < ClusterBufNum; i++ {
		assert.Equal(t, uint32(ClusterBufferBase+i*ClusterBufSize),
			mem.Read32(CDTBase+16*i))
	}

	assert.Equal(t, uint32(CDTBase), mem.Read32(MoDMA24Ptr2))
	assert.Equal(t, uint32((ClusterBufSize>>3)-1), mem.Read32(MoDMA24Cnt1))
	assert.Equal(t, uint32(ClusterBufNum*2), mem.Read32(MoDMA24Cnt2))

	// DMA engine running, interrupts armed for channel 24.
	assert.Equal(t, uint32(1<<5), mem.Read32(MoDevCntrl2))
	assert.Equal(t, uint32((1<<7)|(1<<3)), mem.Read32(MoVidDMACntrl))
	assert.Equal(t, uint32(InterruptMask), mem.Read32(MoVidIntMsk))

	// Default rate is 8 FSC 8-bit.
	assert.Equal(t, uint32((1<<6)|(3<<1)), mem.Read32(MoCaptureCtrl))
	assert.Equal(t, uint32(1<<17), mem.Read32(MoSConvReg))
	assert.Equal(t, uint32(0x10<<20), mem.Read32(MoPLLReg))

	// Default input is mux 1.
	assert.Equal(t, uint32((1<<16)|(1<<14)|(1<<13)|(1<<4)|0x1),
		mem.Read32(MoInputFormat))

	// Audio and chroma converters powered down.
	assert.Equal(t, uint32(0x12), mem.Read32(MoAFECfgIO))
}

func TestAttachDefaultsRingSize(t *testing.T) {
	mem := mmio.NewMem()
	d, err := Attach("cx88sdr0", mem, dma.NewHeapAllocator(), 0)
	require.NoError(t, err)
	assert.Equal(t, dma.DefaultRingSize, d.Ring().Size())
	assert.Equal(t, dma.DefaultRingSize/dma.PageSize, d.Ring().PageCount())
}

func TestDetachStopsEngine(t *testing.T) {
	d, mem := attach(t)
	d.Detach()

	assert.Zero(t, mem.Read32(MoDevCntrl2))
	assert.Zero(t, mem.Read32(MoVidDMACntrl))
	assert.Zero(t, mem.Read32(MoVidIntMsk))
	assert.Zero(t, mem.Read32(MoCaptureCtrl))
	assert.Zero(t, d.Ring().PageCount())
}

func TestOpenCloseInterruptMask(t *testing.T) {
	d, mem := attach(t)

	s := d.Open(true)
	assert.Equal(t, uint32(1), mem.Read32(MoPCIIntMsk))
	require.NoError(t, s.Close())
	assert.Zero(t, mem.Read32(MoPCIIntMsk))
}

func TestOpenAnchorsAtCounter(t *testing.T) {
	d, mem := attach(t)

	// Counter 4 anchors the session on page 3.
	mem.Write32(MoVBIGPCnt, 4)
	s := d.Open(true)

	page3 := d.Ring().Page(3).Bytes()
	for i := range page3 {
		page3[i] = 0xaa
	}
	mem.Write32(MoVBIGPCnt, 5)

	p := make([]byte, 1)
	n, err := s.Read(p)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, byte(0xaa), p[0])
}

func TestSetGainClamps(t *testing.T) {
	d, mem := attach(t)

	d.SetGain(17)
	assert.Equal(t, uint32(17), d.Gain())
	assert.Equal(t, uint32((1<<23)|(17<<16)|(0xff<<8)), mem.Read32(MoAGCGainAdj4))

	d.SetGain(99)
	assert.Equal(t, uint32(GainMax), d.Gain())
	assert.Equal(t, uint32((1<<23)|(GainMax<<16)|(0xff<<8)), mem.Read32(MoAGCGainAdj4))
}

func TestSetInputCoerces(t *testing.T) {
	d, mem := attach(t)

	d.SetInput(Vmux03)
	assert.Equal(t, Vmux03, d.Input())
	assert.Equal(t, uint32((1<<16)|(3<<14)|(1<<13)|(1<<4)|0x1),
		mem.Read32(MoInputFormat))

	d.SetInput(Input(9))
	assert.Equal(t, DefaultInput, d.Input())
}

func TestSetRateProgramsPLL(t *testing.T) {
	d, mem := attach(t)

	tests := []struct {
		rate    Rate
		capture uint32
		sconv   uint32
		pll     uint32
	}{
		{Rate4FSC8Bit, (1 << 6) | (3 << 1), (1 << 17) * 2, (1 << 26) | (0x14 << 20)},
		{Rate8FSC8Bit, (1 << 6) | (3 << 1), 1 << 17, 0x10 << 20},
		{Rate10FSC8Bit, (1 << 6) | (3 << 1), (1 << 17) * 4 / 5, 0x14 << 20},
		{Rate2FSC16Bit, (1 << 6) | (1 << 5) | (3 << 1), (1 << 17) * 2, (1 << 26) | (0x14 << 20)},
		{Rate4FSC16Bit, (1 << 6) | (1 << 5) | (3 << 1), 1 << 17, 0x10 << 20},
		{Rate5FSC16Bit, (1 << 6) | (1 << 5) | (3 << 1), (1 << 17) * 4 / 5, 0x14 << 20},
	}
	for _, tt := range tests {
		d.SetRate(tt.rate)
		assert.Equal(t, tt.rate, d.Rate())
		assert.Equal(t, tt.capture, mem.Read32(MoCaptureCtrl), tt.rate.String())
		assert.Equal(t, tt.sconv, mem.Read32(MoSConvReg), tt.rate.String())
		assert.Equal(t, tt.pll, mem.Read32(MoPLLReg), tt.rate.String())
	}

	d.SetRate(Rate(42))
	assert.Equal(t, DefaultRate, d.Rate())
}

func TestSetFormatFallsBack(t *testing.T) {
	d, _ := attach(t)

	assert.Equal(t, FormatCU16LE, d.SetFormat(FormatCU16LE))
	assert.Equal(t, 2, d.Format().SampleSize())

	assert.Equal(t, FormatCU8, d.SetFormat(Format("CS16")))
	assert.Equal(t, 1, d.Format().SampleSize())
}

func TestStatus(t *testing.T) {
	d, mem := attach(t)
	mem.Write32(MoVBIGPCnt, 6)
	d.SetGain(5)

	st := d.Status()
	assert.Equal(t, "cx88sdr0", st.Name)
	assert.Equal(t, uint32(5), st.Gain)
	assert.Equal(t, "28.636363 MHz, 8-bit", st.RateLabel)
	assert.Equal(t, "CU8", st.Format)
	assert.Equal(t, 1, st.SampleSize)
	assert.Equal(t, 8, st.PageCount)
	assert.Equal(t, 8*dma.PageSize, st.RingSize)
	assert.Equal(t, uint32(6), st.Counter)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	d, _ := attach(t)

	require.NoError(t, r.Add(d))
	assert.Error(t, r.Add(d))

	got, err := r.Get("cx88sdr0")
	require.NoError(t, err)
	assert.Equal(t, d, got)

	assert.Len(t, r.All(), 1)

	r.Remove("cx88sdr0")
	_, err = r.Get("cx88sdr0")
	assert.Error(t, err)
}
