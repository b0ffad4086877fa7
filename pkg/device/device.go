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

// Package device owns the CX2388x lifecycle: DMA memory allocation, RISC
// program generation, the bring-up and tear-down register sequences and
// the settable capture options. The data plane (ring + sessions) and the
// control plane (gain/input/rate) touch independent registers, so
// settings may change while a session is reading.
package device

import (
	"sync"

	"github.com/HorstBoy/cx88-sdr/pkg/capture"
	"github.com/HorstBoy/cx88-sdr/pkg/dma"
	"github.com/HorstBoy/cx88-sdr/pkg/log"
	"github.com/HorstBoy/cx88-sdr/pkg/mmio"
	"github.com/HorstBoy/cx88-sdr/pkg/risc"
)

type Device struct {
	Name string

	mmio    mmio.Ops
	alloc   dma.Allocator
	ring    *dma.Ring
	progBuf *dma.Buffer
	prog    *risc.Program

	mu     sync.Mutex
	gain   uint32
	input  Input
	rate   Rate
	format Format
}

// Attach brings up a card: allocates the RISC program buffer and the DMA
// ring, generates the program, resets the chip and programs the SRAM
// descriptor tables, the ADC path and the initial capture options.
// Failures unwind every partial allocation; no degraded device is ever
// returned.
func Attach(name string, ops mmio.Ops, alloc dma.Allocator, ringSize int) (*Device, error) {
	if ringSize == 0 {
		ringSize = dma.DefaultRingSize
	}
	pageCount := ringSize / dma.PageSize

	progBuf, err := alloc.AllocBuffer(risc.BufferSize(pageCount))
	if err != nil {
		return nil, err
	}
	log.Info("%s: RISC buffer size %dKiB", name, progBuf.Size()/1024)

	ring, err := dma.NewRing(alloc, ringSize)
	if err != nil {
		alloc.FreeBuffer(progBuf)
		return nil, err
	}
	log.Info("%s: DMA size %dMiB", name, ring.Size()/1024/1024)

	d := &Device{
		Name:    name,
		mmio:    ops,
		alloc:   alloc,
		ring:    ring,
		progBuf: progBuf,
		prog:    risc.NewProgram(progBuf),
		gain:    0,
		input:   DefaultInput,
		rate:    DefaultRate,
		format:  DefaultFormat,
	}

	d.prog.Generate(ring)
	log.Info("%s: RISC instructions using %dKiB of buffer", name, d.prog.Len()*4/1024)

	// Full reset before touching the SRAM tables. The atomic register
	// writes keep ordering here; nothing can be reordered past them.
	d.shutdown()

	d.sramSetup()
	d.adcSetup()
	d.rateSet()
	d.agcSetup()
	d.inputSet()

	d.mmio.Write32(MoVidIntMsk, InterruptMask)
	return d, nil
}

// Detach stops the engine and releases DMA memory, reversing Attach.
func (d *Device) Detach() {
	d.shutdown()
	d.ring.Free()
	d.alloc.FreeBuffer(d.progBuf)
	log.Info("%s: detached", d.Name)
}

// Open starts a capture session anchored at the current hardware
// position and unmasks the data-ready interrupt.
func (d *Device) Open(nonblock bool) *capture.Session {
	s := capture.NewSession(d.ring, d.Counter, nonblock, func() {
		d.mmio.Write32(MoPCIIntMsk, 0)
	})
	d.mmio.Write32(MoPCIIntMsk, 1)
	return s
}

// Counter reads the hardware write-position counter.
func (d *Device) Counter() uint32 {
	return d.mmio.Read32(MoVBIGPCnt)
}

// Ring exposes the capture ring geometry.
func (d *Device) Ring() *dma.Ring {
	return d.ring
}

// ReadReg and WriteReg give the control plane raw register access.
func (d *Device) ReadReg(off uint32) uint32 {
	return d.mmio.Read32(off)
}

func (d *Device) WriteReg(off, val uint32) {
	d.mmio.Write32(off, val)
}

// shutdown disables the RISC controller, DMA, interrupts and capture,
// then acknowledges any stale interrupt status.
func (d *Device) shutdown() {
	d.mmio.Write32(MoDevCntrl2, 0)
	d.mmio.Write32(MoVidDMACntrl, 0)
	d.mmio.Write32(MoPCIIntMsk, 0)
	d.mmio.Write32(MoVidIntMsk, 0)
	d.mmio.Write32(MoCaptureCtrl, 0)
	d.mmio.Write32(MoVidIntStat, ^uint32(0))
}

// sramSetup writes the cluster descriptor table and the channel 24
// command block, then points the DMA engine at them.
func (d *Device) sramSetup() {
	buff := uint32(ClusterBufferBase)
	cdt := uint32(CDTBase)

	for i := uint32(0); i < ClusterBufNum; i++ {
		d.mmio.Write32(cdt+16*i, buff)
		buff += ClusterBufSize
	}

	d.mmio.Write32(Chn24CmdsBase+0, d.prog.BusAddr())
	d.mmio.Write32(Chn24CmdsBase+4, cdt)
	d.mmio.Write32(Chn24CmdsBase+8, ClusterBufNum*2)
	d.mmio.Write32(Chn24CmdsBase+12, RISCInstQueue)
	d.mmio.Write32(Chn24CmdsBase+16, 0x40)

	d.mmio.Write32(MoDMA24Ptr2, cdt)
	d.mmio.Write32(MoDMA24Cnt1, (ClusterBufSize>>3)-1)
	d.mmio.Write32(MoDMA24Cnt2, ClusterBufNum*2)
}

// adcSetup configures the digitizer output path, powers down the unused
// audio and chroma converters and starts the DMA engine.
func (d *Device) adcSetup() {
	d.mmio.Write32(MoVidIntStat, d.mmio.Read32(MoVidIntStat))

	d.mmio.Write32(MoOutputFormat, 0xf)
	d.mmio.Write32(MoContrBright, 0xff00)
	d.mmio.Write32(MoColorCtrl, (0xe<<4)|0xe)
	d.mmio.Write32(MoVBIPacket, (ClusterBufSize<<17)|(2<<11))

	// Power down audio and chroma DAC+ADC
	d.mmio.Write32(MoAFECfgIO, 0x12)

	// Start DMA
	d.mmio.Write32(MoDevCntrl2, 1<<5)
	d.mmio.Write32(MoVidDMACntrl, (1<<7)|(1<<3))
}

func (d *Device) agcSetup() {
	d.mmio.Write32(MoAGCBackVBI, (1<<25)|(0x100<<16)|0xfff)
	d.mmio.Write32(MoAGCSyncSlicer, 0x0)
	d.mmio.Write32(MoAGCSyncTip2, (0x20<<17)|0xf)
	d.mmio.Write32(MoAGCSyncTip3, (0x1e48<<16)|(0xff<<8)|0x8)
	d.mmio.Write32(MoAGCGainAdj2, (0x20<<17)|0xf)
	d.mmio.Write32(MoAGCGainAdj3, (0x28<<16)|(0x28<<8)|0x50)
	d.gainSet()
}

func (d *Device) gainSet() {
	d.mmio.Write32(MoAGCGainAdj4, (1<<23)|(d.gain<<16)|(0xff<<8))
}

func (d *Device) inputSet() {
	d.mmio.Write32(MoInputFormat, (1<<16)|(uint32(d.input)<<14)|(1<<13)|(1<<4)|0x1)
}

// rateSet programs the capture control, sample rate converter and PLL
// for the selected rate. Only the wall-clock pace of the counter
// changes; ring layout and RISC program are untouched.
func (d *Device) rateSet() {
	switch d.rate {
	/* 8-bit */
	case Rate4FSC8Bit: /* 14.318182 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(3<<1))
		d.mmio.Write32(MoSConvReg, (1<<17)*2)                // Freq / 2
		d.mmio.Write32(MoPLLReg, (1<<26)|(0x14<<20))         // Freq / 5 / 8 * 20
	case Rate8FSC8Bit: /* 28.636363 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(3<<1))
		d.mmio.Write32(MoSConvReg, 1<<17)                    // Freq
		d.mmio.Write32(MoPLLReg, 0x10<<20)                   // Freq / 2 / 8 * 16
	case Rate10FSC8Bit: /* 35.795454 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(3<<1))
		d.mmio.Write32(MoSConvReg, (1<<17)*4/5)              // Freq * 5 / 4
		d.mmio.Write32(MoPLLReg, 0x14<<20)                   // Freq / 2 / 8 * 20
	/* 16-bit */
	case Rate2FSC16Bit: /* 7.159091 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(1<<5)|(3<<1))
		d.mmio.Write32(MoSConvReg, (1<<17)*2)                // Freq / 2
		d.mmio.Write32(MoPLLReg, (1<<26)|(0x14<<20))         // Freq / 5 / 8 * 20
	case Rate4FSC16Bit: /* 14.318182 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(1<<5)|(3<<1))
		d.mmio.Write32(MoSConvReg, 1<<17)                    // Freq
		d.mmio.Write32(MoPLLReg, 0x10<<20)                   // Freq / 2 / 8 * 16
	case Rate5FSC16Bit: /* 17.897727 MHz */
		d.mmio.Write32(MoCaptureCtrl, (1<<6)|(1<<5)|(3<<1))
		d.mmio.Write32(MoSConvReg, (1<<17)*4/5)              // Freq * 5 / 4
		d.mmio.Write32(MoPLLReg, 0x14<<20)                   // Freq / 2 / 8 * 20
	}
}

// SetGain adjusts the AGC gain. Out of range values clamp silently.
func (d *Device) SetGain(gain uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gain > GainMax {
		gain = GainMax
	}
	d.gain = gain
	d.gainSet()
}

func (d *Device) Gain() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gain
}

// SetInput selects the analog input mux. Unknown values coerce to the
// default input.
func (d *Device) SetInput(input Input) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if input > Vmux03 {
		input = DefaultInput
	}
	d.input = input
	d.inputSet()
}

func (d *Device) Input() Input {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// SetRate reprograms the PLL and sample rate converter. Unknown values
// coerce to the default rate. Safe during active capture.
func (d *Device) SetRate(rate Rate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rate > Rate5FSC16Bit {
		rate = DefaultRate
	}
	d.rate = rate
	d.rateSet()
}

func (d *Device) Rate() Rate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate
}

// SetFormat selects the sample encoding and returns the accepted value;
// unrecognized formats fall back to 8-bit. No register is involved, the
// encoding only tells consumers how to pair bytes.
func (d *Device) SetFormat(format Format) Format {
	d.mu.Lock()
	defer d.mu.Unlock()
	if format != FormatCU8 && format != FormatCU16LE {
		format = DefaultFormat
	}
	d.format = format
	return format
}

func (d *Device) Format() Format {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// Status is the control plane view of a device.
type Status struct {
	Name       string `json:"name"`
	Gain       uint32 `json:"gain"`
	Input      uint32 `json:"input"`
	Rate       uint32 `json:"rate"`
	RateLabel  string `json:"rateLabel"`
	Format     string `json:"format"`
	SampleSize int    `json:"sampleSize"`
	PageCount  int    `json:"pageCount"`
	RingSize   int    `json:"ringSize"`
	Counter    uint32 `json:"counter"`
}

func (d *Device) Status() *Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &Status{
		Name:       d.Name,
		Gain:       d.gain,
		Input:      uint32(d.input),
		Rate:       uint32(d.rate),
		RateLabel:  d.rate.String(),
		Format:     string(d.format),
		SampleSize: d.format.SampleSize(),
		PageCount:  d.ring.PageCount(),
		RingSize:   d.ring.Size(),
		Counter:    d.Counter(),
	}
}
