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

// CX2388x BAR0 register offsets and SRAM layout for DMA channel 24, the
// VBI channel this driver captures on.
const (
	MoDevCntrl2     = 0x200034 // Device control
	MoPCIIntMsk     = 0x200040 // PCI interrupt mask
	MoVidIntMsk     = 0x200050 // Video interrupt mask
	MoVidIntStat    = 0x200054 // Video interrupt status
	MoDMA24Ptr2     = 0x3000cc // DMA Tab Ptr : Ch#24
	MoDMA24Cnt1     = 0x30010c // DMA Buffer Size : Ch#24
	MoDMA24Cnt2     = 0x30014c // DMA Table Size : Ch#24
	MoVBIGPCnt      = 0x31c02c // VBI general purpose counter, read only
	MoVidDMACntrl   = 0x31c040 // Video DMA control
	MoInputFormat   = 0x310104
	MoContrBright   = 0x310110
	MoOutputFormat  = 0x310164
	MoPLLReg        = 0x310168 // PLL register
	MoSConvReg      = 0x310170 // Sample rate conversion register
	MoCaptureCtrl   = 0x310180 // Capture control
	MoColorCtrl     = 0x310184
	MoVBIPacket     = 0x310188 // VBI packet size / delay
	MoAGCBackVBI    = 0x310200
	MoAGCSyncSlicer = 0x310204
	MoAGCSyncTip2   = 0x31020c
	MoAGCSyncTip3   = 0x310210
	MoAGCGainAdj2   = 0x310218
	MoAGCGainAdj3   = 0x31021c
	MoAGCGainAdj4   = 0x310220
	MoAFECfgIO      = 0x35c04c

	SRAMBase          = 0x180000
	Chn24CmdsBase     = 0x180100
	RISCInstQueue     = SRAMBase + 0x0800
	CDTBase           = SRAMBase + 0x1000
	RISCBufferBase    = SRAMBase + 0x2000
	ClusterBufferBase = SRAMBase + 0x4000

	// InterruptMask enables the channel 24 risc/sync/overflow sources.
	InterruptMask = 0x018888

	// On-chip cluster FIFO geometry programmed into the CDT.
	ClusterBufNum  = 8
	ClusterBufSize = 2048
)
