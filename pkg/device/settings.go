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

// Input selects one of the four analog video muxes.
type Input uint32

const (
	Vmux00 Input = iota
	Vmux01
	Vmux02
	Vmux03

	DefaultInput = Vmux01
)

// Rate selects the ADC sample rate and with it the sample width. The
// names follow multiples of the NTSC color subcarrier frequency.
type Rate uint32

const (
	Rate4FSC8Bit  Rate = iota // 14.318182 MHz, 8-bit
	Rate8FSC8Bit              // 28.636363 MHz, 8-bit
	Rate10FSC8Bit             // 35.795454 MHz, 8-bit
	Rate2FSC16Bit             //  7.159091 MHz, 16-bit
	Rate4FSC16Bit             // 14.318182 MHz, 16-bit
	Rate5FSC16Bit             // 17.897727 MHz, 16-bit

	DefaultRate = Rate8FSC8Bit
)

var rateNames = map[Rate]string{
	Rate4FSC8Bit:  "14.318182 MHz, 8-bit",
	Rate8FSC8Bit:  "28.636363 MHz, 8-bit",
	Rate10FSC8Bit: "35.795454 MHz, 8-bit",
	Rate2FSC16Bit: "7.159091 MHz, 16-bit",
	Rate4FSC16Bit: "14.318182 MHz, 16-bit",
	Rate5FSC16Bit: "17.897727 MHz, 16-bit",
}

func (r Rate) String() string {
	if name, ok := rateNames[r]; ok {
		return name
	}
	return "unknown"
}

// GainMax bounds the AGC gain adjustment value.
const GainMax = 31

// Format is the sample encoding of the delivered byte stream. It only
// tells the consumer how to interpret the bytes; the ring layout never
// changes.
type Format string

const (
	FormatCU8    Format = "CU8"    // unsigned 8-bit samples
	FormatCU16LE Format = "CU16LE" // unsigned 16-bit little-endian samples

	DefaultFormat = FormatCU8
)

// SampleSize is the number of bytes per sample, 1 for unrecognized
// formats which coerce to CU8.
func (f Format) SampleSize() int {
	if f == FormatCU16LE {
		return 2
	}
	return 1
}
