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

// Package mmio provides 32-bit access to the memory mapped register file
// of a CX2388x card. The hardware path maps the PCI BAR0 resource file;
// a RAM backed implementation is provided for tests and dry runs.
package mmio

// Ops is the register access interface the rest of the driver depends on.
// Offsets are byte offsets into BAR0 and must be 32-bit aligned.
type Ops interface {
	Read32(off uint32) uint32
	Write32(off uint32, val uint32)
}
