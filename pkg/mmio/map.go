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

package mmio

import (
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"
)

// BAR0Size is the size of the CX2388x register aperture.
const BAR0Size = 0x400000

// Map is an Ops implementation over a mmap-ed PCI BAR resource file,
// e.g. /sys/bus/pci/devices/<addr>/resource0.
type Map struct {
	file *os.File
	mem  []byte
}

var _ Ops = &Map{}

func NewMap(resource string) (*Map, error) {
	file, err := os.OpenFile(resource, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	mem, err := syscall.Mmap(int(file.Fd()), 0, BAR0Size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Map{file: file, mem: mem}, nil
}

// Read32 and Write32 go through sync/atomic so every access is a single
// ordered 32-bit bus transaction, never torn or elided.

func (m *Map) Read32(off uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&m.mem[off])))
}

func (m *Map) Write32(off uint32, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&m.mem[off])), val)
}

func (m *Map) Close() error {
	if m.mem != nil {
		if err := syscall.Munmap(m.mem); err != nil {
			return err
		}
		m.mem = nil
	}
	return m.file.Close()
}
