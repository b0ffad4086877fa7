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
	"sync"
)

// Mem is a RAM backed Ops implementation. Tests use it as the register
// file of a simulated card: a producer goroutine advancing the hardware
// counter is just a Write32 from another goroutine.
type Mem struct {
	mu   sync.RWMutex
	regs map[uint32]uint32
}

var _ Ops = &Mem{}

func NewMem() *Mem {
	return &Mem{regs: make(map[uint32]uint32)}
}

func (m *Mem) Read32(off uint32) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regs[off]
}

func (m *Mem) Write32(off uint32, val uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[off] = val
}
