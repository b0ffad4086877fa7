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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemReadWrite(t *testing.T) {
	m := NewMem()

	assert.Zero(t, m.Read32(0x200034))
	m.Write32(0x200034, 1<<5)
	assert.Equal(t, uint32(1<<5), m.Read32(0x200034))
}

func TestMemConcurrent(t *testing.T) {
	m := NewMem()

	// A producer goroutine bumping a counter register while a consumer
	// polls it, the way a capture session watches the hardware.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint32(1); i <= 1000; i++ {
			m.Write32(0x31c02c, i)
		}
	}()
	go func() {
		defer wg.Done()
		for m.Read32(0x31c02c) != 1000 {
		}
	}()
	wg.Wait()
	assert.Equal(t, uint32(1000), m.Read32(0x31c02c))
}
