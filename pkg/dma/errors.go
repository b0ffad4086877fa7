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

package dma

import (
	"fmt"
)

// ErrBadRingSize returned when the configured ring size is not a positive
// multiple of the page size
type ErrBadRingSize struct {
	Size int
}

func (e ErrBadRingSize) Error() string {
	return fmt.Sprintf("Ring size must be a positive multiple of %d, got %d", PageSize, e.Size)
}

// ErrBadBufferSize returned for zero, negative or unaligned buffer sizes
type ErrBadBufferSize struct {
	Size int
}

func (e ErrBadBufferSize) Error() string {
	return fmt.Sprintf("Buffer size must be a positive multiple of 4, got %d", e.Size)
}
