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

package control

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/device"
	"github.com/HorstBoy/cx88-sdr/pkg/dma"
	"github.com/HorstBoy/cx88-sdr/pkg/mmio"
)

func newState(t *testing.T) *State {
	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "state.db")
	s, err := NewState(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStatePersistsSettings(t *testing.T) {
	s := newState(t)
	name := config.DefaultDeviceName

	require.NoError(t, s.SetGain(name, 17))
	require.NoError(t, s.SetInput(name, uint32(device.Vmux02)))
	require.NoError(t, s.SetRate(name, uint32(device.Rate5FSC16Bit)))
	require.NoError(t, s.SetFormat(name, string(device.FormatCU16LE)))

	d, err := device.Attach(name, mmio.NewMem(), dma.NewHeapAllocator(), 8*dma.PageSize)
	require.NoError(t, err)

	require.NoError(t, s.Restore(d))
	assert.Equal(t, uint32(17), d.Gain())
	assert.Equal(t, device.Vmux02, d.Input())
	assert.Equal(t, device.Rate5FSC16Bit, d.Rate())
	assert.Equal(t, device.FormatCU16LE, d.Format())
}

func TestStateRestoreKeepsDefaults(t *testing.T) {
	s := newState(t)

	d, err := device.Attach(config.DefaultDeviceName, mmio.NewMem(),
		dma.NewHeapAllocator(), 8*dma.PageSize)
	require.NoError(t, err)

	// No persisted keys, the attach defaults stay.
	require.NoError(t, s.Restore(d))
	assert.Equal(t, uint32(0), d.Gain())
	assert.Equal(t, device.DefaultInput, d.Input())
	assert.Equal(t, device.DefaultRate, d.Rate())
	assert.Equal(t, device.DefaultFormat, d.Format())
}

func TestStateUnknownDevice(t *testing.T) {
	s := newState(t)
	err := s.SetGain("nosuch0", 1)
	assert.Error(t, err)
}
