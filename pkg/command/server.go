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

package command

import (
	"context"

	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/device"
	"github.com/HorstBoy/cx88-sdr/pkg/dma"
	"github.com/HorstBoy/cx88-sdr/pkg/log"
	"github.com/HorstBoy/cx88-sdr/pkg/mmio"
	"github.com/HorstBoy/cx88-sdr/pkg/srv/control"
)

// AttachDevice brings up one configured card over its PCI resource file.
func AttachDevice(devCfg *config.Device, pciLatency int) (*device.Device, error) {
	if err := setPCILatency(devCfg.Resource, pciLatency); err != nil {
		log.Error("Can not set PCI latency for device: %s", devCfg.Name)
		return nil, err
	}
	ops, err := mmio.NewMap(devCfg.Resource)
	if err != nil {
		log.Error("Can not map device resource: %s", devCfg.Resource)
		return nil, err
	}
	d, err := device.Attach(devCfg.Name, ops, dma.NewHeapAllocator(), devCfg.RingSize)
	if err != nil {
		ops.Close()
		return nil, err
	}
	return d, nil
}

// StartServer attaches every configured device, restores persisted
// settings and runs the control API. Devices that fail to attach abort
// the start; already attached ones are detached again in reverse order.
func StartServer(cfg *config.Config) error {
	registry := device.NewRegistry()
	var attached []*device.Device

	detachAll := func() {
		for i := len(attached) - 1; i >= 0; i-- {
			registry.Remove(attached[i].Name)
			attached[i].Detach()
		}
	}

	for _, devCfg := range cfg.Devices {
		d, err := AttachDevice(devCfg, cfg.PCILatency)
		if err != nil {
			detachAll()
			return err
		}
		if err := registry.Add(d); err != nil {
			d.Detach()
			detachAll()
			return err
		}
		attached = append(attached, d)
	}

	apiServer, err := control.NewApiServer(context.Background(), cfg, registry)
	if err != nil {
		detachAll()
		return err
	}
	defer apiServer.Close()

	if err := apiServer.RestoreSettings(); err != nil {
		detachAll()
		return err
	}

	err = apiServer.Run()
	detachAll()
	return err
}
