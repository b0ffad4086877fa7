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
	"os"
	"path/filepath"

	"github.com/HorstBoy/cx88-sdr/pkg/log"
)

const (
	pciLatencyMin = 32
	pciLatencyMax = 248

	// PCI config space latency timer register.
	pciLatencyTimer = 0x0d
)

// setPCILatency programs the latency timer byte in the device's PCI
// config space, reached through the sysfs config file next to the BAR
// resource file. The value clamps to [32, 248] like the original module
// parameter.
func setPCILatency(resource string, latency int) error {
	if latency < pciLatencyMin {
		latency = pciLatencyMin
	}
	if latency > pciLatencyMax {
		latency = pciLatencyMax
	}

	confPath := filepath.Join(filepath.Dir(resource), "config")
	file, err := os.OpenFile(confPath, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteAt([]byte{byte(latency)}, pciLatencyTimer); err != nil {
		return err
	}

	readback := make([]byte, 1)
	if _, err := file.ReadAt(readback, pciLatencyTimer); err != nil {
		return err
	}
	log.Info("PCI latency: %d", readback[0])
	return nil
}
