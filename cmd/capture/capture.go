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

package capture

import (
	"github.com/spf13/cobra"

	pkgcapture "github.com/HorstBoy/cx88-sdr/pkg/capture"
	"github.com/HorstBoy/cx88-sdr/pkg/command"
	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/log"
)

const (
	DeviceOptionName   = "device"
	OutputOptionName   = "output"
	CountOptionName    = "count"
	NonBlockOptionName = "nonblock"

	chunkSize = 1024 * 1024
)

// NewCommand creates the command that attaches one device and dumps raw
// samples to a file.
func NewCommand() *cobra.Command {
	var deviceName, output string
	var count int64
	var nonblock bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture raw samples from a device to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			devCfg, err := cfg.GetDevice(deviceName)
			if err != nil {
				return err
			}

			d, err := command.AttachDevice(devCfg, cfg.PCILatency)
			if err != nil {
				return err
			}
			defer d.Detach()

			writer, err := pkgcapture.NewWriter(output)
			if err != nil {
				return err
			}
			defer writer.Flush()

			session := d.Open(nonblock)
			defer session.Close()

			total := int64(0)
			for total < count {
				chunk := count - total
				if chunk > chunkSize {
					chunk = chunkSize
				}
				n, err := session.Consume(int(chunk), func(src []byte) error {
					_, werr := writer.Write(src)
					return werr
				})
				total += int64(n)
				if err != nil {
					return err
				}
				if nonblock && n == 0 {
					break
				}
			}
			log.Info("%s: captured %d bytes to %s", deviceName, total, output)
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceName, DeviceOptionName, config.DefaultDeviceName, "Device name from the config file")
	cmd.Flags().StringVar(&output, OutputOptionName, "samples.raw", "Output file")
	cmd.Flags().Int64Var(&count, CountOptionName, 16*1024*1024, "Number of bytes to capture")
	cmd.Flags().BoolVar(&nonblock, NonBlockOptionName, false, "Return immediately when no data is ready")

	return cmd
}
