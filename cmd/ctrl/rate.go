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

package ctrl

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HorstBoy/cx88-sdr/pkg/command"
	"github.com/HorstBoy/cx88-sdr/pkg/config"
)

const rateHelp = `Sample rates:
  0: 14.318182 MHz, 8-bit
  1: 28.636363 MHz, 8-bit
  2: 35.795454 MHz, 8-bit
  3:  7.159091 MHz, 16-bit
  4: 14.318182 MHz, 16-bit
  5: 17.897727 MHz, 16-bit`

func NewRateCommand() *cobra.Command {
	var device string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "rate [value]",
		Short: "Select sample rate, 0..5",
		Long:  rateHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return err
			}
			accepted, err := command.NewApiClient(cfg).SetRate(device, uint32(rate))
			if err != nil {
				return err
			}
			cmd.Printf("rate: %d\n", accepted)
			return nil
		},
	}
	cmd.Flags().StringVar(&device, DeviceOptionName, config.DefaultDeviceName, "Device name")

	return cmd
}
