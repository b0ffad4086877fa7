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
	"github.com/spf13/cobra"

	"github.com/HorstBoy/cx88-sdr/pkg/command"
	"github.com/HorstBoy/cx88-sdr/pkg/config"
)

func NewFormatCommand() *cobra.Command {
	var device string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "format [CU8|CU16LE]",
		Short: "Select sample encoding; unknown values fall back to CU8",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accepted, err := command.NewApiClient(cfg).SetFormat(device, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("format: %s\n", accepted)
			return nil
		},
	}
	cmd.Flags().StringVar(&device, DeviceOptionName, config.DefaultDeviceName, "Device name")

	return cmd
}
