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
)

const (
	DeviceOptionName = "device"
)

// NewCommand groups the control plane client commands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctrl",
		Short: "Control a running cx88sdr server",
	}
	cmd.AddCommand(NewGainCommand())
	cmd.AddCommand(NewInputCommand())
	cmd.AddCommand(NewRateCommand())
	cmd.AddCommand(NewFormatCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewRegCommand())
	return cmd
}
