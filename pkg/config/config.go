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

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Device describes one CX2388x card: a human readable name, the path of
// the mmap-able PCI BAR0 resource file and the DMA ring size in bytes.
type Device struct {
	Name     string `json:"name"`
	Resource string `json:"resource"`
	RingSize int    `json:"ringSize,omitempty"`
}

type Config struct {
	Devices    []*Device `json:"devices"`
	APIAddress string    `json:"apiAddress,omitempty"`
	APIPort    int       `json:"apiPort,omitempty"`
	DBPath     string    `json:"dbPath,omitempty"`
	LogLevel   string    `json:"logLevel,omitempty"`
	PCILatency int       `json:"pciLatency,omitempty"`
	filepath   string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = os.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

// Load reads the config file if it exists, leaving the defaults in place
// otherwise.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// GetDevice returns the config entry for the named device.
func (c *Config) GetDevice(name string) (*Device, error) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrDeviceNotConfigured{Name: name}
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		Devices: []*Device{
			{
				Name:     DefaultDeviceName,
				Resource: DefaultDeviceResource,
				RingSize: DefaultRingSize,
			},
		},
		APIAddress: DefaultAPIAddress,
		APIPort:    DefaultAPIPort,
		DBPath:     defaultDBPath(),
		LogLevel:   DefaultLogLevel,
		PCILatency: DefaultPCILatency,
		filepath:   DefaultConfigPath(),
	}
}
