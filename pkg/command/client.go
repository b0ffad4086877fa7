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
	"errors"
	"fmt"

	"github.com/imroc/req"
	"sigs.k8s.io/yaml"

	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/srv/control"
)

// ApiClient drives the control plane of a running cx88sdr server.
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.APIAddress, cfg.APIPort),
	}
}

func (c *ApiClient) statusUrl(device string) string {
	return fmt.Sprintf("%s/status/%s", c.ApiPrefix, device)
}

func (c *ApiClient) setupUrl(option, device string) string {
	return fmt.Sprintf("%s/%s/%s", c.ApiPrefix, option, device)
}

func (c *ApiClient) regReadUrl(device, addr string) string {
	return fmt.Sprintf("%s/reg/r/%s/%s", c.ApiPrefix, device, addr)
}

func (c *ApiClient) regWriteUrl(device string) string {
	return fmt.Sprintf("%s/reg/w/%s", c.ApiPrefix, device)
}

func (c *ApiClient) post(url string, body interface{}, result interface{}) error {
	r, err := req.Post(url, req.BodyJSON(body))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	if result != nil {
		return r.ToJSON(result)
	}
	return nil
}

// Status fetches the device status as YAML for display.
func (c *ApiClient) Status(device string) (string, error) {
	r, err := req.Get(c.statusUrl(device))
	if err != nil {
		return "", err
	}
	if r.Response().StatusCode != 200 {
		return "", errors.New(r.Response().Status)
	}
	data, err := r.ToBytes()
	if err != nil {
		return "", err
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// SetGain sends a gain request and returns the value the device accepted
func (c *ApiClient) SetGain(device string, gain uint32) (uint32, error) {
	setup := &control.GainSetup{Gain: gain}
	if err := c.post(c.setupUrl("gain", device), setup, setup); err != nil {
		return 0, err
	}
	return setup.Gain, nil
}

// SetInput sends an input mux selection request
func (c *ApiClient) SetInput(device string, input uint32) (uint32, error) {
	setup := &control.InputSetup{Input: input}
	if err := c.post(c.setupUrl("input", device), setup, setup); err != nil {
		return 0, err
	}
	return setup.Input, nil
}

// SetRate sends a sample rate selection request
func (c *ApiClient) SetRate(device string, rate uint32) (uint32, error) {
	setup := &control.RateSetup{Rate: rate}
	if err := c.post(c.setupUrl("rate", device), setup, setup); err != nil {
		return 0, err
	}
	return setup.Rate, nil
}

// SetFormat sends a sample encoding request and returns the accepted
// encoding, which is the 8-bit default if the requested one is unknown
func (c *ApiClient) SetFormat(device, format string) (string, error) {
	setup := &control.FormatSetup{Format: format}
	if err := c.post(c.setupUrl("format", device), setup, setup); err != nil {
		return "", err
	}
	return setup.Format, nil
}

// RegRead reads a raw device register
func (c *ApiClient) RegRead(device, addr string) (string, error) {
	r, err := req.Get(c.regReadUrl(device, addr))
	if err != nil {
		return "", err
	}
	if r.Response().StatusCode != 200 {
		return "", errors.New(r.Response().Status)
	}
	reg := &control.RegHex{}
	if err = r.ToJSON(reg); err != nil {
		return "", err
	}
	return reg.Value, nil
}

// RegWrite writes a raw device register
func (c *ApiClient) RegWrite(device, addr, value string) error {
	reg := &control.RegHex{
		Addr:  addr,
		Value: value,
	}
	return c.post(c.regWriteUrl(device), reg, nil)
}
