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

// cx88sdr API
//
// # RESTful APIs to interact with the cx88sdr server
//
// Schemes: http
// Host: localhost:8000
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/device"
	"github.com/HorstBoy/cx88-sdr/pkg/log"
)

// RegHex ...
type RegHex struct {
	Addr  string // hexadecimal
	Value string // hexadecimal
}

type GainSetup struct {
	Gain uint32 `json:"gain"`
}

type InputSetup struct {
	Input uint32 `json:"input"`
}

type RateSetup struct {
	Rate uint32 `json:"rate"`
}

type FormatSetup struct {
	Format string `json:"format"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	registry *device.Registry
	state    *State
}

func NewApiServer(ctx context.Context, cfg *config.Config, registry *device.Registry) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.APIAddress, cfg.APIPort)

	state, err := NewState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &ApiServer{
		Context:  ctx,
		Config:   cfg,
		registry: registry,
		state:    state,
	}
	return s, nil
}

// RestoreSettings re-applies persisted capture settings to every
// attached device.
func (s *ApiServer) RestoreSettings() error {
	for _, d := range s.registry.All() {
		if err := s.state.Restore(d); err != nil {
			return err
		}
	}
	return nil
}

func (s *ApiServer) Close() {
	s.state.Close()
}

// Run starts the API server.
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.APIAddress, s.Config.APIPort)
	s.configureRouter()
	httpServer := &http.Server{
		Handler: handlers.LoggingHandler(os.Stderr, s.Router),
		Addr:    fmt.Sprintf("%s:%d", s.Config.APIAddress, s.Config.APIPort),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /devices list devices
	// ---
	// summary: list attached devices
	subRouter.HandleFunc("/devices", s.handleDevices()).Methods("GET")
	// swagger:operation GET /status/device device status
	// ---
	// summary: capture settings and ring geometry of a device
	subRouter.HandleFunc("/status/{device}", s.handleStatus()).Methods("GET")
	// swagger:operation POST /gain/device set gain
	// ---
	// summary: set AGC gain, clamped to 0..31
	subRouter.HandleFunc("/gain/{device}", s.handleGain()).Methods("POST")
	// swagger:operation POST /input/device set input
	// ---
	// summary: select analog input mux 0..3
	subRouter.HandleFunc("/input/{device}", s.handleInput()).Methods("POST")
	// swagger:operation POST /rate/device set sample rate
	// ---
	// summary: select sample rate 0..5
	subRouter.HandleFunc("/rate/{device}", s.handleRate()).Methods("POST")
	// swagger:operation POST /format/device set sample format
	// ---
	// summary: select sample encoding, CU8 or CU16LE
	subRouter.HandleFunc("/format/{device}", s.handleFormat()).Methods("POST")
	// swagger:operation GET /reg/r/device/addr read register
	// ---
	// summary: raw 32-bit register read
	subRouter.HandleFunc("/reg/r/{device}/{addr:0x[0-9abcdef]+}", s.handleRegRead()).Methods("GET")
	// swagger:operation POST /reg/w/device write register
	// ---
	// summary: raw 32-bit register write
	subRouter.HandleFunc("/reg/w/{device}", s.handleRegWrite()).Methods("POST")
}

func (s *ApiServer) handleDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := []string{}
		for _, d := range s.registry.All() {
			names = append(names, d.Name)
		}
		json.NewEncoder(w).Encode(names)
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling status request: device: %s", vars["device"])

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(d.Status())
	}
}

func (s *ApiServer) handleGain() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &GainSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling gain request: device: %s gain: %d", vars["device"], setup.Gain)

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		d.SetGain(setup.Gain)
		if err := s.state.SetGain(d.Name, d.Gain()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&GainSetup{Gain: d.Gain()})
	}
}

func (s *ApiServer) handleInput() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &InputSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling input request: device: %s input: %d", vars["device"], setup.Input)

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		d.SetInput(device.Input(setup.Input))
		if err := s.state.SetInput(d.Name, uint32(d.Input())); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&InputSetup{Input: uint32(d.Input())})
	}
}

func (s *ApiServer) handleRate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &RateSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling rate request: device: %s rate: %d", vars["device"], setup.Rate)

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		d.SetRate(device.Rate(setup.Rate))
		if err := s.state.SetRate(d.Name, uint32(d.Rate())); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&RateSetup{Rate: uint32(d.Rate())})
	}
}

func (s *ApiServer) handleFormat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &FormatSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling format request: device: %s format: %s", vars["device"], setup.Format)

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		accepted := d.SetFormat(device.Format(setup.Format))
		if err := s.state.SetFormat(d.Name, string(accepted)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&FormatSetup{Format: string(accepted)})
	}
}

func (s *ApiServer) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		log.Debug("Handling reg read request: device: %s, addr: %s", vars["device"], vars["addr"])

		addr, err := strconv.ParseUint(vars["addr"], 0, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(&RegHex{
			Addr:  fmt.Sprintf("0x%06x", addr),
			Value: fmt.Sprintf("0x%08x", d.ReadReg(uint32(addr))),
		})
	}
}

func (s *ApiServer) handleRegWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		regHex := &RegHex{}
		if err := json.NewDecoder(r.Body).Decode(regHex); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling reg write request: device: %s addr: %s value: %s",
			vars["device"], regHex.Addr, regHex.Value)

		addr, err := strconv.ParseUint(regHex.Addr, 0, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		value, err := strconv.ParseUint(regHex.Value, 0, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d, err := s.registry.Get(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		d.WriteReg(uint32(addr), uint32(value))
	}
}
