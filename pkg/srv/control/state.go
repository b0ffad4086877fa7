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
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/HorstBoy/cx88-sdr/pkg/config"
	"github.com/HorstBoy/cx88-sdr/pkg/device"
	"github.com/HorstBoy/cx88-sdr/pkg/log"
)

const (
	BucketNamePrefix = "settings_"

	KeyGain   = "gain"
	KeyInput  = "input"
	KeyRate   = "rate"
	KeyFormat = "format"
)

// State persists capture settings per device so they survive a detach
// and are re-applied on the next attach.
type State struct {
	context.Context
	DB *bbolt.DB
}

func NewState(ctx context.Context, cfg *config.Config) (*State, error) {
	db, err := bbolt.Open(cfg.DBPath, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, dev := range cfg.Devices {
			_, err = tx.CreateBucketIfNotExists([]byte(bucketName(dev.Name)))
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &State{
		Context: ctx,
		DB:      db,
	}, nil
}

func uint32ToByte(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func bucketName(deviceName string) string {
	return fmt.Sprintf("%s%s", BucketNamePrefix, deviceName)
}

func (s *State) Close() {
	s.DB.Close()
}

func (s *State) put(deviceName, key string, value []byte) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		return b.Put([]byte(key), value)
	})
}

func (s *State) get(deviceName, key string) ([]byte, error) {
	var value []byte
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		stored := b.Get([]byte(key))
		if stored != nil {
			value = append([]byte{}, stored...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

// SetGain ...
func (s *State) SetGain(deviceName string, gain uint32) error {
	log.Debug("Persisting gain: device: %s value: %d", deviceName, gain)
	return s.put(deviceName, KeyGain, uint32ToByte(gain))
}

// SetInput ...
func (s *State) SetInput(deviceName string, input uint32) error {
	log.Debug("Persisting input: device: %s value: %d", deviceName, input)
	return s.put(deviceName, KeyInput, uint32ToByte(input))
}

// SetRate ...
func (s *State) SetRate(deviceName string, rate uint32) error {
	log.Debug("Persisting rate: device: %s value: %d", deviceName, rate)
	return s.put(deviceName, KeyRate, uint32ToByte(rate))
}

// SetFormat ...
func (s *State) SetFormat(deviceName, format string) error {
	log.Debug("Persisting format: device: %s value: %s", deviceName, format)
	return s.put(deviceName, KeyFormat, []byte(format))
}

// Restore applies every persisted setting to a freshly attached device.
// Missing keys leave the device defaults in place.
func (s *State) Restore(d *device.Device) error {
	if value, err := s.get(d.Name, KeyGain); err != nil {
		return err
	} else if value != nil {
		d.SetGain(binary.BigEndian.Uint32(value))
	}
	if value, err := s.get(d.Name, KeyInput); err != nil {
		return err
	} else if value != nil {
		d.SetInput(device.Input(binary.BigEndian.Uint32(value)))
	}
	if value, err := s.get(d.Name, KeyRate); err != nil {
		return err
	} else if value != nil {
		d.SetRate(device.Rate(binary.BigEndian.Uint32(value)))
	}
	if value, err := s.get(d.Name, KeyFormat); err != nil {
		return err
	} else if value != nil {
		d.SetFormat(device.Format(value))
	}
	return nil
}
