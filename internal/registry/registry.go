// Package registry holds the ordered device list and the current selection.
// It has no locking: only the orchestrator's owner goroutine touches it.
package registry

import (
	"errors"
	"fmt"

	"droidlink/internal/device"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type Registry struct {
	devices  []device.Device
	selected int
}

func New() *Registry {
	return &Registry{selected: -1}
}

// Replace swaps the whole list. Selection is 0 for a non-empty list and -1
// for an empty one.
func (r *Registry) Replace(devices []device.Device) {
	r.devices = append(r.devices[:0], devices...)
	if len(r.devices) == 0 {
		r.selected = -1
		return
	}
	r.selected = 0
}

func (r *Registry) Select(index int) error {
	if index < 0 || index >= len(r.devices) {
		return fmt.Errorf("%w: %d (have %d devices)", ErrIndexOutOfRange, index, len(r.devices))
	}
	r.selected = index
	return nil
}

// SelectID moves the selection to the device with the given identifier.
func (r *Registry) SelectID(id string) error {
	for i, d := range r.devices {
		if d.ID == id {
			r.selected = i
			return nil
		}
	}
	return fmt.Errorf("%w: device %s not listed", ErrIndexOutOfRange, id)
}

func (r *Registry) SelectedIndex() int {
	return r.selected
}

func (r *Registry) Selected() (device.Device, bool) {
	if r.selected < 0 || r.selected >= len(r.devices) {
		return device.Device{}, false
	}
	return r.devices[r.selected], true
}

func (r *Registry) Devices() []device.Device {
	out := make([]device.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

func (r *Registry) IDs() []string {
	out := make([]string, len(r.devices))
	for i, d := range r.devices {
		out[i] = d.ID
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.devices)
}
