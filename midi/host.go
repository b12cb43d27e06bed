package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

var (
	// ErrCapabilityUnavailable means the host has no usable MIDI driver
	ErrCapabilityUnavailable = errors.New("midi: not supported on this host")
	// ErrPermissionDenied means the driver refused to enumerate inputs
	ErrPermissionDenied = errors.New("midi: access to inputs denied")
	// ErrNoSuchPort is returned when subscribing to an input that is gone
	ErrNoSuchPort = errors.New("midi: no such input")
)

// Port describes one MIDI input
type Port struct {
	ID           string
	Name         string
	Manufacturer string
}

// Label is the name shown in the device picker
func (p Port) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Manufacturer != "":
		return p.Manufacturer
	default:
		return p.ID
	}
}

// Host is the MIDI capability of the environment
type Host interface {
	// Inputs enumerates the available input ports
	Inputs() ([]Port, error)
	// Listen subscribes to one input; stop unsubscribes it
	Listen(id string, onMsg func(msg []byte, timestampms int32)) (stop func(), err error)
}

// DriverHost is a Host backed by the registered gomidi driver (rtmidi)
type DriverHost struct {
	drv drivers.Driver
}

// NewDriverHost returns ErrCapabilityUnavailable when no driver is registered
func NewDriverHost() (*DriverHost, error) {
	drv := drivers.Get()
	if drv == nil {
		return nil, ErrCapabilityUnavailable
	}
	return &DriverHost{drv: drv}, nil
}

func (h *DriverHost) Inputs() ([]Port, error) {
	ins, err := h.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	ports := make([]Port, 0, len(ins))
	for _, in := range ins {
		// rtmidi only exposes a display name, which is also stable enough to be the id
		ports = append(ports, Port{ID: in.String(), Name: in.String()})
	}
	return ports, nil
}

func (h *DriverHost) Listen(id string, onMsg func(msg []byte, timestampms int32)) (func(), error) {
	ins, err := h.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	var inPort drivers.In
	for _, in := range ins {
		if in.String() == id {
			inPort = in
			break
		}
	}
	if inPort == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPort, id)
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		onMsg(msg, timestampms)
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	return stop, nil
}

// Close shuts the driver down
func (h *DriverHost) Close() error {
	return h.drv.Close()
}
