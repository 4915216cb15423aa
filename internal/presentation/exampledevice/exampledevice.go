// Package exampledevice builds the motion-sensor device the runtime
// serves out of the box: a single service with one polled state method
// and one event a caller can subscribe to.
package exampledevice

import (
	"context"
	"math/rand"
	"time"

	"iotscp/internal/domain/device"
	"iotscp/internal/domain/service"
)

// state is the toggled bit the example service both reports and emits
// BinaryState events for.
type state struct {
	binary bool
}

func getBinaryState(s *state) service.Thunk {
	return func(_ service.Device, _ map[string]any) (map[string]any, error) {
		return map[string]any{"BinaryState": s.binary}, nil
	}
}

// New builds the example device and a Poll function the caller starts in
// its own goroutine to drive the sensor's simulated state changes.
func New() (*device.Device, func(ctx context.Context)) {
	st := &state{}

	sensor := service.New("Sensor",
		[]service.Method{{
			Name:    "GetBinaryState",
			Returns: []service.Arg{{Name: "BinaryState", Type: service.TypeBool}},
			Thunk:   getBinaryState(st),
			Doc:     "Get the `BinaryState` of the motion sensor",
		}},
		[]service.Event{{
			Name:  "BinaryState",
			Sends: []service.Arg{{Name: "BinaryState", Type: service.TypeBool}},
			Doc:   "Get `BinaryState` notifications when the motion sensor detects motion",
		}},
	)

	dev := device.New(device.Config{
		Name:       "PiMotion",
		DeviceType: "Motion_Sensor",
		Namespace:  "iotscp",
		MACAddress: "01:23:45:AB:CD:EF",
		PrefAlg:    "sha256",
		Services:   []*service.Service{sensor},
	})

	poll := func(ctx context.Context) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if roll := rand.Intn(100); roll > 0 && roll < 30 {
					st.binary = !st.binary
					_ = sensor.SendEvent("BinaryState", map[string]any{"BinaryState": st.binary})
				}
			}
		}
	}

	return dev, poll
}
