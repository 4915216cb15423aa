package exampledevice

import (
	"testing"

	"iotscp/internal/domain/service"
)

func TestNewBuildsMotionSensorDevice(t *testing.T) {
	dev, poll := New()
	if dev.Name() != "PiMotion" || dev.DeviceType() != "Motion_Sensor" {
		t.Fatalf("unexpected device identity: %s / %s", dev.Name(), dev.DeviceType())
	}
	if poll == nil {
		t.Fatal("expected a non-nil poll function")
	}

	svc, err := dev.ServiceByControlURL("/control/Sensor/")
	if err != nil {
		t.Fatalf("unexpected error resolving Sensor's control url: %v", err)
	}
	method, ok := svc.Methods["GetBinaryState"]
	if !ok {
		t.Fatal("expected a GetBinaryState method")
	}

	out, err := method.Invoke(dev, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, ok := out["BinaryState"].(bool); !ok {
		t.Fatalf("expected BinaryState to be a bool, got %v", out["BinaryState"])
	}
}

func TestGetBinaryStateReflectsCurrentState(t *testing.T) {
	st := &state{binary: true}
	thunk := getBinaryState(st)
	out, err := thunk(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["BinaryState"] != true {
		t.Fatalf("expected BinaryState=true, got %v", out["BinaryState"])
	}

	st.binary = false
	out, err = thunk(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["BinaryState"] != false {
		t.Fatalf("expected BinaryState=false, got %v", out["BinaryState"])
	}
}

var _ service.Thunk = getBinaryState(&state{})
