package service

import (
	"errors"
	"testing"

	"iotscp/internal/domain/iotscperr"
)

type fakeDevice struct{}

func (fakeDevice) Name() string       { return "PiMotion" }
func (fakeDevice) DeviceType() string { return "Motion_Sensor" }
func (fakeDevice) Namespace() string  { return "iotscp" }
func (fakeDevice) MACAddress() string { return "01:23:45:AB:CD:EF" }
func (fakeDevice) URN() string        { return "urn:iotscp:device:motion_sensor:1" }

func TestMethodInvokeSuccess(t *testing.T) {
	m := Method{
		Name: "GetBinaryState",
		Returns: []Arg{
			{Name: "BinaryState", Type: TypeBool},
		},
		Thunk: func(_ Device, _ map[string]any) (map[string]any, error) {
			return map[string]any{"BinaryState": true}, nil
		},
	}
	out, err := m.Invoke(fakeDevice{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["BinaryState"] != true {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestMethodInvokeMissingArgument(t *testing.T) {
	m := Method{
		Name: "SetBinaryState",
		Args: []Arg{{Name: "BinaryState", Type: TypeBool}},
		Thunk: func(_ Device, args map[string]any) (map[string]any, error) {
			return nil, nil
		},
	}
	_, err := m.Invoke(fakeDevice{}, map[string]any{})
	if !errors.Is(err, iotscperr.ErrMissingArgument) {
		t.Fatalf("got %v, want ErrMissingArgument", err)
	}
}

func TestMethodInvokeArgumentTypeChecksValueNotName(t *testing.T) {
	var sawArgs map[string]any
	m := Method{
		Name: "SetBinaryState",
		Args: []Arg{{Name: "BinaryState", Type: TypeBool}},
		Thunk: func(_ Device, args map[string]any) (map[string]any, error) {
			sawArgs = args
			return map[string]any{}, nil
		},
	}
	// "BinaryState" the string would never satisfy TypeBool if validation
	// compared the argument name against the type; it must compare the
	// supplied value instead.
	_, err := m.Invoke(fakeDevice{}, map[string]any{"BinaryState": true})
	if err != nil {
		t.Fatalf("unexpected error for a valid bool value: %v", err)
	}
	if sawArgs["BinaryState"] != true {
		t.Fatalf("thunk did not receive the validated value")
	}

	_, err = m.Invoke(fakeDevice{}, map[string]any{"BinaryState": "true"})
	if !errors.Is(err, iotscperr.ErrArgumentType) {
		t.Fatalf("got %v, want ErrArgumentType for a non-bool value", err)
	}
}

func TestMethodInvokeMissingReturn(t *testing.T) {
	m := Method{
		Name:    "GetBinaryState",
		Returns: []Arg{{Name: "BinaryState", Type: TypeBool}},
		Thunk: func(_ Device, _ map[string]any) (map[string]any, error) {
			return map[string]any{}, nil
		},
	}
	_, err := m.Invoke(fakeDevice{}, nil)
	if !errors.Is(err, iotscperr.ErrMissingReturn) {
		t.Fatalf("got %v, want ErrMissingReturn", err)
	}
}

func TestMethodInvokeReturnTypeMismatch(t *testing.T) {
	m := Method{
		Name:    "GetBinaryState",
		Returns: []Arg{{Name: "BinaryState", Type: TypeBool}},
		Thunk: func(_ Device, _ map[string]any) (map[string]any, error) {
			return map[string]any{"BinaryState": "not a bool"}, nil
		},
	}
	_, err := m.Invoke(fakeDevice{}, nil)
	if !errors.Is(err, iotscperr.ErrReturnType) {
		t.Fatalf("got %v, want ErrReturnType", err)
	}
}

func TestMethodInvokePropagatesThunkError(t *testing.T) {
	wantErr := errors.New("boom")
	m := Method{
		Name: "GetBinaryState",
		Thunk: func(_ Device, _ map[string]any) (map[string]any, error) {
			return nil, wantErr
		},
	}
	_, err := m.Invoke(fakeDevice{}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestMethodValuesDict(t *testing.T) {
	m := Method{
		Name:    "GetBinaryState",
		Args:    []Arg{{Name: "x", Type: TypeInt}},
		Returns: []Arg{{Name: "BinaryState", Type: TypeBool}},
		Doc:     "Get the binary state",
	}
	vd := m.ValuesDict()
	if vd["name"] != "GetBinaryState" {
		t.Errorf("unexpected name: %v", vd["name"])
	}
	args, ok := vd["args"].([]string)
	if !ok || len(args) != 1 || args[0] != "x: int" {
		t.Errorf("unexpected args: %v", vd["args"])
	}
	returns, ok := vd["returns"].([]string)
	if !ok || len(returns) != 1 || returns[0] != "BinaryState: bool" {
		t.Errorf("unexpected returns: %v", vd["returns"])
	}
}
