package service

import "iotscp/internal/domain/iotscperr"

// Device is the minimal projection of the device registry a method thunk
// needs. internal/domain/device.Device implements it; kept as a local
// interface to avoid a service<->device import cycle (services are owned
// by a device, but a method's thunk needs to read device state back).
type Device interface {
	Name() string
	DeviceType() string
	Namespace() string
	MACAddress() string
	URN() string
}

// Thunk is the pure function a method invokes: it reads the device and a
// keyed argument bag, and returns a keyed result bag.
type Thunk func(device Device, args map[string]any) (map[string]any, error)

// Method is a named, user-declared remote procedure.
type Method struct {
	Name    string
	Args    []Arg
	Returns []Arg
	Thunk   Thunk
	Doc     string
}

// Invoke validates args against the method's declared argument list, runs
// the thunk, and validates its output against the declared return list.
//
// Argument and return validation compare the *value* against the declared
// type, not the argument's name string.
func (m Method) Invoke(device Device, args map[string]any) (map[string]any, error) {
	for _, arg := range m.Args {
		value, ok := args[arg.Name]
		if !ok {
			return nil, iotscperr.ErrMissingArgument
		}
		if !MatchesType(value, arg.Type) {
			return nil, iotscperr.ErrArgumentType
		}
	}

	output, err := m.Thunk(device, args)
	if err != nil {
		return nil, err
	}

	for _, ret := range m.Returns {
		value, ok := output[ret.Name]
		if !ok {
			return nil, iotscperr.ErrMissingReturn
		}
		if !MatchesType(value, ret.Type) {
			return nil, iotscperr.ErrReturnType
		}
	}
	return output, nil
}

// ValuesDict renders the method for the service description documents
// GET serves.
func (m Method) ValuesDict() map[string]any {
	return map[string]any{
		"name":    m.Name,
		"args":    argStrings(m.Args),
		"returns": argStrings(m.Returns),
		"doc":     m.Doc,
	}
}

func argStrings(args []Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}
