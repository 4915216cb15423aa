package service

import (
	"errors"
	"testing"

	"iotscp/internal/domain/iotscperr"
)

func TestEventValidateAcceptsDeclaredFields(t *testing.T) {
	e := Event{Name: "BinaryState", Sends: []Arg{{Name: "BinaryState", Type: TypeBool}}}
	if err := e.Validate(map[string]any{"BinaryState": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventValidateRejectsUndeclaredField(t *testing.T) {
	e := Event{Name: "BinaryState", Sends: []Arg{{Name: "BinaryState", Type: TypeBool}}}
	err := e.Validate(map[string]any{"Other": 1})
	if !errors.Is(err, iotscperr.ErrArgumentType) {
		t.Fatalf("got %v, want ErrArgumentType", err)
	}
}

func TestEventValidateRejectsWrongType(t *testing.T) {
	e := Event{Name: "BinaryState", Sends: []Arg{{Name: "BinaryState", Type: TypeBool}}}
	err := e.Validate(map[string]any{"BinaryState": "yes"})
	if !errors.Is(err, iotscperr.ErrArgumentType) {
		t.Fatalf("got %v, want ErrArgumentType", err)
	}
}

func TestEventValuesDict(t *testing.T) {
	e := Event{Name: "BinaryState", Sends: []Arg{{Name: "BinaryState", Type: TypeBool}}, Doc: "motion"}
	vd := e.ValuesDict()
	if vd["name"] != "BinaryState" || vd["doc"] != "motion" {
		t.Errorf("unexpected values dict: %v", vd)
	}
}
