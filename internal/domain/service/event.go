package service

import "iotscp/internal/domain/iotscperr"

// Event is a named, user-declared notification a subscriber can receive.
type Event struct {
	Name  string
	Sends []Arg
	Doc   string
}

// sendsByName indexes Sends for Validate; built lazily since Event values
// are typically constructed once at startup and read many times.
func (e Event) sendsByName() map[string]Arg {
	m := make(map[string]Arg, len(e.Sends))
	for _, arg := range e.Sends {
		m[arg.Name] = arg
	}
	return m
}

// Validate ensures kwargs only names fields this event declares and that
// every value satisfies its declared type.
func (e Event) Validate(kwargs map[string]any) error {
	byName := e.sendsByName()
	for k, v := range kwargs {
		arg, ok := byName[k]
		if !ok {
			return iotscperr.ErrArgumentType
		}
		if !MatchesType(v, arg.Type) {
			return iotscperr.ErrArgumentType
		}
	}
	return nil
}

// ValuesDict renders the event for a service description document.
func (e Event) ValuesDict() map[string]any {
	return map[string]any{
		"name":  e.Name,
		"sends": argStrings(e.Sends),
		"doc":   e.Doc,
	}
}
