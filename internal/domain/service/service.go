package service

import "iotscp/internal/domain/iotscperr"

// EventSender is the minimal projection of the event dispatcher a service
// needs to publish notifications. internal/infrastructure/dispatcher
// implements it; kept local to avoid a domain->infrastructure import.
type EventSender interface {
	SendEvent(eventURL string, payload map[string]any)
}

// Service is a named bundle of methods and events. Default URLs derive
// from the service name when not supplied explicitly.
type Service struct {
	Name       string
	ControlURL string
	EventURL   string
	SpecURL    string
	Methods    map[string]Method
	Events     map[string]Event

	dispatcher EventSender
}

// New builds a Service, deriving default control and event URLs of the
// form "/control/<name>/" and "/event/<name>/".
func New(name string, methods []Method, events []Event) *Service {
	s := &Service{
		Name:       name,
		ControlURL: "/control/" + name + "/",
		EventURL:   "/event/" + name + "/",
		SpecURL:    name + ".json",
		Methods:    make(map[string]Method, len(methods)),
		Events:     make(map[string]Event, len(events)),
	}
	for _, m := range methods {
		s.Methods[m.Name] = m
	}
	for _, e := range events {
		s.Events[e.Name] = e
	}
	return s
}

// WithURLs overrides the default control and event URLs for deployments
// that need to pin a stable path.
func (s *Service) WithURLs(controlURL, eventURL string) *Service {
	s.ControlURL = controlURL
	s.EventURL = eventURL
	return s
}

// AddDispatcher wires the process-wide event dispatcher into this service.
// It is called once during startup wiring, after the device is built and
// before any event is sent; services only borrow the dispatcher to publish.
func (s *Service) AddDispatcher(dispatcher EventSender) {
	s.dispatcher = dispatcher
}

// SendEvent validates kwargs against the named event's declared sends-list,
// stamps the payload with its event name, and publishes it through the
// dispatcher.
func (s *Service) SendEvent(eventName string, kwargs map[string]any) error {
	event, ok := s.Events[eventName]
	if !ok {
		return iotscperr.ErrUnknownEvent
	}
	if err := event.Validate(kwargs); err != nil {
		return err
	}
	payload := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		payload[k] = v
	}
	payload["name"] = eventName
	s.dispatcher.SendEvent(s.EventURL, payload)
	return nil
}

// ValuesDict renders the service for the device/service description
// documents GET serves.
func (s *Service) ValuesDict() map[string]any {
	methods := make([]map[string]any, 0, len(s.Methods))
	for _, m := range s.Methods {
		methods = append(methods, m.ValuesDict())
	}
	events := make([]map[string]any, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, e.ValuesDict())
	}
	return map[string]any{
		"name":        s.Name,
		"control_url": s.ControlURL,
		"event_url":   s.EventURL,
		"spec_url":    s.SpecURL,
		"methods":     methods,
		"events":      events,
	}
}
