// Package device implements the device registry: the static description of
// a device's identity and its services, plus the URL reverse index used to
// route requests.
package device

import (
	"strings"

	"iotscp/internal/domain/iotscperr"
	"iotscp/internal/domain/service"
)

// Device is the registry of a deployment's identity and declared services.
// It is built once at startup from user-supplied data and is read-only for
// the life of the process; the mutable session table lives alongside the
// HTTP engine, not here.
type Device struct {
	name       string
	deviceType string
	namespace  string
	macAddress string
	prefAlg    string
	urn        string

	services   []*service.Service
	byControl  map[string]*service.Service
	byEventURL map[string]*service.Service
}

// Config is the user-declared data a deployment supplies to build a Device.
type Config struct {
	Name       string
	DeviceType string
	Namespace  string
	MACAddress string
	PrefAlg    string
	Services   []*service.Service
}

// New builds a Device's registry and reverse indices from cfg. AddDispatcher
// must be called on each service before New, or immediately after, so that
// SendEvent works; the caller owns dispatcher wiring.
func New(cfg Config) *Device {
	d := &Device{
		name:       cfg.Name,
		deviceType: cfg.DeviceType,
		namespace:  cfg.Namespace,
		macAddress: cfg.MACAddress,
		prefAlg:    cfg.PrefAlg,
		services:   cfg.Services,
		byControl:  make(map[string]*service.Service, len(cfg.Services)),
		byEventURL: make(map[string]*service.Service, len(cfg.Services)),
	}
	d.urn = "urn:" + cfg.Namespace + ":device:" + strings.ToLower(cfg.DeviceType) + ":1"
	for _, svc := range d.services {
		d.byControl[svc.ControlURL] = svc
		d.byEventURL[svc.EventURL] = svc
	}
	return d
}

func (d *Device) Name() string       { return d.name }
func (d *Device) DeviceType() string { return d.deviceType }
func (d *Device) Namespace() string  { return d.namespace }
func (d *Device) MACAddress() string { return d.macAddress }
func (d *Device) PrefAlg() string    { return d.prefAlg }
func (d *Device) URN() string        { return d.urn }
func (d *Device) Services() []*service.Service {
	return d.services
}

// ServiceByControlURL resolves a control URL to its service, failing with
// iotscperr.ErrUnknownService on a miss.
func (d *Device) ServiceByControlURL(url string) (*service.Service, error) {
	svc, ok := d.byControl[url]
	if !ok {
		return nil, iotscperr.ErrUnknownService
	}
	return svc, nil
}

// ServiceByEventURL resolves an event URL to its service, failing with
// iotscperr.ErrUnknownEventURL on a miss.
func (d *Device) ServiceByEventURL(url string) (*service.Service, error) {
	svc, ok := d.byEventURL[url]
	if !ok {
		return nil, iotscperr.ErrUnknownEventURL
	}
	return svc, nil
}

// ValuesDict renders the device as the payload served at /setup.json.
func (d *Device) ValuesDict() map[string]any {
	services := make(map[string]any, len(d.services))
	for _, svc := range d.services {
		services[svc.Name] = map[string]any{
			"spec_url":    svc.SpecURL,
			"control_url": svc.ControlURL,
			"event_url":   svc.EventURL,
		}
	}
	return map[string]any{
		"name":        d.name,
		"device_type": d.deviceType,
		"urn":         d.urn,
		"mac_address": d.macAddress,
		"services":    services,
	}
}
