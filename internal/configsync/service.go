package configsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmorante/acs-control-core/internal/device"
	"github.com/dmorante/acs-control-core/internal/infrastructure/mqtt"
)

// Publisher is the slice of the MQTT client the sync services need.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// Logger is the subset of the logging interface used here.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// configMessage is the wire format for ConfigResponse and ConfigUpdate.
// Unset fields are omitted rather than sent as null. The boiler relay
// flag is operator-facing bookkeeping and is deliberately absent: it is
// never sent to devices on any path.
type configMessage struct {
	TempMin *float64       `json:"tempMin,omitempty"`
	TempMax *float64       `json:"tempMax,omitempty"`
	Season  *device.Season `json:"season,omitempty"`
}

// buildConfigPayload serializes a device state for transmission.
func buildConfigPayload(s *device.State) ([]byte, error) {
	msg := configMessage{
		TempMin: s.TempMin,
		TempMax: s.TempMax,
		Season:  s.Season,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshalling config payload: %w", err)
	}
	return payload, nil
}

// Service answers configuration pull requests from devices.
type Service struct {
	states    device.StateRepository
	publisher Publisher
	logger    Logger
}

// NewService creates a configuration request service.
func NewService(states device.StateRepository, publisher Publisher, logger Logger) *Service {
	return &Service{
		states:    states,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleConfigRequest answers one ConfigRequest from a device.
//
// A device with no state row gets no reply at all. Publishing errors
// back at unknown or malformed identifiers would let a misbehaving
// client generate outbound traffic at will, so silence is the response.
//
// When state exists, the current {tempMin, tempMax, season} is published
// to ACS_Control/<mac>/ConfigResponse.
func (s *Service) HandleConfigRequest(ctx context.Context, mac string) error {
	state, err := s.states.Get(ctx, mac)
	if err != nil {
		if errors.Is(err, device.ErrStateNotFound) {
			if s.logger != nil {
				s.logger.Debug("config request for device without state", "mac", mac)
			}
			return nil
		}
		return fmt.Errorf("reading state for config request: %w", err)
	}

	payload, err := buildConfigPayload(state)
	if err != nil {
		return err
	}

	topic := mqtt.Topics{}.ConfigResponse(mac)
	if err := s.publisher.PublishJSON(topic, payload); err != nil {
		return fmt.Errorf("publishing config response: %w", err)
	}

	return nil
}
