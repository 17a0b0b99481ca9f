package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmorante/acs-control-core/internal/device"
)

// Registrar is the slice of the device registry the ingestion pipeline
// needs: implicit registration of unknown senders.
type Registrar interface {
	EnsureRegistered(ctx context.Context, mac string) error
}

// Mirror receives accepted measurements for secondary storage (e.g. a
// time-series database). Mirroring is best-effort: failures are logged
// and never affect the primary insert.
type Mirror interface {
	Write(ctx context.Context, m *Measurement) error
}

// Logger is the subset of the logging interface the service uses.
type Logger interface {
	Warn(msg string, args ...any)
}

// Service is the telemetry ingestion pipeline.
//
// Processing is at-most-once: a payload that fails any stage is dropped
// with a sentinel error for the caller to log. Nothing is buffered or
// retried; the sensors publish on a short cycle and the next sample
// supersedes a lost one.
type Service struct {
	store     Repository
	registrar Registrar
	mirror    Mirror
	logger    Logger
}

// NewService creates an ingestion service. registrar, mirror and logger
// are optional; pass nil to disable implicit registration, mirroring or
// mirror-failure logging respectively.
func NewService(store Repository, registrar Registrar, mirror Mirror, logger Logger) *Service {
	return &Service{
		store:     store,
		registrar: registrar,
		mirror:    mirror,
		logger:    logger,
	}
}

// Ingest validates and stores one telemetry payload from a device.
//
// Stages, each with its own sentinel:
//  1. Decode payload JSON → ErrMalformedPayload
//  2. Validate hardware address → ErrInvalidAddress
//  3. Require temperature → ErrMissingField
//  4. Insert with server-assigned timestamp → ErrConstraint / ErrPersistenceFailed
//
// Unknown senders are registered on first contact, named by address.
func (s *Service) Ingest(ctx context.Context, mac string, raw []byte) error {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if !device.IsValidMAC(mac) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, mac)
	}

	if p.Temperature == nil {
		return fmt.Errorf("%w: temperature", ErrMissingField)
	}

	if s.registrar != nil {
		if err := s.registrar.EnsureRegistered(ctx, mac); err != nil {
			return fmt.Errorf("%w: registering sender: %w", ErrPersistenceFailed, err)
		}
	}

	m := &Measurement{
		MAC:         mac,
		Temperature: *p.Temperature,
		Humidity:    p.Humidity,
		Battery:     p.Battery,
	}

	if err := s.store.Insert(ctx, m); err != nil {
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.Write(ctx, m); err != nil && s.logger != nil {
			s.logger.Warn("telemetry mirror write failed",
				"mac", mac,
				"error", err,
			)
		}
	}

	return nil
}
