package configsync

import (
	"context"
	"errors"
	"time"

	"github.com/dmorante/acs-control-core/internal/device"
	"github.com/dmorante/acs-control-core/internal/infrastructure/mqtt"
)

// DeviceLister enumerates the devices eligible for config pushes.
// Implemented by device.Repository.
type DeviceLister interface {
	ListActiveMACs(ctx context.Context) ([]string, error)
}

// StateReader reads device state rows. Implemented by device.StateRepository.
type StateReader interface {
	Get(ctx context.Context, mac string) (*device.State, error)
}

// Scheduler is the change-detection loop that pushes configuration
// updates to devices.
//
// Each tick it compares every active device's last_updated against a
// private in-memory watermark and publishes the full current
// {tempMin, tempMax, season} to ACS_Control/<mac>/ConfigUpdate when the
// store is newer. The watermark map is touched only by the scheduler
// goroutine, so it needs no locking.
//
// Watermarks are not persisted. A restart re-pushes every device's
// state once, which is intended: pushes are full-state overwrites, so a
// duplicate is harmless and the re-push doubles as recovery for any
// update lost while the core was down.
type Scheduler struct {
	devices   DeviceLister
	states    StateReader
	publisher Publisher
	logger    Logger
	interval  time.Duration

	// watermarks maps mac → last pushed last_updated.
	watermarks map[string]time.Time
}

// NewScheduler creates a change-detection scheduler. interval is the
// tick period (config scheduler.poll_interval, default 30s).
func NewScheduler(devices DeviceLister, states StateReader, publisher Publisher, logger Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		devices:    devices,
		states:     states,
		publisher:  publisher,
		logger:     logger,
		interval:   interval,
		watermarks: make(map[string]time.Time),
	}
}

// Run executes the polling loop until ctx is cancelled. The in-flight
// tick completes before Run returns; no new ticks start afterwards.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one change-detection pass. Errors are isolated per device:
// one device failing to read or publish never blocks the rest.
func (s *Scheduler) tick(ctx context.Context) {
	macs, err := s.devices.ListActiveMACs(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("scheduler tick: listing devices failed", "error", err)
		}
		return
	}

	s.pruneWatermarks(macs)

	for _, mac := range macs {
		s.syncDevice(ctx, mac)
	}
}

// pruneWatermarks drops entries for devices no longer in the active
// set, keeping the map bounded by the registry. A device deleted and
// later re-activated counts as a first observation again and gets a
// fresh push.
func (s *Scheduler) pruneWatermarks(active []string) {
	if len(s.watermarks) == 0 {
		return
	}

	keep := make(map[string]struct{}, len(active))
	for _, mac := range active {
		keep[mac] = struct{}{}
	}
	for mac := range s.watermarks {
		if _, ok := keep[mac]; !ok {
			delete(s.watermarks, mac)
		}
	}
}

// syncDevice pushes one device's configuration if its state changed
// since the last push.
func (s *Scheduler) syncDevice(ctx context.Context, mac string) {
	state, err := s.states.Get(ctx, mac)
	if err != nil {
		if errors.Is(err, device.ErrStateNotFound) {
			// Registered but never configured; nothing to push.
			return
		}
		if s.logger != nil {
			s.logger.Warn("scheduler: reading state failed", "mac", mac, "error", err)
		}
		return
	}

	// First observation counts as changed.
	watermark, seen := s.watermarks[mac]
	if seen && !state.LastUpdated.After(watermark) {
		return
	}

	payload, err := buildConfigPayload(state)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("scheduler: building payload failed", "mac", mac, "error", err)
		}
		return
	}

	topic := mqtt.Topics{}.ConfigUpdate(mac)
	if err := s.publisher.PublishJSON(topic, payload); err != nil {
		// Watermark stays put so the push is retried next tick.
		if s.logger != nil {
			s.logger.Warn("scheduler: config push failed", "mac", mac, "error", err)
		}
		return
	}

	s.watermarks[mac] = state.LastUpdated
	if s.logger != nil {
		s.logger.Debug("config update pushed", "mac", mac, "last_updated", state.LastUpdated)
	}
}
