package configsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmorante/acs-control-core/internal/infrastructure/mqtt"
)

// configRequestPayload is the literal a device publishes to ask for its
// configuration.
const configRequestPayload = "1"

// handleTimeout bounds the processing of a single inbound message.
const handleTimeout = 10 * time.Second

// Ingester consumes telemetry submissions. Implemented by telemetry.Service.
type Ingester interface {
	Ingest(ctx context.Context, mac string, payload []byte) error
}

// Requester consumes configuration pull requests. Implemented by Service.
type Requester interface {
	HandleConfigRequest(ctx context.Context, mac string) error
}

// Router turns raw inbound MQTT messages into typed events and
// dispatches them. It is the single MessageHandler registered for both
// inbound subscriptions.
type Router struct {
	base      context.Context
	ingester  Ingester
	requester Requester
	logger    Logger
}

// NewRouter creates a message router. base is the process lifetime
// context; each message is handled under a derived timeout.
func NewRouter(base context.Context, ingester Ingester, requester Requester, logger Logger) *Router {
	return &Router{
		base:      base,
		ingester:  ingester,
		requester: requester,
		logger:    logger,
	}
}

// HandleMessage routes one inbound message. Signature matches
// mqtt.MessageHandler.
//
// Dispatch rule: suffix "ConfigRequest" with payload "1" is a pull
// request; every other suffix/payload combination is treated as a
// telemetry submission. A topic that does not parse is logged and
// discarded.
func (r *Router) HandleMessage(topic string, payload []byte) error {
	mac, suffix, err := mqtt.ParseDeviceTopic(topic)
	if err != nil {
		return fmt.Errorf("discarding message: %w", err)
	}

	ctx, cancel := context.WithTimeout(r.base, handleTimeout)
	defer cancel()

	if suffix == mqtt.SuffixConfigRequest && strings.TrimSpace(string(payload)) == configRequestPayload {
		return r.requester.HandleConfigRequest(ctx, mac)
	}

	return r.ingester.Ingest(ctx, mac, payload)
}
