package mqtt

import (
	"fmt"
	"strings"
)

// Topic constants for the ACS Control namespace.
//
// Device topics follow the scheme: ACS_Control/<mac>/<suffix> where <mac>
// is the device hardware address in canonical colon-hex form.
const (
	// TopicPrefix is the base for all ACS Control topics.
	TopicPrefix = "ACS_Control"

	// SuffixTelemetry is the inbound telemetry suffix.
	SuffixTelemetry = "Temperatura"

	// SuffixConfigRequest is the inbound on-demand configuration request suffix.
	SuffixConfigRequest = "ConfigRequest"

	// SuffixConfigResponse is the outbound reply to a configuration request.
	SuffixConfigResponse = "ConfigResponse"

	// SuffixConfigUpdate is the outbound proactive configuration push.
	SuffixConfigUpdate = "ConfigUpdate"

	// deviceTopicSegments is the number of segments in a device topic.
	deviceTopicSegments = 3
)

// Topics provides builders for ACS Control MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	updateTopic := topics.ConfigUpdate("AA:BB:CC:DD:EE:FF")
//	// Returns: "ACS_Control/AA:BB:CC:DD:EE:FF/ConfigUpdate"
type Topics struct{}

// Telemetry returns the inbound telemetry topic for a device.
//
// Example: ACS_Control/AA:BB:CC:DD:EE:FF/Temperatura
func (Topics) Telemetry(mac string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, mac, SuffixTelemetry)
}

// ConfigRequest returns the inbound configuration request topic for a device.
//
// Example: ACS_Control/AA:BB:CC:DD:EE:FF/ConfigRequest
func (Topics) ConfigRequest(mac string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, mac, SuffixConfigRequest)
}

// ConfigResponse returns the outbound reply topic for a device's
// configuration request.
//
// Example: ACS_Control/AA:BB:CC:DD:EE:FF/ConfigResponse
func (Topics) ConfigResponse(mac string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, mac, SuffixConfigResponse)
}

// ConfigUpdate returns the outbound proactive configuration push topic.
//
// Example: ACS_Control/AA:BB:CC:DD:EE:FF/ConfigUpdate
func (Topics) ConfigUpdate(mac string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, mac, SuffixConfigUpdate)
}

// TelemetrySubscription returns the wildcard subscription covering
// telemetry from all devices.
//
// Returns: ACS_Control/+/Temperatura
func (Topics) TelemetrySubscription() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, SuffixTelemetry)
}

// ConfigRequestSubscription returns the wildcard subscription covering
// configuration requests from all devices.
//
// Returns: ACS_Control/+/ConfigRequest
func (Topics) ConfigRequestSubscription() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, SuffixConfigRequest)
}

// ServerStatus returns the topic for the core's online/offline status.
//
// Returns: ACS_Control/server/status
func (Topics) ServerStatus() string {
	return fmt.Sprintf("%s/server/status", TopicPrefix)
}

// ParseDeviceTopic splits an inbound topic of the form
// ACS_Control/<mac>/<suffix> into its device address and suffix.
//
// The MAC is returned as-is: address validation is the ingestion
// pipeline's responsibility, not the router's.
//
// Parameters:
//   - topic: The raw inbound topic string
//
// Returns:
//   - mac: The device address segment
//   - suffix: The final topic segment (e.g. "Temperatura")
//   - error: ErrMalformedTopic if the topic does not have the expected shape
func ParseDeviceTopic(topic string) (mac, suffix string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != deviceTopicSegments {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	if parts[0] != TopicPrefix {
		return "", "", fmt.Errorf("%w: unexpected prefix in %q", ErrMalformedTopic, topic)
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: empty segment in %q", ErrMalformedTopic, topic)
	}
	return parts[1], parts[2], nil
}
