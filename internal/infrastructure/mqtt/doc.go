// Package mqtt provides MQTT client connectivity for ACS Control Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - The ACS_Control/<mac>/<suffix> topic scheme and its parser
//
// # Architecture
//
// ACS Control uses MQTT as the sole transport between the core and the
// sensor devices. Devices publish telemetry and configuration requests;
// the core answers requests and pushes configuration changes.
//
//	Sensor Devices ↔ MQTT Broker ↔ ACS Control Core
//
// # Failure Policy
//
//   - A failed initial connection is fatal at startup.
//   - A failed publish is logged and dropped; configuration messages are
//     full-state overwrites, so a missed push is corrected by the next one.
//   - Handler errors and panics are contained per message.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	err = client.Subscribe(topics.TelemetrySubscription(), 1,
//	    func(topic string, payload []byte) error {
//	        return router.HandleMessage(topic, payload)
//	    })
package mqtt
