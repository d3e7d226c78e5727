// Package mqtt provides MQTT client connectivity for the earpanel.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// Session events go out on earpanel/event/{type}; other panels and home
// automation listen there. Commands come in on earpanel/command/{action}.
// See Topics for the full hierarchy.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
//
//	client.Publish(mqtt.Topics{}.Event("scan.started"), payload, 1, false)
package mqtt
