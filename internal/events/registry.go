package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// workflow analysis
	"workflow.analyzed": {},
	"workflow.rejected": {},

	// persisted reports
	"report.saved":       {},
	"report.save_failed": {},

	// mqtt bridge
	"mqtt.connected":        {},
	"mqtt.disconnected":     {},
	"mqtt.request_received": {},
	"mqtt.request_rejected": {},
	"mqtt.result_published": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
