package mqtt

import (
	"encoding/json"
	"log"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Defantinis/flowlens/internal/analysis"
	"github.com/Defantinis/flowlens/internal/api"
	"github.com/Defantinis/flowlens/internal/events"
	"github.com/Defantinis/flowlens/internal/workflow"
)

// Publisher is the subset of Client the bridge needs to send results.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// AnalyzeResult is the JSON payload published on the result topic.
type AnalyzeResult struct {
	ID       string            `json:"id,omitempty"`
	Workflow string            `json:"workflow,omitempty"`
	Active   bool              `json:"active,omitempty"`
	Metadata analysis.Metadata `json:"metadata"`
	Summary  string            `json:"summary,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Bridge consumes workflow documents from the request topic and publishes
// analysis results on the result topic.
type Bridge struct {
	analyzer    *analysis.Analyzer
	publisher   Publisher
	resultTopic string
}

// NewBridge creates a bridge that analyzes requests with a and publishes
// results via pub.
func NewBridge(a *analysis.Analyzer, pub Publisher, resultTopic string) *Bridge {
	return &Bridge{
		analyzer:    a,
		publisher:   pub,
		resultTopic: resultTopic,
	}
}

// Start connects the client and subscribes the bridge to requestTopic.
func (b *Bridge) Start(c *Client, requestTopic string) bool {
	return c.StartWithRetry(requestTopic, b.HandleMessage)
}

// HandleMessage is the paho handler for the request topic.
func (b *Bridge) HandleMessage(_ paho.Client, msg paho.Message) {
	result := b.handleRequest(msg.Payload())

	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("mqtt: failed to marshal result: %v", err)
		return
	}

	if err := b.publisher.Publish(b.resultTopic, payload); err != nil {
		log.Printf("mqtt: failed to publish result to %s: %v", b.resultTopic, err)
		return
	}

	events.Emit("info", "mqtt.result_published", "", map[string]interface{}{
		"topic":    b.resultTopic,
		"workflow": result.Workflow,
	})
}

func (b *Bridge) handleRequest(payload []byte) AnalyzeResult {
	events.Emit("info", "mqtt.request_received", "", map[string]interface{}{
		"bytes": len(payload),
	})

	wf, err := workflow.Parse(payload)
	if err != nil {
		events.Emit("warning", "mqtt.request_rejected", "", map[string]interface{}{
			"error": err.Error(),
		})
		return AnalyzeResult{Error: err.Error()}
	}

	g, err := workflow.NewGraph(wf)
	if err != nil {
		events.Emit("warning", "mqtt.request_rejected", "", map[string]interface{}{
			"workflow": wf.Name,
			"error":    err.Error(),
		})
		return AnalyzeResult{Workflow: wf.Name, Error: err.Error()}
	}

	var warnings []string
	for _, refErr := range g.CheckReferences() {
		warnings = append(warnings, refErr.Error())
	}

	md := b.analyzer.Analyze(g)
	api.AddAnalysis()
	return AnalyzeResult{
		ID:       uuid.NewString(),
		Workflow: wf.Name,
		Active:   wf.Active,
		Metadata: md,
		Summary:  analysis.Summary(wf.Name, wf.Active, md),
		Warnings: warnings,
	}
}
