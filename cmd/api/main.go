package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Defantinis/flowlens/internal/analysis"
	"github.com/Defantinis/flowlens/internal/api"
	"github.com/Defantinis/flowlens/internal/config"
	"github.com/Defantinis/flowlens/internal/events"
	"github.com/Defantinis/flowlens/internal/mqtt"
	"github.com/Defantinis/flowlens/internal/storage/postgres"
	"github.com/Defantinis/flowlens/internal/version"
)

func configPath() string {
	if path := os.Getenv("FLOWLENS_CONFIG"); path != "" {
		return path
	}
	return "config/service.yaml"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServiceConfig(configPath())
	if err != nil {
		log.Fatalf("failed to load service config: %v", err)
	}

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "flowlens api starting", map[string]interface{}{
		"service":  cfg.ServiceID(),
		"version":  version.Version,
		"hostname": hostname,
		"pid":      os.Getpid(),
	})

	api.InitMetrics()
	api.SetServiceName(cfg.ServiceID())
	api.InitTLS()
	api.InitAlerts()

	// Postgres is optional: without it the service still analyzes, it
	// just cannot persist reports.
	store, err := postgres.New(cfg.ServiceID())
	if err != nil {
		log.Printf("postgres unavailable, reports will not be persisted: %v", err)
		api.SetPostgresState(false, true)
	} else {
		defer store.Close()
		events.SetPostgresClient(store)
		api.SetStore(store)
		api.SetPostgresState(true, true)
	}

	analyzer := analysis.NewAnalyzer(cfg.ComplexTypes())
	api.SetAnalyzer(analyzer)
	api.SetAnalyzerReady(true)

	// MQTT is optional too. The bridge accepts analyze requests on the
	// request topic and publishes results on the result topic.
	client := mqtt.NewClient(cfg.ServiceID(),
		func() {
			api.SetMQTTState(true, true)
			events.Emit("info", "mqtt.connected", "", map[string]interface{}{
				"broker": mqtt.BrokerURL(),
			})
		},
		func(err error) {
			api.SetMQTTState(false, true)
			events.Emit("warning", "mqtt.disconnected", "", map[string]interface{}{
				"error": err.Error(),
			})
		})
	bridge := mqtt.NewBridge(analyzer, client, cfg.ResultTopic())
	if !bridge.Start(client, cfg.RequestTopic()) {
		api.SetMQTTState(false, true)
	}

	api.StartAlertMonitor(30 * time.Second)

	port := cfg.APIPort()
	log.Printf("flowlens api %s listening on :%d", version.Version, port)
	api.Start(port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	events.Emit("info", "system.shutdown", "flowlens api stopping", map[string]interface{}{
		"service": cfg.ServiceID(),
	})
	client.Disconnect()
	events.CloseAllSubscribers()
}
