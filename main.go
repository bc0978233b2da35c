// Tubewell monitor daemon: ingests pump controller telemetry over
// MQTT, maintains live state and bounded history, persists raw and
// aggregated readings, and serves the dashboard query API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/aggregator"
	"github.com/AbidHayat/tubewell-project/pkg/api"
	"github.com/AbidHayat/tubewell-project/pkg/commands"
	"github.com/AbidHayat/tubewell-project/pkg/config"
	"github.com/AbidHayat/tubewell-project/pkg/history"
	"github.com/AbidHayat/tubewell-project/pkg/ingest"
	"github.com/AbidHayat/tubewell-project/pkg/livestate"
	"github.com/AbidHayat/tubewell-project/pkg/pathing"
	"github.com/AbidHayat/tubewell-project/pkg/pumpdb"
	"github.com/AbidHayat/tubewell-project/pkg/registry"
	"github.com/AbidHayat/tubewell-project/pkg/transport"
)

func main() {
	if err := config.LoadMonitorConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.ActiveMonitorConfig

	db, err := pumpdb.Open(pathing.GetPumpDbPath())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	state := livestate.NewPool(cfg.DevicePoolSize)
	reg := registry.New(cfg.DevicePoolSize)

	hist := history.NewBuffer(cfg.DevicePoolSize, cfg.HistoryLimit)
	historyPath := pathing.GetHistorySnapshotPath()
	if err := hist.LoadSnapshot(historyPath); err != nil {
		log.Printf("history snapshot load failed, starting fresh: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hist.RunSaver(ctx, historyPath, time.Duration(cfg.SnapshotIntervalSecs)*time.Second)

	agg := aggregator.New(db, time.Duration(cfg.AggregateIntervalSecs)*time.Second)
	go agg.Run(ctx)

	cmdChan := make(chan commands.Message, 16)
	cmdTable := commands.NewTable(cfg.UnitMap())
	ctrl := ingest.NewController(reg, state, hist, db, cmdTable, cmdChan)

	feed := api.NewFeed()
	ctrl.SetFeed(feed)

	mqttClient, err := transport.NewClient(transport.ClientConfig{
		Broker:   cfg.MqttBroker,
		ClientID: cfg.MqttClientID,
		Username: cfg.MqttUsername,
		Password: cfg.MqttPassword,
	})
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Close()

	publisher := transport.NewPublisher(mqttClient.Native(), cfg.PublishTopic, cmdChan)
	go publisher.Start(ctx)

	subscriber := transport.NewSubscriber(mqttClient.Native(), cfg.SubscribeTopic, ctrl)
	if err := subscriber.Subscribe(); err != nil {
		log.Fatalf("mqtt subscribe: %v", err)
	}

	apiServer := api.NewServer(state, hist, db, ctrl, feed,
		time.Duration(cfg.RecentWindowSecs)*time.Second)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		Handler: apiServer.Routes(),
	}
	go func() {
		log.Printf("serving query API on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	log.Printf("tubewell monitor running: %d slots, telemetry on %s, commands on %s",
		cfg.DevicePoolSize, cfg.SubscribeTopic, cfg.PublishTopic)

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
