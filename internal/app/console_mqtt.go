package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

func formatEvent(ev telemetry.Event) string {
	return fmt.Sprintf(
		"[MOTION] %s %-10s h=%6.3fg v=%6.3fg heading=%7.2f",
		ev.Time.Format("15:04:05.000"), ev.Direction, ev.EnergyH, ev.EnergyV, ev.Heading,
	)
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, nil)
	if err != nil {
		return err
	}

	err = subscribeEvents(client, cfg.TopicMotion, func(ev telemetry.Event) {
		fmt.Println(formatEvent(ev))
	})
	if err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
