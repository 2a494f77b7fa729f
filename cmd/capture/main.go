package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/inertial_motion/internal/app"
	"github.com/relabs-tech/inertial_motion/internal/config"
)

func main() {
	configPath := flag.String("config", "./inertial_config.txt", "path to configuration file")
	label := flag.String("label", "sample", "label stored with every captured session")
	duration := flag.Duration("duration", 10*time.Second, "length of each captured sample")
	flag.Parse()

	log.Println("starting inertial-motion capture (serial → SQLite)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunCapture(*label, *duration); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
