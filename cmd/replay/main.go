package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_motion/internal/app"
	"github.com/relabs-tech/inertial_motion/internal/config"
)

func main() {
	configPath := flag.String("config", "./inertial_config.txt", "path to configuration file")
	session := flag.String("session", "", "session ID to replay (lists sessions when empty)")
	estimator := flag.String("estimator", "both", "magnitude estimator: average, quantile or both")
	out := flag.String("out", "", "write <out>.png and <out>.html energy charts")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReplay(*session, *estimator, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
