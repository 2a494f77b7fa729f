package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/lifecycle"
	"github.com/relabs-tech/inertial_motion/internal/orientation"
	"github.com/relabs-tech/inertial_motion/internal/sensors"
)

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// RunAnalyzer samples the IMU, fuses it into an earth-frame acceleration,
// classifies the motion and publishes events to MQTT.
func RunAnalyzer() error {
	log.Println("starting inertial-motion analyzer")

	cfg := config.Get()
	sensorState := lifecycle.NewSensorFSM()
	connState := lifecycle.NewConnectionFSM()
	mustAdvance(sensorState.BootupComplete(), connState.BootupComplete())

	src, err := sensors.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize IMU: %v", err)
		return err
	}
	mustAdvance(sensorState.PeripheralsComplete(), connState.PeripheralsComplete())

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDAnalyzer, connState)
	if err != nil {
		log.Fatalf("%v", err)
		return err
	}
	defer client.Disconnect(250)

	rep, err := newReporter(cfg.MotionParams(), cfg.IMUSource, millis(cfg.ReportInterval))
	if err != nil {
		return err
	}

	period := millis(cfg.IMUSampleInterval)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var lastStatus time.Time
	f := &imuFeed{
		src:     src,
		tracker: orientation.NewTracker(period, cfg.FusionGain, cfg.VelocityLeak),
		ticks:   ticker.C,
		status: func(t time.Time, tr *orientation.Tracker) {
			if t.Sub(lastStatus) < time.Second {
				return
			}
			lastStatus = t
			logStatus(tr)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("sampling every %v, publishing on %s", period, cfg.TopicMotion)
	pub := &eventPublisher{client: client, topic: cfg.TopicMotion, conn: connState}
	err = runAnalysis(ctx, f, rep, pub.emit)
	log.Printf("analyzer: shutting down (%d events dropped while disconnected)", pub.dropped)
	return err
}

func logStatus(tr *orientation.Tracker) {
	pose, ae := tr.Pose(), tr.EarthAccel()
	log.Printf("dt: %5.2fms (%.1f%%), pitch:%+.1f roll:%+.1f yaw:%+.1f ae_x:%+.3f ae.y:%+.3f ae.z:%+.3f",
		float64(tr.LatestDelta().Microseconds())/1000,
		(tr.SamplingDeviation()-1)*100,
		pose.Pitch, pose.Roll, pose.Yaw,
		ae.X, ae.Y, ae.Z,
	)
}

// mustAdvance aborts on a lifecycle transition error, which means the
// start-up sequence itself is broken.
func mustAdvance(errs ...error) {
	for _, err := range errs {
		if err != nil {
			log.Fatalf("lifecycle: %v", err)
		}
	}
}
