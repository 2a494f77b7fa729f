package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/lifecycle"
)

// openSerial opens the acquisition board's serial port (8N1).
func openSerial(cfg *config.Config) (io.ReadWriteCloser, error) {
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", serialOpts.PortName, err)
	}
	log.Printf("serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)
	return port, nil
}

// closeOnDone closes c once ctx is cancelled, unblocking pending reads.
func closeOnDone(ctx context.Context, c io.Closer) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()
}

// RunSerialAnalyzer classifies the earth-frame acceleration streamed by an
// external acquisition board and publishes events to MQTT.
func RunSerialAnalyzer() error {
	log.Println("starting inertial-motion serial analyzer")

	cfg := config.Get()
	connState := lifecycle.NewConnectionFSM()
	mustAdvance(connState.BootupComplete())

	port, err := openSerial(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	mustAdvance(connState.PeripheralsComplete())

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDAnalyzer, connState)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	rep, err := newReporter(cfg.MotionParams(), "serial", millis(cfg.ReportInterval))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	closeOnDone(ctx, port)

	f := newLineFeed(port)
	pub := &eventPublisher{client: client, topic: cfg.TopicMotion, conn: connState}
	err = runAnalysis(ctx, f, rep, pub.emit)
	log.Printf("serial analyzer: shutting down (%d malformed sentences, %d events dropped while disconnected)",
		f.rejected, pub.dropped)
	return err
}
