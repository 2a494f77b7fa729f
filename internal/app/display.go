package app

import (
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

const (
	displayW = 128
	displayH = 64

	// energy bars: horizontal on rows 55-57, vertical on 60-62
	barHTop = 55
	barVTop = 60
	barRows = 3
)

// displayState holds the latest event received from MQTT.
type displayState struct {
	mu   sync.RWMutex
	ev   telemetry.Event
	have bool
}

func (d *displayState) set(ev telemetry.Event) {
	d.mu.Lock()
	d.ev, d.have = ev, true
	d.mu.Unlock()
}

func (d *displayState) get() (telemetry.Event, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ev, d.have
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	state := &displayState{}
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, nil)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	if err := subscribeEvents(client, cfg.TopicMotion, state.set); err != nil {
		return err
	}

	ticker := time.NewTicker(millis(cfg.DisplayUpdateInterval))
	defer ticker.Stop()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	log.Println("display: starting update loop")
	for {
		select {
		case <-sigCh:
			log.Println("display: shutting down")
			return nil
		case <-ticker.C:
			ev, have := state.get()
			img := renderMotion(ev, have, cfg.AccelThreshold)
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("Inertial Pi")

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawString("Waiting for")

	drawer.Dot = fixed.P(35, 56)
	drawer.DrawString("motion")
	return img
}

// renderMotion draws the current direction, the two energies and one bar
// per energy scaled so that the threshold sits at mid-width.
func renderMotion(ev telemetry.Event, have bool, threshold float64) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawString("MOTION")

	if !have {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("No data")
		return img
	}

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawString(strings.ToUpper(ev.Direction))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawString(fmt.Sprintf("H%5.2f V%5.2f", ev.EnergyH, ev.EnergyV))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawString(fmt.Sprintf("HDG %6.1f", ev.Heading))

	drawBar(img, barHTop, ev.EnergyH, threshold)
	drawBar(img, barVTop, ev.EnergyV, threshold)
	return img
}

func drawBar(img *image1bit.VerticalLSB, top int, energy, threshold float64) {
	if threshold <= 0 || !(energy > 0) {
		return
	}
	w := int(math.Round(math.Min(energy/(2*threshold), 1) * displayW))
	for y := top; y < top+barRows; y++ {
		for x := 0; x < w; x++ {
			img.SetBit(x, y, image1bit.On)
		}
	}
}
