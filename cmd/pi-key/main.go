// Command pi-key turns a single GPIO button into a USB keyboard: a double click
// types a macro, a long press toggles keep-alive keystrokes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/pi-key/internal/action"
	"github.com/sweeney/pi-key/internal/gpio"
	"github.com/sweeney/pi-key/internal/hid"
	"github.com/sweeney/pi-key/internal/logic"
	"github.com/sweeney/pi-key/internal/mqtt"
	"github.com/sweeney/pi-key/internal/status"
	"github.com/sweeney/pi-key/internal/web"
)

type config struct {
	poll         time.Duration
	classifier   logic.ClassifierConfig
	keepAlive    logic.SchedulerConfig
	chip         string
	pinButton    int
	pinLED       int
	hidDevice    string
	macro        string
	macroFile    string
	broker       string
	clientID     string
	heartbeat    time.Duration
	httpAddr     string
	printState   bool
	singleClicks bool
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.poll, "poll", 5*time.Millisecond, "GPIO polling interval")
	flag.DurationVar(&cfg.classifier.Debounce, "debounce", logic.DefaultDebounce, "Debounce duration")
	flag.DurationVar(&cfg.classifier.DoublePressGap, "double-gap", logic.DefaultDoublePressGap, "Window from first press in which a second press counts as a double click")
	flag.DurationVar(&cfg.classifier.LongPress, "long-press", logic.DefaultLongPress, "Minimum hold for a long press")
	flag.BoolVar(&cfg.singleClicks, "report-single", false, "Publish SHORT_CLICK for single clicks")
	flag.DurationVar(&cfg.keepAlive.MinDelay, "keepalive-min", logic.DefaultKeepAliveMin, "Minimum delay between keep-alive keystrokes")
	flag.DurationVar(&cfg.keepAlive.MaxDelay, "keepalive-max", logic.DefaultKeepAliveMax, "Maximum delay between keep-alive keystrokes")
	flag.StringVar(&cfg.chip, "chip", gpio.DefaultChip, "GPIO chip")
	flag.IntVar(&cfg.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the button")
	flag.IntVar(&cfg.pinLED, "pin-led", gpio.DefaultPinLED, "BCM pin number for the indicator LED (-1 to disable)")
	flag.StringVar(&cfg.hidDevice, "hid-device", hid.DefaultDevice, "USB gadget keyboard device")
	flag.StringVar(&cfg.macro, "macro", "", "Macro typed on double click")
	flag.StringVar(&cfg.macroFile, "macro-file", "", "File containing the macro (overrides --macro)")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&cfg.clientID, "client-id", "pi-key", "MQTT client ID")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current button state and exit")

	flag.Parse()
	cfg.classifier.ReportSingleClicks = cfg.singleClicks

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	if cfg.keepAlive.MinDelay >= cfg.keepAlive.MaxDelay {
		return fmt.Errorf("keepalive-min %v must be below keepalive-max %v", cfg.keepAlive.MinDelay, cfg.keepAlive.MaxDelay)
	}

	// Initialize GPIO
	button, err := gpio.NewRealReader(cfg.chip, cfg.pinButton)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	// Print state mode
	if cfg.printState {
		pressed, err := button.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("Button: %s\n", logic.Sample(pressed))
		return nil
	}

	macro, err := loadMacro(cfg.macro, cfg.macroFile)
	if err != nil {
		return err
	}

	var led gpio.Indicator
	if cfg.pinLED >= 0 {
		ind, err := gpio.NewRealIndicator(cfg.chip, cfg.pinLED)
		if err != nil {
			return fmt.Errorf("init indicator: %w", err)
		}
		defer ind.Close()
		led = ind
	}

	// Initialize HID keyboard
	kbd, kbdCloser, err := hid.OpenKeyboard(cfg.hidDevice)
	if err != nil {
		return fmt.Errorf("init hid: %w", err)
	}
	defer kbdCloser.Close()
	if err := kbd.ReleaseAll(); err != nil {
		log.Printf("hid: release all: %v", err)
	}

	sink := action.NewDevice(kbd, led, macro)

	// Initialize MQTT
	publisher, mqttStatus, err := newPublisher(cfg.broker, cfg.clientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           cfg.poll.Milliseconds(),
		DebounceMs:       cfg.classifier.Debounce.Milliseconds(),
		DoublePressGapMs: cfg.classifier.DoublePressGap.Milliseconds(),
		LongPressMs:      cfg.classifier.LongPress.Milliseconds(),
		KeepAliveMinMs:   cfg.keepAlive.MinDelay.Milliseconds(),
		KeepAliveMaxMs:   cfg.keepAlive.MaxDelay.Milliseconds(),
		HeartbeatMs:      cfg.heartbeat.Milliseconds(),
		Broker:           cfg.broker,
		HTTPAddr:         cfg.httpAddr,
		MacroLoaded:      len(macro) > 0,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(mqttStatus.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: poll=%v debounce=%v double-gap=%v long-press=%v keepalive=[%v,%v) broker=%q heartbeat=%v macro=%d strokes",
		cfg.poll, cfg.classifier.Debounce, cfg.classifier.DoublePressGap, cfg.classifier.LongPress,
		cfg.keepAlive.MinDelay, cfg.keepAlive.MaxDelay, cfg.broker, cfg.heartbeat, len(macro))

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(button, sink, publisher, mqttStatus, tracker,
		logic.NewClassifier(cfg.classifier), logic.NewScheduler(cfg.keepAlive),
		cfg.heartbeat, time.Now, ticker.C, sigCh)
}

// newPublisher connects to broker, or returns a publisher that drops
// everything when broker is empty.
func newPublisher(broker, clientID string) (mqtt.Publisher, mqtt.ConnectionStatus, error) {
	if broker == "" {
		log.Printf("mqtt: no broker configured, telemetry disabled")
		return mqtt.NopPublisher{}, mqtt.NopPublisher{}, nil
	}
	p, err := mqtt.NewRealPublisher(broker, clientID)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

// loadMacro parses the macro from file if set, otherwise from text.
func loadMacro(text, file string) ([]hid.Stroke, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read macro file: %w", err)
		}
		text = trimNewline(string(data))
	}
	if text == "" {
		log.Printf("no macro configured, double click only publishes")
		return nil, nil
	}
	strokes, err := hid.ParseMacro(text)
	if err != nil {
		return nil, fmt.Errorf("parse macro: %w", err)
	}
	return strokes, nil
}

// trimNewline drops the single trailing newline most editors add.
// Use {ENTER} to end a macro with Enter.
func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}

func runLoop(button gpio.Reader, sink action.Sink, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, classifier *logic.Classifier, scheduler *logic.Scheduler, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if err := sink.SetIndicator(false); err != nil {
				log.Printf("action error: %v", err)
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, classifier, scheduler, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			pressed, err := button.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			if event := classifier.Poll(logic.Sample(pressed), t); !event.IsNone() {
				handleEvent(event, t, sink, scheduler)
				log.Printf("event: %s clicks=%d hold=%v keep_alive=%s",
					event.Type, event.Clicks, event.Hold, logic.StateOf(scheduler.Active()))
				if err := publisher.Publish(mqtt.ButtonEvent{
					Event:     event,
					KeepAlive: logic.StateOf(scheduler.Active()),
				}); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

			if a, ok := scheduler.Tick(t); ok {
				if err := sink.KeepAlive(a); err != nil {
					log.Printf("action error: %v", err)
				}
			}

			// Check for heartbeat
			if hbData := hb.Check(t, heartbeat, classifier.Counts()); hbData != nil {
				log.Printf("heartbeat: uptime=%v double_clicks=%d long_presses=%d keepalive_sent=%d",
					hbData.Uptime, hbData.Counts.DoubleClicks, hbData.Counts.LongPresses, scheduler.Sent())

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, classifier, scheduler, mqttStatus)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				updateTracker(tracker, classifier, scheduler, mqttStatus)
			}
		}
	}
}

// handleEvent dispatches the action bound to a classified event.
func handleEvent(event logic.Event, t time.Time, sink action.Sink, scheduler *logic.Scheduler) {
	switch event.Type {
	case logic.EventDoubleClick:
		if err := sink.TypeMacro(); err != nil {
			log.Printf("action error: %v", err)
		}
	case logic.EventLongPress:
		active := scheduler.Toggle(t)
		log.Printf("keep-alive %s", logic.StateOf(active))
		if err := sink.SetIndicator(active); err != nil {
			log.Printf("action error: %v", err)
		}
	}
}

func updateTracker(tracker *status.Tracker, classifier *logic.Classifier, scheduler *logic.Scheduler, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(classifier.Confirmed(), classifier.Counts())
	tracker.SetKeepAlive(status.KeepAlive{
		Active:  scheduler.Active(),
		NextDue: scheduler.NextDue(),
		Sent:    scheduler.Sent(),
	})
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
