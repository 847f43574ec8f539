package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"sync"
	"time"

	"github.com/gr-butler/issbeacon/buffer"
	"github.com/gr-butler/issbeacon/clock"
	"github.com/gr-butler/issbeacon/diag"
	"github.com/gr-butler/issbeacon/env"
	"github.com/gr-butler/issbeacon/led"
	"github.com/gr-butler/issbeacon/link"
	"github.com/gr-butler/issbeacon/proximity"
	"github.com/gr-butler/issbeacon/sampler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/host/v3"
)

const version = "ISS-Beacon-1.0.2"

type beacon struct {
	cfg    *env.Config
	clk    clock.Clock
	panel  *led.Panel
	link   *link.Supervisor
	source sampler.Source

	sched schedule

	// snapshot state, written by the scheduler loop, read by the web handler
	lock      sync.Mutex
	mode      proximity.Mode
	last      sampler.Sample
	distances *buffer.DistanceBuffer
	lastError string

	sightings chan sighting
}

type webdata struct {
	TimeNow     string  `json:"time"`
	Mode        string  `json:"mode"`
	LinkUp      bool    `json:"link_up"`
	ISSLat      float64 `json:"iss_lat"`
	ISSLon      float64 `json:"iss_lon"`
	DistanceKm  float64 `json:"distance_km"`
	ClosestKm   float64 `json:"closest_km"`
	AvgKm       float64 `json:"avg_km"`
	SampleCount int     `json:"sample_count"`
	LastError   string  `json:"last_error,omitempty"`
}

var Prom_distanceKm = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "iss_distance_km",
		Help: "Great-circle distance from home to the ISS sub-satellite point",
	},
)

var Prom_closestKm = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "iss_closest_km",
		Help: "Closest approach over the recent sample window",
	},
)

var Prom_mode = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "beacon_mode",
		Help: "Current lamp mode (0=off 1=near 2=approaching 3=far)",
	},
)

var Prom_linkUp = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "link_up",
		Help: "Whether the wireless link is associated",
	},
)

var Prom_sampleErrors = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sample_errors_total",
		Help: "Position samples that failed and were skipped",
	},
)

// called by prometheus
func init() {
	logger.Infof("%v: Initialize prometheus...", time.Now().Format(time.RFC822))
	prometheus.MustRegister(
		Prom_distanceKm,
		Prom_closestKm,
		Prom_mode,
		Prom_linkUp,
		Prom_sampleErrors)
}

func newBeacon(cfg *env.Config, clk clock.Clock, panel *led.Panel, sup *link.Supervisor, src sampler.Source) *beacon {
	b := &beacon{
		cfg:       cfg,
		clk:       clk,
		panel:     panel,
		link:      sup,
		source:    src,
		mode:      proximity.Off,
		distances: buffer.NewDistanceBuffer(env.DistanceHistorySize),
		sightings: make(chan sighting, 16),
	}
	now := clk.Millis()
	// arm both deadlines so the first iteration fires them
	b.sched.lastLinkCheck = now - cfg.LinkCheckPeriodMs
	b.sched.lastSample = now - cfg.SamplePeriodMs
	return b
}

func main() {
	logger.Infof("Starting ISS beacon [%v]", version)

	testMode := flag.Bool("test", false, "test mode, does not publish sightings")
	flag.Parse()

	if *testMode {
		logger.Info("TEST MODE")
	}

	cfg, err := env.Load()
	if err != nil {
		logger.Errorf("Bad configuration!! [%v]", err)
		logger.Exit(1)
	}

	if cfg.SerialPort != "" {
		hook, err := diag.Open(cfg.SerialPort)
		if err != nil {
			logger.Errorf("Failed to open serial diagnostics on [%v]: [%v]", cfg.SerialPort, err)
		} else {
			logger.AddHook(hook)
			logger.Infof("Serial diagnostics on [%v]", cfg.SerialPort)
		}
	}

	logger.Info("Initialize GPIO...")
	if _, err := host.Init(); err != nil {
		logger.Errorf("Failed to init GPIO host!! [%v]", err)
		logger.Exit(1)
	}

	panel := led.NewPanel(
		led.ByName("red", env.RedLedPin),
		led.ByName("green", env.GreenLedPin),
		led.ByName("blue", env.BlueLedPin),
		cfg.BlinkFastMs,
		cfg.BlinkMediumMs,
	)

	radio := link.NewNMRadio(cfg.Iface, cfg.WifiSSID, cfg.WifiPass)
	clk := clock.NewSystem()
	sup := link.NewSupervisor(radio, clk)
	src := sampler.NewHTTPSampler(cfg.EndpointURL, cfg.HTTPTimeout)

	b := newBeacon(cfg, clk, panel, sup, src)

	if !(*testMode) {
		go b.reporter()
	}

	go b.runScheduler()

	// status web service
	http.HandleFunc("/", b.handler)
	http.Handle("/metrics", promhttp.Handler())
	logger.Info("Starting webservice...")
	logger.Fatal(http.ListenAndServe(":80", nil))
}

func (b *beacon) handler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")

	b.lock.Lock()
	avg, closest, _ := b.distances.GetAverageMinMax()
	wd := webdata{
		TimeNow:     time.Now().Format(time.RFC822),
		Mode:        b.mode.String(),
		LinkUp:      b.link.Up(),
		ISSLat:      b.last.Lat,
		ISSLon:      b.last.Lon,
		DistanceKm:  b.distances.Last(),
		ClosestKm:   float64(closest),
		AvgKm:       float64(avg),
		SampleCount: b.distances.Count(),
		LastError:   b.lastError,
	}
	b.lock.Unlock()

	js, err := json.Marshal(wd)
	if err != nil {
		logger.Errorf("JSON error [%v]", err)
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = rw.Write(js) // not much we can do if this fails
}
