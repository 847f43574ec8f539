package main

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gr-butler/issbeacon/db/postgres"
	"github.com/gr-butler/issbeacon/proximity"

	logger "github.com/sirupsen/logrus"
)

// sighting is one classified sample handed off from the scheduler. The
// channel hand-off is non-blocking on the scheduler side; if the reporter
// falls behind, sightings are dropped rather than stalling the lamps.
type sighting struct {
	At         time.Time
	Lat        float64
	Lon        float64
	DistanceKm float64
	Mode       proximity.Mode
}

type sightingPayload struct {
	Time       string  `json:"time"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
	Mode       string  `json:"mode"`
}

// reporter is called as a go routine. It drains the sighting channel and
// publishes to whichever sinks are configured: an MQTT broker, a postgres
// history table, or both. With neither configured it exits immediately.
func (b *beacon) reporter() {
	var client mqtt.Client
	if b.cfg.MQTTBroker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(b.cfg.MQTTBroker).
			SetClientID("issbeacon").
			SetAutoReconnect(true).
			SetConnectRetry(true)
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Errorf("Failed to connect to MQTT broker [%v]", token.Error())
			client = nil
		} else {
			logger.Infof("Publishing sightings to [%v] topic [%v]", b.cfg.MQTTBroker, b.cfg.MQTTTopic)
		}
	}

	var store *postgres.Store
	if b.cfg.DatabaseURL != "" {
		openCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		s, err := postgres.Open(openCtx, b.cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Errorf("Failed to open sighting db [%v]", err)
		} else {
			logger.Info("Saving sightings to db")
			store = s
		}
	}

	if client == nil && store == nil {
		logger.Info("No reporting sinks configured")
		return
	}

	for s := range b.sightings {
		if client != nil {
			payload, err := json.Marshal(sightingPayload{
				Time:       s.At.Format(time.RFC3339),
				Lat:        s.Lat,
				Lon:        s.Lon,
				DistanceKm: s.DistanceKm,
				Mode:       s.Mode.String(),
			})
			if err == nil {
				client.Publish(b.cfg.MQTTTopic, 0, false, payload)
			}
		}
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			err := store.WriteSighting(ctx, postgres.WriteSightingParams{
				ObservedAt: s.At,
				Latitude:   s.Lat,
				Longitude:  s.Lon,
				DistanceKm: s.DistanceKm,
				Mode:       s.Mode.String(),
			})
			cancel()
			if err != nil {
				logger.Errorf("Failed to write sighting to db [%v]", err)
			}
		}
	}
}
