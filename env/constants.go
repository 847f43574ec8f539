package env

import "time"

const (
	// Lamp pins, active high. Chosen clear of the I2C, SPI and UART pins so
	// the beacon can share a header with other hats.
	RedLedPin   = "GPIO17"
	GreenLedPin = "GPIO27"
	BlueLedPin  = "GPIO22"

	WirelessIface = "wlan0"

	ISSEndpointURL = "http://api.open-notify.org/iss-now.json"

	// Distance thresholds (km)
	VisibleRadiusKm     = 500.0
	SlightlyFarRadiusKm = 1000.0

	// Timing defaults
	SamplePeriodMs    uint32 = 30000 // fetch ISS position every 30 seconds
	LinkCheckPeriodMs uint32 = 5000  // check the link every 5 seconds
	BlinkFastMs       uint32 = 200
	BlinkMediumMs     uint32 = 500

	HTTPTimeout = time.Second * 10

	// Ring size for the distance history, one entry per sample.
	DistanceHistorySize = 120
)
