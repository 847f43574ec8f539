package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the device configuration, fixed for the run. Defaults come from
// constants.go; the environment overrides them at startup.
type Config struct {
	HomeLat float64
	HomeLon float64

	VisibleRadiusKm     float64
	SlightlyFarRadiusKm float64

	SamplePeriodMs    uint32
	LinkCheckPeriodMs uint32
	BlinkFastMs       uint32
	BlinkMediumMs     uint32

	EndpointURL string
	HTTPTimeout time.Duration

	WifiSSID string
	WifiPass string
	Iface    string

	// optional reporting sinks, empty = disabled
	MQTTBroker  string
	MQTTTopic   string
	DatabaseURL string
	SerialPort  string
}

// Load builds the config from defaults plus environment overrides and
// checks the threshold invariant.
func Load() (*Config, error) {
	c := &Config{
		VisibleRadiusKm:     VisibleRadiusKm,
		SlightlyFarRadiusKm: SlightlyFarRadiusKm,
		SamplePeriodMs:      SamplePeriodMs,
		LinkCheckPeriodMs:   LinkCheckPeriodMs,
		BlinkFastMs:         BlinkFastMs,
		BlinkMediumMs:       BlinkMediumMs,
		EndpointURL:         ISSEndpointURL,
		HTTPTimeout:         HTTPTimeout,
		Iface:               WirelessIface,
		MQTTTopic:           "issbeacon/sighting",
	}

	var err error
	if c.HomeLat, err = lookupFloat("HOME_LAT", 0); err != nil {
		return nil, err
	}
	if c.HomeLon, err = lookupFloat("HOME_LON", 0); err != nil {
		return nil, err
	}
	if c.VisibleRadiusKm, err = lookupFloat("VISIBLE_RADIUS_KM", c.VisibleRadiusKm); err != nil {
		return nil, err
	}
	if c.SlightlyFarRadiusKm, err = lookupFloat("SLIGHTLY_FAR_RADIUS_KM", c.SlightlyFarRadiusKm); err != nil {
		return nil, err
	}
	if c.SamplePeriodMs, err = lookupMillis("SAMPLE_PERIOD_MS", c.SamplePeriodMs); err != nil {
		return nil, err
	}
	if c.LinkCheckPeriodMs, err = lookupMillis("LINK_CHECK_PERIOD_MS", c.LinkCheckPeriodMs); err != nil {
		return nil, err
	}
	if c.BlinkFastMs, err = lookupMillis("BLINK_FAST_MS", c.BlinkFastMs); err != nil {
		return nil, err
	}
	if c.BlinkMediumMs, err = lookupMillis("BLINK_MEDIUM_MS", c.BlinkMediumMs); err != nil {
		return nil, err
	}

	c.EndpointURL = lookupString("ISS_ENDPOINT_URL", c.EndpointURL)
	c.Iface = lookupString("WIFI_IFACE", c.Iface)
	c.WifiSSID = lookupString("WIFI_SSID", "")
	c.WifiPass = lookupString("WIFI_PASS", "")
	c.MQTTBroker = lookupString("MQTTBROKER", "")
	c.MQTTTopic = lookupString("MQTTTOPIC", c.MQTTTopic)
	c.DatabaseURL = lookupString("DATABASE_URL", "")
	c.SerialPort = lookupString("SERIALDIAG", "")

	if c.VisibleRadiusKm <= 0 {
		return nil, fmt.Errorf("visible radius must be positive, got %v", c.VisibleRadiusKm)
	}
	if c.VisibleRadiusKm > c.SlightlyFarRadiusKm {
		return nil, fmt.Errorf("visible radius [%v] exceeds slightly-far radius [%v]",
			c.VisibleRadiusKm, c.SlightlyFarRadiusKm)
	}
	if c.BlinkFastMs == 0 || c.BlinkMediumMs == 0 {
		return nil, fmt.Errorf("blink periods must be non-zero")
	}
	return c, nil
}

func lookupString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func lookupFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%v is not a number [%v]", key, v)
	}
	return f, nil
}

func lookupMillis(key string, def uint32) (uint32, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%v is not a millisecond count [%v]", key, v)
	}
	return uint32(n), nil
}
