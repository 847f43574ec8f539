package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, VisibleRadiusKm, c.VisibleRadiusKm)
	assert.Equal(t, SlightlyFarRadiusKm, c.SlightlyFarRadiusKm)
	assert.Equal(t, ISSEndpointURL, c.EndpointURL)
	assert.Equal(t, SamplePeriodMs, c.SamplePeriodMs)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOME_LAT", "52.52")
	t.Setenv("HOME_LON", "13.405")
	t.Setenv("VISIBLE_RADIUS_KM", "250")
	t.Setenv("SAMPLE_PERIOD_MS", "15000")

	c, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 52.52, c.HomeLat)
	assert.Equal(t, 13.405, c.HomeLon)
	assert.Equal(t, 250.0, c.VisibleRadiusKm)
	assert.Equal(t, uint32(15000), c.SamplePeriodMs)
}

func TestLoadRejectsInvertedRadii(t *testing.T) {
	t.Setenv("VISIBLE_RADIUS_KM", "2000")
	t.Setenv("SLIGHTLY_FAR_RADIUS_KM", "1000")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("HOME_LAT", "fifty-two")
	_, err := Load()
	assert.Error(t, err)
}
