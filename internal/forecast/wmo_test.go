package forecast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridecast/ridecast/internal/forecast"
)

func TestDefaultBannedCodes(t *testing.T) {
	banned := forecast.DefaultBannedCodes()

	for _, c := range []forecast.Code{
		forecast.CodeFog,
		forecast.CodeRainHeavy,
		forecast.CodeFreezingRainLight,
		forecast.CodeThunderstormHeavyHail,
	} {
		_, ok := banned[c]
		assert.True(t, ok, "code %d should be banned", c)
	}

	for _, c := range []forecast.Code{
		forecast.CodeClearSky,
		forecast.CodeRainSlight,
		forecast.CodeShowersSlight,
	} {
		_, ok := banned[c]
		assert.False(t, ok, "code %d should be rideable", c)
	}
}

func TestCodeDescribe(t *testing.T) {
	assert.Equal(t, "Clear sky", forecast.CodeClearSky.Describe("en"))
	assert.Equal(t, "Ciel dégagé", forecast.CodeClearSky.Describe("fr"))

	// Regional variants match their base language.
	assert.Equal(t, "Ciel dégagé", forecast.CodeClearSky.Describe("fr-BE"))
	assert.Equal(t, "Clear sky", forecast.CodeClearSky.Describe("en-US"))

	// Unsupported locales fall back to English.
	assert.Equal(t, "Clear sky", forecast.CodeClearSky.Describe("nl-NL"))
	assert.Equal(t, "Clear sky", forecast.CodeClearSky.Describe(""))

	assert.Equal(t, "Unknown", forecast.Code(42).Describe("en"))
}

func TestCodeEmoji(t *testing.T) {
	assert.Equal(t, "☀️", forecast.CodeClearSky.Emoji())
	assert.Equal(t, "⛈️", forecast.CodeThunderstorm.Emoji())
	assert.Equal(t, "❓", forecast.Code(42).Emoji())
}
