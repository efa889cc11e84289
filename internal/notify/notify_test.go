package notify_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridecast/ridecast/internal/notify"
)

func TestCompose_TemplateFillsEmptyParts(t *testing.T) {
	msg := notify.Compose(notify.KindSystemStart, notify.Message{
		Fields: []notify.Field{{Name: "Interval", Value: "5m0s"}},
	})

	assert.Equal(t, "Ridecast Started", msg.Title)
	assert.NotEmpty(t, msg.Description)
	assert.Equal(t, "#0dcaf0", msg.Color)
	assert.False(t, msg.Mention)
	assert.Len(t, msg.Fields, 1)
}

func TestCompose_MessageOverridesTemplate(t *testing.T) {
	msg := notify.Compose(notify.KindBestDeparture, notify.Message{
		Title:       "Custom Title",
		Description: "Custom description",
	})

	assert.Equal(t, "Custom Title", msg.Title)
	assert.Equal(t, "Custom description", msg.Description)
	// Mention policy always comes from the template.
	assert.True(t, msg.Mention)
}

func TestCompose_MentionPolicyPerKind(t *testing.T) {
	assert.True(t, notify.Compose(notify.KindNoDeparture, notify.Message{}).Mention)
	assert.True(t, notify.Compose(notify.KindNoRoundTrip, notify.Message{}).Mention)
	assert.True(t, notify.Compose(notify.KindRoundTrip, notify.Message{}).Mention)
	assert.False(t, notify.Compose(notify.KindUpdateAvailable, notify.Message{}).Mention)
	assert.False(t, notify.Compose(notify.KindForecastAPIError, notify.Message{}).Mention)
}

func TestCompose_UnknownKindPassesThrough(t *testing.T) {
	msg := notify.Compose(notify.Kind("nonsense"), notify.Message{Title: "T"})
	assert.Equal(t, "T", msg.Title)
	assert.Empty(t, msg.Color)
}

func TestSmartTruncate_ShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short", notify.SmartTruncate("short", 10))
	assert.Equal(t, "exact", notify.SmartTruncate("exact", 5))
}

func TestSmartTruncate_CutsAtWordBoundary(t *testing.T) {
	got := notify.SmartTruncate("the quick brown fox jumps", 16)
	assert.Equal(t, "the quick brown...", got)
}

func TestSmartTruncate_NoWhitespaceCutsHard(t *testing.T) {
	got := notify.SmartTruncate(strings.Repeat("a", 30), 10)
	assert.Equal(t, strings.Repeat("a", 10)+"...", got)
}

func TestSmartTruncate_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("é", 20)
	got := notify.SmartTruncate(text, 10)
	assert.Equal(t, strings.Repeat("é", 10)+"...", got)
}
