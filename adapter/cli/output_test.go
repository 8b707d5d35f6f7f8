package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", FormatClock(25*time.Minute))
	assert.Equal(t, "01:05", FormatClock(65*time.Second))
	assert.Equal(t, "00:01", FormatClock(1400*time.Millisecond))
	assert.Equal(t, "00:00", FormatClock(-time.Second))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "42s", FormatElapsed(42*time.Second))
	assert.Equal(t, "3m 7s", FormatElapsed(3*time.Minute+7*time.Second))
	assert.Equal(t, "1h 0m 5s", FormatElapsed(time.Hour+5*time.Second))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "----------", ProgressBar(0, 10))
	assert.Equal(t, "=====-----", ProgressBar(0.5, 10))
	assert.Equal(t, "==========", ProgressBar(1.7, 10))
	assert.Equal(t, "----------", ProgressBar(-1, 10))
}

func TestHeading(t *testing.T) {
	var out bytes.Buffer
	Heading(&out, "FOCUS")
	assert.Contains(t, out.String(), "  FOCUS\n")
}
