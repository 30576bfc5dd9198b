package wearable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// line appends the NMEA checksum to a sentence body.
func line(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

func TestParseMotionSentence(t *testing.T) {
	r := NewReader(strings.NewReader(
		line("PJMP,12.340,0.02,-0.03,-0.99,0.10,0.00,0.85") + "\r\n",
	))

	tick, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, tick.Motion)
	assert.Nil(t, tick.Altitude)

	s := *tick.Motion
	assert.Equal(t, 12.34, s.T)
	assert.Equal(t, 0.02, s.Gx)
	assert.Equal(t, -0.99, s.Gz)
	assert.Equal(t, 0.85, s.Az)
}

func TestParseAltitudeSentence(t *testing.T) {
	r := NewReader(strings.NewReader(
		line("PALT,12.350,0.42") + "\r\n",
	))

	tick, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, tick.Altitude)
	assert.Equal(t, 0.42, tick.Altitude.Meters)
	assert.Equal(t, 12.35, tick.Altitude.T)
}

func TestReaderSkipsGarbageAndForeignSentences(t *testing.T) {
	stream := strings.Join([]string{
		"",
		"noise without a dollar sign",
		"$PJMP,broken,fields*00", // bad checksum
		line("GPRMC,081836,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E"),
		line("PALT,1.000,0.15"),
	}, "\r\n") + "\r\n"

	r := NewReader(strings.NewReader(stream))

	tick, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, tick.Altitude, "everything before the PALT line is skipped")

	_, err = r.Next()
	assert.ErrorIs(t, err, motion.ErrClosed)
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	assert.ErrorIs(t, err, motion.ErrClosed)
}
