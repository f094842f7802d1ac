package trace_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gyroflick/gyroflick/feed"
	"github.com/gyroflick/gyroflick/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	frames := []feed.Frame{
		{TimestampNS: 1_000_000_000, MouseX: 3, Buttons: feed.ButtonGameFocus},
		{TimestampNS: 1_016_666_000, GyroY: 1.5, AccelY: -9.81},
		{TimestampNS: 1_033_332_000, LeftX: -0.5, RightY: 0.25, Buttons: feed.ButtonRecentre},
	}

	var buf bytes.Buffer
	w := trace.NewWriter(&buf)
	for _, f := range frames {
		require.NoError(t, w.Write(f))
	}
	require.NoError(t, w.Flush())

	r := trace.NewReader(&buf)
	var got []feed.Frame
	for {
		var f feed.Frame
		err := r.Read(&f)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, f)
	}
	assert.Equal(t, frames, got)
}

func TestReaderSkipsBlankLines(t *testing.T) {
	r := trace.NewReader(strings.NewReader("\n{\"timestampNs\":5}\n\n"))

	var v map[string]any
	require.NoError(t, r.Read(&v))
	assert.EqualValues(t, 5, v["timestampNs"])
	assert.Equal(t, io.EOF, r.Read(&v))
}

func TestReaderReportsBadLine(t *testing.T) {
	r := trace.NewReader(strings.NewReader("{\"timestampNs\":1}\nnot json\n"))

	var v map[string]any
	require.NoError(t, r.Read(&v))
	err := r.Read(&v)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
