package feed

import (
	"net"
	"testing"

	"github.com/gyroflick/gyroflick/gmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIMULine(t *testing.T) {
	type testCase struct {
		name     string
		line     string
		wantKind byte
		wantTS   uint64
		wantVec  gmath.Vec3
		wantErr  bool
	}

	cases := []testCase{
		{
			name:     "gyro sample",
			line:     "g,1000000000,0.5,-0.25,3\n",
			wantKind: 'g',
			wantTS:   1_000_000_000,
			wantVec:  gmath.Vec3{X: 0.5, Y: -0.25, Z: 3},
		},
		{
			name:     "accel sample with spaces",
			line:     "a,2000000000, 0, -9.81, 0.1\r\n",
			wantKind: 'a',
			wantTS:   2_000_000_000,
			wantVec:  gmath.Vec3{Y: -9.81, Z: 0.1},
		},
		{name: "empty", line: "\n", wantErr: true},
		{name: "unknown kind", line: "m,1,2,3,4\n", wantErr: true},
		{name: "short record", line: "g,1,2\n", wantErr: true},
		{name: "garbage timestamp", line: "g,xyz,1,2,3\n", wantErr: true},
		{name: "garbage axis", line: "g,1,one,2,3\n", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ts, v, err := parseIMULine(tc.line)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantTS, ts)
			assert.Equal(t, tc.wantVec, v)
		})
	}
}

func TestSecureConnRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc, err := wrapConn(server, "hunter2")
	require.NoError(t, err)
	cc, err := wrapConn(client, "hunter2")
	require.NoError(t, err)

	payload := []byte("per-frame input data")
	go func() {
		_, _ = cc.Write(payload)
	}()

	buf := make([]byte, len(payload))
	n, err := sc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestSecureConnRejectsWrongKey(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc, err := wrapConn(server, "right")
	require.NoError(t, err)
	cc, err := wrapConn(client, "wrong")
	require.NoError(t, err)

	go func() {
		_, _ = cc.Write([]byte("frame"))
	}()

	buf := make([]byte, 16)
	_, err = sc.Read(buf)
	assert.Error(t, err)
}
