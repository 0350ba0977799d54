package netio

import (
	"net"
	"testing"

	"github.com/code-100-precent/lingshard/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameAcrossShortWrites(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	full := []byte("*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n")
	go func() {
		// Dribble the frame out in small chunks to exercise the
		// incomplete -> refill -> retry loop.
		for i := 0; i < len(full); i += 3 {
			end := i + 3
			if end > len(full) {
				end = len(full)
			}
			client.Write(full[i:end])
		}
	}()

	r := NewReader(server)
	f, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, resp.KindArray, f.Kind)
	require.Len(t, f.Array, 2)
	assert.Equal(t, "GET", string(f.Array[0].Bulk))
	assert.Equal(t, "hello", string(f.Array[1].Bulk))
}

func TestWriteFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		w := NewWriter(server)
		w.WriteFrame(resp.Simple("PONG"))
		close(done)
	}()

	r := NewReader(client)
	f, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, resp.KindSimple, f.Kind)
	assert.Equal(t, "PONG", string(f.Str))
	<-done
}

func TestTakeBufferedCarriesResidualBytes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write([]byte("+OK\r\n+NEXT\r\n"))

	r := NewReader(server)
	f, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(f.Str))

	residual := r.TakeBuffered()
	r2 := NewReaderWithBuffered(server, residual)
	f2, err := r2.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "NEXT", string(f2.Str))
}
