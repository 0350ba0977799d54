package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParseAgreement(t *testing.T) {
	inputs := [][]byte{
		[]byte("+OK\r\n"),
		[]byte("-ERR bad\r\n"),
		[]byte(":1000\r\n"),
		[]byte("$5\r\nhello\r\n"),
		[]byte("$0\r\n\r\n"),
		[]byte("$-1\r\n"),
		[]byte("*0\r\n"),
		[]byte("*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n"),
		[]byte("%2\r\n+first\r\n:1\r\n+second\r\n:2\r\n"),
	}
	for _, in := range inputs {
		n, err := Check(in)
		require.NoError(t, err, "check(%q)", in)
		assert.Equal(t, len(in), n)

		f, n2, err := Parse(in)
		require.NoError(t, err, "parse(%q)", in)
		assert.Equal(t, n, n2)
		_ = f
	}
}

func TestRoundTripEncodeDecode(t *testing.T) {
	frames := []Frame{
		Simple("PONG"),
		Err("ERR unknown command 'FOO'"),
		Integer(42),
		Integer(-7),
		Bulk([]byte("hello world")),
		Bulk([]byte("")),
		Null(),
		Array([]Frame{Bulk([]byte("GET")), Bulk([]byte("key"))}),
		Array(nil),
	}
	for _, f := range frames {
		buf := Encode(nil, f)
		got, n, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assertFrameEqual(t, f, got)
	}
}

func assertFrameEqual(t *testing.T, want, got Frame) {
	t.Helper()
	require.Equal(t, want.Kind, got.Kind)
	switch want.Kind {
	case KindSimple, KindError:
		assert.Equal(t, string(want.Str), string(got.Str))
	case KindInt:
		assert.Equal(t, want.Int, got.Int)
	case KindBulk:
		assert.Equal(t, string(want.Bulk), string(got.Bulk))
	case KindArray:
		require.Len(t, got.Array, len(want.Array))
		for i := range want.Array {
			assertFrameEqual(t, want.Array[i], got.Array[i])
		}
	}
}

// TestIncompleteMonotonic checks that truncating a complete frame's
// wire bytes to any strict prefix always reports Incomplete, never a
// ProtocolError or a false success - the defining property of check().
func TestIncompleteMonotonic(t *testing.T) {
	full := []byte("*2\r\n$3\r\nSET\r\n$5\r\nhello\r\n")
	for i := 1; i < len(full); i++ {
		_, err := Check(full[:i])
		assert.ErrorIs(t, err, ErrIncomplete, "prefix of length %d", i)
	}
	n, err := Check(full)
	require.NoError(t, err)
	assert.Equal(t, len(full), n)
}

func TestCheckRejectsBadTypeByte(t *testing.T) {
	_, err := Check([]byte("X1\r\n"))
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestCheckDoesNotOverrunOnTrailingData(t *testing.T) {
	buf := []byte("+OK\r\n+EXTRA\r\n")
	n, err := Check(buf)
	require.NoError(t, err)
	assert.Equal(t, len("+OK\r\n"), n)
}
