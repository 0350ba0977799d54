package executor

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/code-100-precent/lingshard/hashslot"
	"github.com/code-100-precent/lingshard/mesh"
	"github.com/code-100-precent/lingshard/store"
	"github.com/code-100-precent/lingshard/supervisor"
	"github.com/stretchr/testify/require"
)

// testCluster spins up n executors, each with its own loopback
// listener, sharing one Storage/Mesh/Supervisor - exactly the process
// topology main() builds, minus SO_REUSEPORT (tests use distinct
// ports so there is no ambiguity about which listener a dial hits).
type testCluster struct {
	addrs   []string
	storage *store.Storage
}

func startCluster(t *testing.T, n int) *testCluster {
	t.Helper()
	storage := store.New(n)
	m := mesh.New(n)
	dialer := mesh.NewDialer(storage, m)
	sup := supervisor.New()

	addrs := make([]string, n)
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs[i] = l.Addr().String()
		ex := New(i, storage, dialer, sup, "test-node")
		go ex.Run(l)
	}
	return &testCluster{addrs: addrs, storage: storage}
}

// keyForShard finds a key string whose hash slot belongs to the given
// shard index, by brute-force search over small integers - simplest
// way to target a specific executor without depending on exact CRC16
// output values.
func keyForShard(t *testing.T, storage *store.Storage, shardIndex int) string {
	t.Helper()
	for i := 0; i < 100000; i++ {
		k := fmt.Sprintf("k%d", i)
		if storage.ShardIndexForKey(k) == shardIndex {
			return k
		}
	}
	t.Fatalf("could not find a key routing to shard %d", shardIndex)
	return ""
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn, bufio.NewReader(conn)
}

func encodeArray(parts ...string) string {
	buf := fmt.Sprintf("*%d\r\n", len(parts))
	for _, p := range parts {
		buf += fmt.Sprintf("$%d\r\n%s\r\n", len(p), p)
	}
	return buf
}

func sendArray(t *testing.T, conn net.Conn, parts ...string) {
	t.Helper()
	_, err := conn.Write([]byte(encodeArray(parts...)))
	require.NoError(t, err)
}

// sendPipelined writes several commands in a single Write call, the way
// a real client pipelines requests without waiting for replies.
func sendPipelined(t *testing.T, conn net.Conn, commands [][]string) {
	t.Helper()
	var buf string
	for _, cmd := range commands {
		buf += encodeArray(cmd...)
	}
	_, err := conn.Write([]byte(buf))
	require.NoError(t, err)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestScenarioPing(t *testing.T) {
	c := startCluster(t, 2)
	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendArray(t, conn, "PING")
	require.Equal(t, "+PONG\r\n", readLine(t, r))
}

func TestScenarioPingWithMessage(t *testing.T) {
	c := startCluster(t, 2)
	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendArray(t, conn, "PING", "hello")
	require.Equal(t, "$5\r\n", readLine(t, r))
	require.Equal(t, "hello\r\n", readLine(t, r))
}

func TestScenarioSetThenGetSameExecutor(t *testing.T) {
	c := startCluster(t, 2)
	key := keyForShard(t, c.storage, 0)
	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendArray(t, conn, "SET", key, "v1")
	require.Equal(t, "+OK\r\n", readLine(t, r))

	sendArray(t, conn, "GET", key)
	require.Equal(t, "$2\r\n", readLine(t, r))
	require.Equal(t, "v1\r\n", readLine(t, r))
}

func TestScenarioGetMissing(t *testing.T) {
	c := startCluster(t, 2)
	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendArray(t, conn, "GET", "definitely-not-set")
	require.Equal(t, "$-1\r\n", readLine(t, r))
}

func TestScenarioClientIDMonotonic(t *testing.T) {
	c := startCluster(t, 1)
	conn1, r1 := dial(t, c.addrs[0])
	defer conn1.Close()
	conn2, r2 := dial(t, c.addrs[0])
	defer conn2.Close()

	var id1, id2 uint64
	sendArray(t, conn1, "CLIENT", "ID")
	_, err := fmt.Sscanf(readLine(t, r1), ":%d", &id1)
	require.NoError(t, err)

	sendArray(t, conn2, "CLIENT", "ID")
	_, err = fmt.Sscanf(readLine(t, r2), ":%d", &id2)
	require.NoError(t, err)

	require.Greater(t, id2, id1)
}

func TestScenarioUnknownCommandThenStillUsable(t *testing.T) {
	c := startCluster(t, 2)
	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendArray(t, conn, "FROBNICATE", "x")
	errLine := readLine(t, r)
	require.Contains(t, errLine, "unknown command")

	sendArray(t, conn, "PING")
	require.Equal(t, "+PONG\r\n", readLine(t, r))
}

// TestScenarioCrossExecutorMigration connects to executor 0's
// listener, then issues a SET for a key that hashes to executor 1's
// shard. The connection must migrate transparently: the client never
// reconnects, and the reply still arrives on the same socket.
func TestScenarioCrossExecutorMigration(t *testing.T) {
	c := startCluster(t, 2)
	remoteKey := keyForShard(t, c.storage, 1)
	localKey := keyForShard(t, c.storage, 0)

	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	// A local command first, to prove the connection works before
	// migration.
	sendArray(t, conn, "SET", localKey, "local-value")
	require.Equal(t, "+OK\r\n", readLine(t, r))

	// This key belongs to executor 1; the command must still succeed
	// over the same connection.
	sendArray(t, conn, "SET", remoteKey, "remote-value")
	require.Equal(t, "+OK\r\n", readLine(t, r))

	sendArray(t, conn, "GET", remoteKey)
	require.Equal(t, fmt.Sprintf("$%d\r\n", len("remote-value")), readLine(t, r))
	require.Equal(t, "remote-value\r\n", readLine(t, r))

	// The connection must still be usable for the original shard's
	// keys after migrating away and back.
	sendArray(t, conn, "GET", localKey)
	require.Equal(t, fmt.Sprintf("$%d\r\n", len("local-value")), readLine(t, r))
	require.Equal(t, "local-value\r\n", readLine(t, r))
}

// TestScenarioMigrationPreservesPipelinedFrames pipelines a command
// that triggers migration together with commands that follow it in the
// same write, so ingest is likely to have already parsed all of them
// off the wire before apply acts on the first one. None of the
// following commands may be lost by the migration.
func TestScenarioMigrationPreservesPipelinedFrames(t *testing.T) {
	c := startCluster(t, 2)
	remoteKey := keyForShard(t, c.storage, 1)

	conn, r := dial(t, c.addrs[0])
	defer conn.Close()

	sendPipelined(t, conn, [][]string{
		{"SET", remoteKey, "v1"},
		{"GET", remoteKey},
		{"PING"},
	})

	require.Equal(t, "+OK\r\n", readLine(t, r))
	require.Equal(t, "$2\r\n", readLine(t, r))
	require.Equal(t, "v1\r\n", readLine(t, r))
	require.Equal(t, "+PONG\r\n", readLine(t, r))
}
