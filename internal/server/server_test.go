package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlogs/starlogs-go/internal/hub"
	"github.com/starlogs/starlogs-go/internal/session"
	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

const sampleLog = `<2025-10-15T07:31:19.238Z> [Notice] <Actor Death> CActor::Kill: 'PlayerOne' [111] in zone 'AEGS_Gladius_1234567890123' killed by 'PlayerTwo' [222] using 'rifle' [Class unknown] with damage type 'Bullet' from direction x: 0.1, y: 0.2, z: 0.3
`

type fixture struct {
	hub     *hub.Hub
	session *session.Session
	ts      *httptest.Server
	logPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "Game.log")
	require.NoError(t, os.WriteFile(logPath, []byte(sampleLog), 0o644))

	h := hub.New(hub.Options{}, nil)
	sess := session.New(session.Options{PollInterval: time.Hour}, h, nil)
	require.NoError(t, sess.Start(logPath, true))
	t.Cleanup(sess.Stop)

	srv := New(Options{ListenAddress: "127.0.0.1:0"}, sess, h, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &fixture{hub: h, session: sess, ts: ts, logPath: logPath}
}

// readSSE reads server-sent events until n data payloads have arrived.
func readSSE(t *testing.T, url string, n int) []map[string]any {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var out []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for len(out) < n && scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var msg map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg))
		out = append(out, msg)
	}
	return out
}

func TestEvents_HistoryReplay(t *testing.T) {
	f := newFixture(t)

	// Replay already published: 1 event, 1 raw line, 1 separator.
	msgs := readSSE(t, f.ts.URL+"/events", 3)
	require.Len(t, msgs, 3)

	assert.Equal(t, "event", msgs[0]["type"])
	ev := msgs[0]["event"].(map[string]any)
	assert.Equal(t, string(event.FpsPvpKill), ev["type"])
	assert.Equal(t, "PlayerOne", ev["victim"])

	assert.Equal(t, "log_line", msgs[1]["type"])
	assert.Equal(t, true, msgs[1]["has_event"])

	assert.Equal(t, "separator", msgs[2]["type"])
}

func TestEvents_IncludeFilter(t *testing.T) {
	f := newFixture(t)

	// The kill event is filtered out; raw line and separator still stream.
	msgs := readSSE(t, f.ts.URL+"/events?include=disconnect", 2)
	require.Len(t, msgs, 2)
	assert.Equal(t, "log_line", msgs[0]["type"])
	assert.Equal(t, "separator", msgs[1]["type"])
}

func TestEvents_UnknownFilterKind(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/events?include=warp_core_breach")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Stats struct {
			TotalEvents int              `json:"total_events"`
			ByKind      map[string]int64 `json:"events_by_type"`
			Running     bool             `json:"running"`
		} `json:"stats"`
		HistoryEvents int `json:"history_events"`
		HistoryLines  int `json:"history_lines"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 1, body.Stats.TotalEvents)
	assert.Equal(t, int64(1), body.Stats.ByKind["fps_pvp_kill"])
	assert.True(t, body.Stats.Running)
	assert.Equal(t, 1, body.HistoryEvents)
	assert.Equal(t, 2, body.HistoryLines, "raw line plus separator")
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/diagnostics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var diag struct {
		Running   bool   `json:"running"`
		LogPath   string `json:"log_path"`
		LogExists bool   `json:"log_exists"`
		LinesRead int64  `json:"lines_read"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&diag))

	assert.True(t, diag.Running)
	assert.True(t, diag.LogExists)
	assert.Equal(t, f.logPath, diag.LogPath)
	assert.Equal(t, int64(1), diag.LinesRead)
}

func TestReprocess(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.ts.URL+"/reprocess", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Lines  int    `json:"lines"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Lines)
}

func TestSwitchSource(t *testing.T) {
	f := newFixture(t)

	next := filepath.Join(t.TempDir(), "Other.log")
	require.NoError(t, os.WriteFile(next, []byte("<2025-10-15T08:00:00.000Z> disconnect\n"), 0o644))

	payload, _ := json.Marshal(map[string]string{"path": next})
	resp, err := http.Post(f.ts.URL+"/api/switch_source", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, next, f.session.Source())
}

func TestSwitchSource_BadRequests(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.ts.URL+"/api/switch_source", "application/json",
		strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(f.ts.URL+"/api/switch_source", "application/json",
		strings.NewReader(`{"path":""}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(f.ts.URL+"/api/switch_source", "application/json",
		strings.NewReader(`{"path":"/does/not/exist.log"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	assert.Contains(t, buf.String(), "starlogs_lines_processed_total")
}
