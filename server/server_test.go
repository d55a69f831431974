package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nstehr/neuroclick/ipc"
	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/session"
	"github.com/nstehr/neuroclick/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*session.Session, *httptest.Server) {
	t.Helper()
	sess := session.New(context.Background(), storage.NewMemoryStore())
	srv := New("", sess)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().CloseAll()
		ts.Close()
	})
	return sess, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	return ws
}

// readUntil reads envelopes until one of msgType satisfies match.
func readUntil(t *testing.T, ws *websocket.Conn, msgType string, match func(ipc.Envelope) bool) ipc.Envelope {
	t.Helper()
	for {
		var env ipc.Envelope
		require.NoError(t, ws.ReadJSON(&env))
		if env.Type == msgType && match(env) {
			return env
		}
	}
}

func stateWith(t *testing.T, pred func(model.View) bool) func(ipc.Envelope) bool {
	return func(env ipc.Envelope) bool {
		var v model.View
		require.NoError(t, env.Decode(&v))
		return pred(v)
	}
}

func anyEnv(ipc.Envelope) bool { return true }

func TestConnectSendsState(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dial(t, ts)

	env := readUntil(t, ws, ipc.TypeState, anyEnv)
	var v model.View
	require.NoError(t, env.Decode(&v))
	assert.Equal(t, model.DefaultAutoClickRate, v.AutoClickRate)
	assert.Equal(t, int64(500), v.UpgradeCost)
}

func TestClickBroadcastsToAllClients(t *testing.T) {
	sess, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	readUntil(t, a, ipc.TypeState, anyEnv)
	readUntil(t, b, ipc.TypeState, anyEnv)

	require.NoError(t, a.WriteJSON(ipc.Envelope{Type: ipc.TypeClick}))

	clicked := stateWith(t, func(v model.View) bool { return v.Clicks == 1 })
	readUntil(t, a, ipc.TypeState, clicked)
	readUntil(t, b, ipc.TypeState, clicked)
	assert.Equal(t, int64(1), sess.Snapshot().Clicks)
}

func TestAddRuleOverWebsocket(t *testing.T) {
	sess, ts := newTestServer(t)
	ws := dial(t, ts)

	env, err := ipc.NewEnvelope(ipc.TypeAddRule, ipc.AddRuleCommand{
		Field: "dataPoints", Operator: ">=", Threshold: 100, Action: "train",
	})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(env))
	readUntil(t, ws, ipc.TypeState, stateWith(t, func(v model.View) bool { return len(v.Rules) == 1 }))

	got := sess.Rules()
	require.Len(t, got, 1)
	assert.Equal(t, model.FieldDataPoints, got[0].Field)
	assert.Equal(t, model.ActionTrain, got[0].Action)

	bad, err := ipc.NewEnvelope(ipc.TypeAddRule, ipc.AddRuleCommand{
		Field: "gold", Operator: ">=", Threshold: 1, Action: "train",
	})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(bad))
	errEnv := readUntil(t, ws, ipc.TypeError, anyEnv)
	var msg ipc.ErrorMessage
	require.NoError(t, errEnv.Decode(&msg))
	assert.Contains(t, msg.Message, "invalid rule")
}

func TestExportImportOverWebsocket(t *testing.T) {
	sess, ts := newTestServer(t)
	ws := dial(t, ts)

	blob := `{"clicks":42,"dataPoints":0,"efficiency":1,"autoClickRate":1000,"upgradeLevel":0,"rules":[]}`
	env, err := ipc.NewEnvelope(ipc.TypeImport, ipc.ImportCommand{Blob: blob})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(env))
	readUntil(t, ws, ipc.TypeState, stateWith(t, func(v model.View) bool { return v.Clicks == 42 }))
	assert.Equal(t, int64(42), sess.Snapshot().Clicks)

	require.NoError(t, ws.WriteJSON(ipc.Envelope{Type: ipc.TypeExport}))
	exp := readUntil(t, ws, ipc.TypeExport, anyEnv)
	var msg ipc.ExportMessage
	require.NoError(t, exp.Decode(&msg))
	assert.Equal(t, blob, msg.Blob)
}

func TestHealthzAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "neuroclick_clicks")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	sess := session.New(context.Background(), storage.NewMemoryStore())
	srv := New("", sess)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
