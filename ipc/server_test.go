package ipc_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/ipc"
	"github.com/tailbits/halbridge/model"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"
)

func getEntry(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.TimeEntry, error) {
	if req.Param("id") == "0" {
		return nil, errors.New("time entry 0 does not exist")
	}
	return &dto.TimeEntry{
		ID:        842,
		SpentOn:   dto.NewDate(2024, time.March, 5),
		Hours:     1.5,
		Project:   dto.Link{ID: "12", Href: "/api/v3/projects/12"},
		User:      dto.Link{ID: "5", Href: "/api/v3/users/5"},
		CreatedAt: time.Date(2024, time.March, 5, 16, 2, 0, 0, time.UTC),
	}, nil
}

type fixture struct {
	client *ipc.Client
	addr   string
}

func start(t *testing.T, socket, addr string) fixture {
	t.Helper()

	log, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	ch := events.NewChannel(8)

	r := halbridge.NewRouter(halbridge.WithLogger(log), halbridge.WithEvents(ch), halbridge.WithMetrics(reg))
	halbridge.HandleGet(getEntry).
		Path("/time-entries/:id").
		WithOpID("time-entries", "get").
		Register(r)

	srv := ipc.NewServer(r, ipc.WithEvents(ch), ipc.WithGatherer(reg), ipc.WithLogger(log))

	ln, err := ipc.Listen(socket, addr)
	assert.NilError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NilError(t, <-done)
	})

	return fixture{client: ipc.NewClient(socket, ln.Addr().String()), addr: ln.Addr().String()}
}

func TestServer_Dispatch(t *testing.T) {
	f := start(t, "", "127.0.0.1:0")
	ctx := context.Background()

	resp, err := f.client.Do(ctx, halbridge.VerbGet, "/time-entries/842", nil)
	assert.NilError(t, err)
	assert.Equal(t, resp.Status, halbridge.StatusOK, resp.Error)
	_, err = uuid.Parse(resp.ID)
	assert.NilError(t, err)

	data := resp.Data.(map[string]any)
	assert.Equal(t, data["id"], float64(842))
	assert.Assert(t, data["spentOn"].(time.Time).Equal(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.Assert(t, data["createdAt"].(time.Time).Equal(time.Date(2024, time.March, 5, 16, 2, 0, 0, time.UTC)))

	resp, err = f.client.Do(ctx, halbridge.VerbGet, "/time-entries/0", nil)
	assert.NilError(t, err)
	assert.Equal(t, resp.Status, halbridge.StatusError)
	assert.Equal(t, resp.Error, "time entry 0 does not exist")

	resp, err = f.client.Do(ctx, halbridge.Verb("FETCH"), "/time-entries/842", nil)
	assert.NilError(t, err)
	assert.Equal(t, resp.Status, halbridge.StatusNotFound)

	resp, err = f.client.Do(ctx, halbridge.VerbGet, "/nowhere", nil)
	assert.NilError(t, err)
	assert.Equal(t, resp.Status, halbridge.StatusNotFound)
	assert.Equal(t, resp.Error, "no route for GET /nowhere")
}

func TestServer_Envelopes(t *testing.T) {
	f := start(t, "", "127.0.0.1:0")

	post := func(body string) (int, string) {
		resp, err := http.Post("http://"+f.addr+"/dispatch", "application/json", strings.NewReader(body))
		assert.NilError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		assert.NilError(t, err)
		return resp.StatusCode, string(raw)
	}

	status, body := post(`{"verb": "get", "path": "/time-entries/842"}`)
	assert.Equal(t, status, http.StatusOK)
	env, err := ipc.DecodeResponse([]byte(body))
	assert.NilError(t, err)
	assert.Assert(t, env.Ok())
	_, err = uuid.Parse(env.ID)
	assert.NilError(t, err, "missing ids are assigned")

	status, body = post(`{"id": "abc", "verb": "GET", "path": "/time-entries/842"}`)
	assert.Equal(t, status, http.StatusOK)
	assert.Assert(t, cmp.Contains(body, `"id":"abc"`))

	status, body = post(`{"verb": `)
	assert.Equal(t, status, http.StatusBadRequest)
	assert.Assert(t, cmp.Contains(body, "invalid request envelope"))
}

func TestServer_RejectsBrowserRequests(t *testing.T) {
	f := start(t, "", "127.0.0.1:0")
	envelope := `{"verb": "DELETE", "path": "/time-entries/842"}`

	send := func(contentType string, header http.Header, host string) int {
		req, err := http.NewRequest(http.MethodPost, "http://"+f.addr+"/dispatch", strings.NewReader(envelope))
		assert.NilError(t, err)
		req.Header.Set("Content-Type", contentType)
		for k, vs := range header {
			req.Header[k] = vs
		}
		if host != "" {
			req.Host = host
		}
		resp, err := http.DefaultClient.Do(req)
		assert.NilError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	// A cross-site form or no-cors fetch can only send simple content types.
	assert.Equal(t, send("text/plain", nil, ""), http.StatusUnsupportedMediaType)
	assert.Equal(t, send("application/x-www-form-urlencoded", nil, ""), http.StatusUnsupportedMediaType)
	assert.Equal(t, send("application/json", http.Header{"Origin": {"https://attacker.example"}}, ""), http.StatusForbidden)
	assert.Equal(t, send("application/json", nil, "attacker.example:7787"), http.StatusForbidden)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+f.addr+"/events", http.Header{"Origin": {"https://attacker.example"}})
	assert.Assert(t, err != nil)
	assert.Assert(t, resp != nil)
	assert.Equal(t, resp.StatusCode, http.StatusForbidden)

	metrics, err := http.Get("http://" + f.addr + "/metrics")
	assert.NilError(t, err)
	defer metrics.Body.Close()
	raw, err := io.ReadAll(metrics.Body)
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(string(raw), "halbridge_dispatch_total"), "no request reached the router")

	assert.Equal(t, send("application/json; charset=utf-8", nil, ""), http.StatusOK)
}

func TestServer_Events(t *testing.T) {
	f := start(t, "", "127.0.0.1:0")
	ctx := context.Background()

	out, stop, err := f.client.Events(ctx)
	assert.NilError(t, err)

	_, _, err = f.client.Events(ctx)
	assert.Assert(t, errors.Is(err, events.ErrAlreadySubscribed))

	_, err = f.client.Do(ctx, halbridge.VerbGet, "/time-entries/842", nil)
	assert.NilError(t, err)

	select {
	case st := <-out:
		assert.Equal(t, st.Kind, events.KindDispatch)
		assert.Equal(t, st.Path, "/time-entries/842")
		assert.Equal(t, st.Message, string(halbridge.StatusOK))
	case <-time.After(5 * time.Second):
		t.Fatal("no dispatch event")
	}

	stop()
	stop()
	for range out {
	}

	// The server detaches the subscriber once it sees the close.
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		_, again, err := f.client.Events(ctx)
		if err != nil {
			return poll.Continue("resubscribe: %v", err)
		}
		again()
		return poll.Success()
	}, poll.WithTimeout(5*time.Second))
}

func TestServer_Surface(t *testing.T) {
	f := start(t, "", "127.0.0.1:0")

	get := func(path string) string {
		resp, err := http.Get("http://" + f.addr + path)
		assert.NilError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, resp.StatusCode, http.StatusOK)
		raw, err := io.ReadAll(resp.Body)
		assert.NilError(t, err)
		return string(raw)
	}

	_, err := f.client.Do(context.Background(), halbridge.VerbGet, "/time-entries/842", nil)
	assert.NilError(t, err)

	metrics := get("/metrics")
	assert.Assert(t, cmp.Contains(metrics, `halbridge_dispatch_total{route="/time-entries/:id",status="Ok",verb="GET"} 1`))

	doc := get("/openapi.json")
	assert.Assert(t, cmp.Contains(doc, `"/time-entries/{id}"`))
	assert.Assert(t, cmp.Contains(doc, `"time-entries_get"`))
}

func TestServer_UnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "halbridge.sock")
	f := start(t, socket, "")

	resp, err := f.client.Do(context.Background(), halbridge.VerbGet, "/time-entries/842", nil)
	assert.NilError(t, err)
	assert.Assert(t, resp.Ok())
}

func TestListen_RejectsNonLoopback(t *testing.T) {
	_, err := ipc.Listen("", "0.0.0.0:0")
	assert.ErrorContains(t, err, "not a loopback address")

	_, err = ipc.Listen("", "example.com:8080")
	assert.ErrorContains(t, err, "not a loopback address")
}
