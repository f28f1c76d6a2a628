package halbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/model"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func quietRouter(opts ...halbridge.RouterOption) *halbridge.Router {
	log, _ := test.NewNullLogger()
	return halbridge.NewRouter(append([]halbridge.RouterOption{halbridge.WithLogger(log)}, opts...)...)
}

func echo(name string) halbridge.HandlerFunc {
	return func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		return halbridge.OK(name), nil
	}
}

func dispatch(t *testing.T, r *halbridge.Router, verb halbridge.Verb, path string) *halbridge.Response {
	t.Helper()
	return r.Dispatch(context.Background(), &halbridge.Request{Verb: verb, Path: path})
}

func TestDispatch_InvokesMatchingHandler(t *testing.T) {
	r := quietRouter()
	r.MustRegister(halbridge.VerbGet, "/projects", echo("list"))
	r.MustRegister(halbridge.VerbPost, "/projects", echo("create"))
	r.MustRegister(halbridge.VerbGet, "/projects/:id", echo("get"))

	resp := dispatch(t, r, halbridge.VerbPost, "/projects")
	assert.Equal(t, resp.Status, halbridge.StatusOK)
	assert.Equal(t, resp.Data, "create")

	resp = dispatch(t, r, halbridge.VerbGet, "/projects/12")
	assert.Equal(t, resp.Data, "get")

	resp = dispatch(t, r, halbridge.VerbGet, "/projects/")
	assert.Equal(t, resp.Data, "list")
}

func TestDispatch_NotFound(t *testing.T) {
	r := quietRouter()
	called := false
	r.MustRegister(halbridge.VerbGet, "/projects", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		called = true
		return halbridge.OK(nil), nil
	})

	for _, tc := range []struct {
		verb halbridge.Verb
		path string
	}{
		{halbridge.VerbGet, "/unknown"},
		{halbridge.VerbDelete, "/projects"},
		{halbridge.VerbGet, "/projects/1/extra"},
	} {
		resp := dispatch(t, r, tc.verb, tc.path)
		assert.Equal(t, resp.Status, halbridge.StatusNotFound, "%s %s", tc.verb, tc.path)
		assert.Assert(t, resp.Error != "")
	}
	assert.Assert(t, !called)
}

func TestDispatch_FirstMatchWins(t *testing.T) {
	r := quietRouter()
	r.MustRegister(halbridge.VerbGet, "/projects/:id", echo("by-id"))
	r.MustRegister(halbridge.VerbGet, "/projects/special", echo("special"))

	resp := dispatch(t, r, halbridge.VerbGet, "/projects/special")
	assert.Equal(t, resp.Data, "by-id")

	r2 := quietRouter()
	r2.MustRegister(halbridge.VerbGet, "/projects/special", echo("special"))
	r2.MustRegister(halbridge.VerbGet, "/projects/:id", echo("by-id"))

	assert.Equal(t, dispatch(t, r2, halbridge.VerbGet, "/projects/special").Data, "special")
	assert.Equal(t, dispatch(t, r2, halbridge.VerbGet, "/projects/3").Data, "by-id")
}

func TestDispatch_HandlerFailures(t *testing.T) {
	r := quietRouter()
	r.MustRegister(halbridge.VerbGet, "/err", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		return nil, errors.New("remote unreachable")
	})
	r.MustRegister(halbridge.VerbGet, "/panic", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		panic("boom")
	})
	r.MustRegister(halbridge.VerbGet, "/nil", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		return nil, nil
	})

	resp := dispatch(t, r, halbridge.VerbGet, "/err")
	assert.Equal(t, resp.Status, halbridge.StatusError)
	assert.Equal(t, resp.Error, "remote unreachable")

	resp = dispatch(t, r, halbridge.VerbGet, "/panic")
	assert.Equal(t, resp.Status, halbridge.StatusError)
	assert.Assert(t, cmp.Contains(resp.Error, "boom"))

	resp = dispatch(t, r, halbridge.VerbGet, "/nil")
	assert.Equal(t, resp.Status, halbridge.StatusError)
}

func TestDispatch_Timeout(t *testing.T) {
	r := quietRouter(halbridge.WithDispatchTimeout(20 * time.Millisecond))
	release := make(chan struct{})
	defer close(release)

	r.MustRegister(halbridge.VerbGet, "/slow", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		<-release
		return halbridge.OK(nil), nil
	})

	resp := dispatch(t, r, halbridge.VerbGet, "/slow")
	assert.Equal(t, resp.Status, halbridge.StatusError)
	assert.Assert(t, cmp.Contains(resp.Error, context.DeadlineExceeded.Error()))
}

func TestDispatch_ParamsAndQuery(t *testing.T) {
	r := quietRouter()
	var got *halbridge.Request
	r.MustRegister(halbridge.VerbGet, "/projects/{project}/work-packages/:id", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		got = req
		return halbridge.OK(nil), nil
	})

	resp := dispatch(t, r, halbridge.VerbGet, "/projects/demo%20one/work-packages/42?offset=2&pageSize=10")
	assert.Equal(t, resp.Status, halbridge.StatusOK)
	assert.Equal(t, got.Param("project"), "demo one")
	assert.Equal(t, got.Param("id"), "42")
	assert.Equal(t, got.Path, "/projects/demo%20one/work-packages/42")
	assert.Equal(t, got.Query.Get("offset"), "2")
	assert.Equal(t, got.Query.Get("pageSize"), "10")
}

func TestDispatch_LeavesRequestUntouched(t *testing.T) {
	r := quietRouter()
	var seen []string
	r.MustRegister(halbridge.VerbGet, "/projects/:id", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		seen = append(seen, req.Param("id")+"|"+req.Path+"|"+req.Query.Encode())
		return halbridge.OK(nil), nil
	})

	req := &halbridge.Request{
		Verb:   halbridge.VerbGet,
		Path:   "/projects/12?offset=2",
		Query:  url.Values{"pageSize": {"10"}},
		Params: map[string]string{"trace": "a"},
	}
	for range 2 {
		resp := r.Dispatch(context.Background(), req)
		assert.Equal(t, resp.Status, halbridge.StatusOK)
	}

	assert.DeepEqual(t, seen, []string{
		"12|/projects/12|offset=2&pageSize=10",
		"12|/projects/12|offset=2&pageSize=10",
	})
	assert.Equal(t, req.Path, "/projects/12?offset=2")
	assert.DeepEqual(t, req.Query, url.Values{"pageSize": {"10"}})
	assert.DeepEqual(t, req.Params, map[string]string{"trace": "a"})
}

func TestRegister_Duplicates(t *testing.T) {
	r := quietRouter()
	assert.NilError(t, r.Register(halbridge.VerbGet, "/users/:id", echo("a")))

	err := r.Register(halbridge.VerbGet, "/users/{userID}", echo("b"))
	var dup *halbridge.DuplicateRouteError
	assert.Assert(t, errors.As(err, &dup))
	assert.Equal(t, dup.Existing, "/users/:id")

	assert.NilError(t, r.Register(halbridge.VerbDelete, "/users/:id", echo("c")))
	assert.Equal(t, dispatch(t, r, halbridge.VerbGet, "/users/1").Data, "a")

	assert.Assert(t, cmp.Panics(func() {
		r.MustRegister(halbridge.VerbGet, "/users/:id", echo("d"))
	}))
}

func TestRegister_InvalidPatterns(t *testing.T) {
	r := quietRouter()
	for _, p := range []string{"users", "/users//x", "/users/:", "/a/:id/b/{id}"} {
		assert.Assert(t, r.Register(halbridge.VerbGet, p, echo("x")) != nil, p)
	}
	assert.Assert(t, r.Register("TRACE", "/x", echo("x")) != nil)
	assert.Assert(t, r.Register(halbridge.VerbGet, "/x", nil) != nil)
}

func TestDispatch_Concurrent(t *testing.T) {
	r := quietRouter()
	r.MustRegister(halbridge.VerbGet, "/items/:n", func(ctx context.Context, req *halbridge.Request) (*halbridge.Response, error) {
		return halbridge.OK(req.Param("n")), nil
	})

	const n = 50
	results := make([]*halbridge.Response, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Dispatch(context.Background(), &halbridge.Request{Verb: halbridge.VerbGet, Path: fmt.Sprintf("/items/%d", i)})
		}(i)
	}
	wg.Wait()

	for i, resp := range results {
		assert.Equal(t, resp.Data, fmt.Sprint(i))
	}
}

func TestDispatch_Observability(t *testing.T) {
	reg := prometheus.NewRegistry()
	ch := events.NewChannel(8)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	r := halbridge.NewRouter(halbridge.WithLogger(log), halbridge.WithMetrics(reg), halbridge.WithEvents(ch))
	r.MustRegister(halbridge.VerbGet, "/ping", echo("pong"))

	// A second router on the same registry shares the collectors.
	assert.Assert(t, halbridge.NewRouter(halbridge.WithMetrics(reg)) != nil)

	sub, cancel, err := ch.Subscribe(context.Background())
	assert.NilError(t, err)
	defer cancel()

	dispatch(t, r, halbridge.VerbGet, "/ping")
	dispatch(t, r, halbridge.VerbGet, "/nope")

	assert.Equal(t, testutil.CollectAndCount(reg, "halbridge_dispatch_total"), 2)

	st := <-sub
	assert.Equal(t, st.Kind, events.KindDispatch)
	assert.Equal(t, st.Path, "/ping")
	assert.Equal(t, st.Message, string(halbridge.StatusOK))

	assert.Assert(t, len(hook.AllEntries()) >= 2)
	assert.Equal(t, hook.LastEntry().Data["route"], "unmatched")
}

func TestTypedRoutes(t *testing.T) {
	r := quietRouter()
	r.RegisterModel(&Owner{})

	type query struct {
		Prefix string `json:"prefix" default:"#"`
	}

	halbridge.HandleGet(func(ctx context.Context, req *halbridge.Request, q query) (*Widget, error) {
		return &Widget{ID: 7, Label: q.Prefix + req.Param("id")}, nil
	}).Path("/widgets/:id").WithOpID("widgets", "get").Register(r)

	halbridge.HandlePost(func(ctx context.Context, req *halbridge.Request, in *Widget, q model.Nil) (*Widget, error) {
		in.ID = 99
		return in, nil
	}).Path("/widgets").WithOpID("widgets", "create").Register(r)

	halbridge.HandleDelete(func(ctx context.Context, req *halbridge.Request, q model.Nil) (model.Nil, error) {
		return model.Nil{}, nil
	}).Path("/widgets/:id").WithOpID("widgets", "delete").Register(r)

	t.Run("get decodes query defaults", func(t *testing.T) {
		resp := dispatch(t, r, halbridge.VerbGet, "/widgets/3")
		assert.Equal(t, resp.Status, halbridge.StatusOK)
		assert.DeepEqual(t, resp.Data, &Widget{ID: 7, Label: "#3"})

		resp = dispatch(t, r, halbridge.VerbGet, "/widgets/3?prefix=w")
		assert.DeepEqual(t, resp.Data, &Widget{ID: 7, Label: "w3"})
	})

	t.Run("post validates the payload", func(t *testing.T) {
		ok, err := halbridge.NewRequest(halbridge.VerbPost, "/widgets", map[string]any{
			"id": 1, "label": "bolt", "owner": map[string]any{"login": "ops"},
		})
		assert.NilError(t, err)
		resp := r.Dispatch(context.Background(), ok)
		assert.Equal(t, resp.Status, halbridge.StatusOK)
		assert.DeepEqual(t, resp.Data, &Widget{ID: 99, Label: "bolt", Owner: &Owner{Login: "ops"}})

		bad, err := halbridge.NewRequest(halbridge.VerbPost, "/widgets", map[string]any{
			"id": 1, "label": "bolt", "owner": map[string]any{"login": "OPS!"},
		})
		assert.NilError(t, err)
		resp = r.Dispatch(context.Background(), bad)
		assert.Equal(t, resp.Status, halbridge.StatusError)
		assert.Assert(t, cmp.Contains(resp.Error, "owner.login"))

		empty := &halbridge.Request{Verb: halbridge.VerbPost, Path: "/widgets"}
		resp = r.Dispatch(context.Background(), empty)
		assert.Equal(t, resp.Status, halbridge.StatusError)
	})

	t.Run("delete answers the empty object", func(t *testing.T) {
		resp := dispatch(t, r, halbridge.VerbDelete, "/widgets/3")
		assert.Equal(t, resp.Status, halbridge.StatusOK)
		raw, err := json.Marshal(resp.Data)
		assert.NilError(t, err)
		assert.Equal(t, string(raw), "{}")
	})

	t.Run("operations are recorded", func(t *testing.T) {
		op, ok := r.GetOperation(halbridge.VerbGet, "/widgets/{id}")
		assert.Assert(t, ok)
		assert.Equal(t, op.OperationID, "widgets_get")
		assert.Equal(t, len(r.Operations()), 3)
		assert.DeepEqual(t, r.Endpoints(), []string{
			"GET /widgets/:id",
			"POST /widgets",
			"DELETE /widgets/:id",
		})
	})

	t.Run("duplicate typed routes panic", func(t *testing.T) {
		assert.Assert(t, cmp.Panics(func() {
			halbridge.HandleGet(func(ctx context.Context, req *halbridge.Request, q model.Nil) (*Widget, error) {
				return &Widget{}, nil
			}).Path("/widgets/:widget").WithOpID("widgets", "again").Register(r)
		}))
	})

	t.Run("missing operation id panics", func(t *testing.T) {
		assert.Assert(t, cmp.Panics(func() {
			halbridge.HandleGet(func(ctx context.Context, req *halbridge.Request, q model.Nil) (*Widget, error) {
				return &Widget{}, nil
			}).Path("/other").Register(r)
		}))
	})
}
