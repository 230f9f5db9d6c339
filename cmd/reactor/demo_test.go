package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/todo"
	"github.com/vango-dev/reactor/pkg/vdom"
	"github.com/vango-dev/reactor/pkg/wire"
)

func startDemo(t *testing.T) (*demo, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Metrics.Enabled = true
	cfg.Demo.Items = 2

	d, err := newDemo(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.rt.Run(ctx) //nolint:errcheck
	}()

	srv := httptest.NewServer(d.router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return d, srv
}

func do(t *testing.T, method, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func decodeTodos(t *testing.T, body string) []todo.Todo {
	t.Helper()
	var list []todo.Todo
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	return list
}

func TestDemoServer(t *testing.T) {
	_, srv := startDemo(t)

	code, body := do(t, http.MethodGet, srv.URL+"/todos")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeTodos(t, body), 2)

	code, body = do(t, http.MethodPost, srv.URL+"/todos?title=Write+tests")
	require.Equal(t, http.StatusOK, code)
	list := decodeTodos(t, body)
	require.Len(t, list, 3)
	assert.Equal(t, todo.Todo{ID: 3, Title: "Write tests"}, list[2])

	code, _ = do(t, http.MethodPost, srv.URL+"/todos/3/toggle")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, http.MethodGet, srv.URL+"/ops")
	require.Equal(t, http.StatusOK, code)
	frame, err := wire.DecodeFrame([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), frame.Seq)
	require.Len(t, frame.Patches, 2)
	byOp := map[vdom.PatchOp]vdom.Patch{}
	for _, p := range frame.Patches {
		byOp[p.Op] = p
	}
	assert.Equal(t, "class", byOp[vdom.PatchSetAttr].Key)
	assert.Equal(t, "done", byOp[vdom.PatchSetAttr].Value)
	assert.Equal(t, "2 items left", byOp[vdom.PatchSetText].Value)

	code, body = do(t, http.MethodGet, srv.URL+"/tree")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<li class="done" data-id="3">Write tests</li>`)
	assert.Contains(t, body, "2 items left")

	code, _ = do(t, http.MethodPut, srv.URL+"/filter/done")
	require.Equal(t, http.StatusOK, code)
	_, body = do(t, http.MethodGet, srv.URL+"/tree")
	assert.Equal(t, 1, strings.Count(body, "<li"))

	code, _ = do(t, http.MethodDelete, srv.URL+"/todos/3")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, http.MethodDelete, srv.URL+"/todos/3")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodPut, srv.URL+"/filter/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodPost, srv.URL+"/todos")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "reactor_flushes_total")
	assert.Contains(t, body, `reactor_host_operations_total{op="set_attr"}`)
}

func TestDemoScript(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"
	d, err := newDemo(cfg)
	require.NoError(t, err)

	assert.NotPanics(t, d.script)
	assert.Equal(t, 3, d.store.Remaining())
	assert.Len(t, d.store.List(), 3)
}
