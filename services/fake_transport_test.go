package services

import (
	"context"
	"net/url"
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

type fakeTransport struct {
	calls    []call
	response map[string]any
	err      error
}

func (f *fakeTransport) record(c call) (map[string]any, error) {
	f.calls = append(f.calls, c)
	return f.response, f.err
}

func (f *fakeTransport) Get(_ context.Context, path string, query url.Values) (map[string]any, error) {
	return f.record(call{method: "GET", path: path, query: query})
}

func (f *fakeTransport) Post(_ context.Context, path string, body any) (map[string]any, error) {
	return f.record(call{method: "POST", path: path, body: body})
}

func (f *fakeTransport) Put(_ context.Context, path string, body any) (map[string]any, error) {
	return f.record(call{method: "PUT", path: path, body: body})
}

func (f *fakeTransport) Delete(_ context.Context, path string) (map[string]any, error) {
	return f.record(call{method: "DELETE", path: path})
}
