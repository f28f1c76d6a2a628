// Package haltest provides an in-memory Fetcher for tests.
package haltest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tailbits/halbridge/hal"
)

// Call records one Send.
type Call struct {
	Method string
	Href   string
	Body   []byte
}

// Fetcher serves documents from a map keyed by href. Unknown hrefs answer 404.
type Fetcher struct {
	mu      sync.Mutex
	docs    map[string]string
	replies map[string]string
	fetched []string
	calls   []Call
	Err     error
}

var _ hal.Fetcher = (*Fetcher)(nil)

// New returns a fetcher serving docs.
func New(docs map[string]string) *Fetcher {
	if docs == nil {
		docs = map[string]string{}
	}
	return &Fetcher{docs: docs, replies: map[string]string{}}
}

// Add registers a document.
func (f *Fetcher) Add(href, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[href] = doc
}

// Reply sets the response body for a Send to method+href.
func (f *Fetcher) Reply(method, href, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+href] = doc
}

func (f *Fetcher) Fetch(ctx context.Context, href string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, href)
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := f.docs[href]
	if !ok {
		return nil, &hal.RemoteFetchError{Href: href, Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found", href)}
	}
	return []byte(doc), nil
}

func (f *Fetcher) Send(ctx context.Context, method string, href string, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Href: href, Body: body})
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := f.replies[method+" "+href]
	if !ok {
		return nil, &hal.RemoteFetchError{Href: href, Status: http.StatusNotFound, Message: fmt.Sprintf("no reply for %s %s", method, href)}
	}
	return []byte(doc), nil
}

// Fetched lists fetched hrefs in call order.
func (f *Fetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// Calls lists recorded writes in call order.
func (f *Fetcher) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
