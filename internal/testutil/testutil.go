// Package testutil provides HTTP helpers and a fake archive.org upstream for
// tests.
package testutil

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// NewRequest creates a new HTTP request for testing.
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing.
type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    []byte
	Body   map[string]interface{}
	List   []interface{}
}

// RecordHTTPResponse decodes the recorded body as either an object or a list.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	rec := RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    bodyBytes,
	}
	trimmed := bytes.TrimSpace(bodyBytes)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '[':
		_ = json.Unmarshal(trimmed, &rec.List)
	case trimmed[0] == '{':
		_ = json.Unmarshal(trimmed, &rec.Body)
	}
	return rec
}

// FakeArchive serves advancedsearch.php and /metadata/{identifier} from
// in-memory fixtures. Searches are keyed by their q parameter; unknown
// queries return an empty result set.
type FakeArchive struct {
	Server *httptest.Server

	mu       sync.Mutex
	docs     map[string][]map[string]interface{}
	items    map[string]map[string]interface{}
	failWith int
	queries  []string
}

func NewFakeArchive(t *testing.T) *FakeArchive {
	t.Helper()
	f := &FakeArchive{
		docs:  make(map[string][]map[string]interface{}),
		items: make(map[string]map[string]interface{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /advancedsearch.php", f.search)
	mux.HandleFunc("GET /metadata/{identifier}", f.metadata)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeArchive) SearchURL() string   { return f.Server.URL + "/advancedsearch.php" }
func (f *FakeArchive) MetadataURL() string { return f.Server.URL + "/metadata" }

// SetDocs registers the documents returned for query q.
func (f *FakeArchive) SetDocs(q string, docs ...map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[q] = docs
}

// SetItem registers the metadata document for identifier.
func (f *FakeArchive) SetItem(identifier string, item map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[identifier] = item
}

// FailWith makes every following request answer with status.
func (f *FakeArchive) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = status
}

// Queries returns the raw query strings of the searches received so far.
func (f *FakeArchive) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *FakeArchive) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.RawQuery)
	failWith := f.failWith
	q := r.URL.Query()
	all := f.docs[q.Get("q")]
	f.mu.Unlock()

	if failWith != 0 {
		http.Error(w, http.StatusText(failWith), failWith)
		return
	}

	rows, err := strconv.Atoi(q.Get("rows"))
	if err != nil || rows < 1 {
		rows = 50
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	start := (page - 1) * rows
	docs := []map[string]interface{}{}
	if start < len(all) {
		end := start + rows
		if end > len(all) {
			end = len(all)
		}
		docs = all[start:end]
	}

	writeJSON(w, map[string]interface{}{
		"responseHeader": map[string]interface{}{
			"status": 0,
			"QTime":  1,
			"params": map[string]interface{}{
				"query":  "(" + q.Get("q") + ")",
				"qin":    q.Get("q"),
				"fields": q.Get("fl"),
				"wt":     "json",
				"rows":   strconv.Itoa(rows),
				"start":  start,
			},
		},
		"response": map[string]interface{}{
			"numFound": len(all),
			"start":    start,
			"docs":     docs,
		},
	})
}

func (f *FakeArchive) metadata(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	failWith := f.failWith
	item, ok := f.items[r.PathValue("identifier")]
	f.mu.Unlock()

	if failWith != 0 {
		http.Error(w, http.StatusText(failWith), failWith)
		return
	}
	if !ok {
		item = map[string]interface{}{}
	}
	writeJSON(w, item)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// KeyOrder returns the top-level keys of a JSON object in document order.
func KeyOrder(raw []byte) []string {
	dec := stdjson.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var skip stdjson.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}
