package archiveorg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		SearchURL:       srv.URL + "/advancedsearch.php",
		MetadataURL:     srv.URL + "/metadata",
		UserAgent:       "archiveapi-test",
		Timeout:         5 * time.Second,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})
	return c, srv
}

func TestClient_Get(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "archiveapi-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.URL.Query().Get("rows"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	body, err := c.Get(context.Background(), srv.URL+"/anything", url.Values{"rows": {"1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_Get_EmptyURL(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Get(context.Background(), "", nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
}

func TestClient_Get_Non2xx(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Get(context.Background(), srv.URL, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, "upstream down", te.Body)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Get_MalformedJSON(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.Get(context.Background(), srv.URL, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.ErrorIs(t, err, errMalformedJSON)
}

func TestClient_Get_EmptyBody(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	body, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(body))
}

func TestClient_Search(t *testing.T) {
	var rawQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/advancedsearch.php", r.URL.Path)
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"responseHeader": {"status": 0, "QTime": 12, "params": {
				"query": "(collection:(feature_films) AND mediatype:(movies))",
				"qin": "collection:(feature_films) AND mediatype:(movies)",
				"fields": "identifier,title,description",
				"wt": "json", "rows": "2", "start": 0}},
			"response": {"numFound": 40, "start": 0, "numFoundExact": true, "docs": [
				{"identifier": "a", "title": "A"},
				{"identifier": "b", "title": "B", "description": ["one", "two"]}
			]}
		}`))
	})

	res, err := c.Search(context.Background(), SearchQuery{
		Q:      "collection:(feature_films) AND mediatype:(movies)",
		Fields: "identifier,title,description",
		Rows:   2,
		Page:   3,
		Sort:   "stars desc",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"q=collection%3A%28feature_films%29+AND+mediatype%3A%28movies%29&fl=identifier%2Ctitle%2Cdescription&rows=2&page=3&output=json&sort=stars+desc",
		rawQuery)

	assert.False(t, res.Empty())
	require.NotNil(t, res.ResponseHeader.Params.Qin)
	assert.Equal(t, "collection:(feature_films) AND mediatype:(movies)", *res.ResponseHeader.Params.Qin)
	require.NotNil(t, res.ResponseHeader.Params.Fields)

	keys := make([]string, 0, len(res.Response.Fields))
	for _, f := range res.Response.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"numFound", "start", "numFoundExact"}, keys)

	numFound, ok := res.Response.Lookup("numFound")
	require.True(t, ok)
	assert.Equal(t, "40", string(numFound))

	require.Len(t, res.Response.Docs, 2)
	assert.Equal(t, "a", res.Response.Docs[0].Identifier())
	assert.Equal(t, []any{"one", "two"}, res.Response.Docs[1]["description"])
}

func TestClient_Search_Empty(t *testing.T) {
	tests := map[string]string{
		"empty object":     `{}`,
		"null":             `null`,
		"no response key":  `{"error": "query parse error"}`,
		"null response":    `{"responseHeader": {"status": 0}, "response": null}`,
		"whitespace empty": "  \n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			res, err := c.Search(context.Background(), SearchQuery{Q: "identifier:(x)", Fields: "identifier", Rows: 1})
			require.NoError(t, err)
			assert.True(t, res.Empty())
			assert.Empty(t, res.Response.Docs)
		})
	}
}

func TestClient_Search_OmitsUnsetParams(t *testing.T) {
	var query url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"response": {"numFound": 0, "start": 0, "docs": []}}`))
	})

	res, err := c.Search(context.Background(), SearchQuery{Q: "identifier:(abc)", Fields: "identifier,title,description", Rows: 1})
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Empty(t, res.Response.Docs)

	assert.Equal(t, "identifier:(abc)", query.Get("q"))
	assert.Equal(t, "1", query.Get("rows"))
	assert.Equal(t, "json", query.Get("output"))
	assert.False(t, query.Has("page"))
	assert.False(t, query.Has("sort"))
}

func TestClient_Metadata(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/night_of_the_living_dead", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"created": 1700000000,
			"files": [
				{"name": "night.thumbs/night_000001.jpg", "format": "Thumbnail", "source": "derivative", "size": "5012"},
				{"name": "night.mp4", "format": "h.264", "source": "derivative"}
			],
			"metadata": {"identifier": "night_of_the_living_dead", "runtime": "1:35:00", "subject": ["horror", "zombies"]}
		}`))
	})

	md, err := c.Metadata(context.Background(), "night_of_the_living_dead")
	require.NoError(t, err)
	require.Len(t, md.Files, 2)
	assert.Equal(t, "night.mp4", md.Files[1].Name)
	assert.Equal(t, "h.264", md.Files[1].Format)
	assert.Equal(t, "1:35:00", md.Metadata["runtime"])
}

func TestClient_Metadata_EmptyItem(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	md, err := c.Metadata(context.Background(), "doesnotexist123")
	require.NoError(t, err)
	assert.Empty(t, md.Files)
	assert.Nil(t, md.Metadata)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL, nil)
		require.Error(t, err)
	}

	_, err := c.Get(context.Background(), srv.URL, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 4; i++ {
		_, err := c.Get(context.Background(), srv.URL, nil)
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusNotFound, te.StatusCode)
	}
	assert.Equal(t, int32(4), hits.Load())
}

func TestTransportError_Temporary(t *testing.T) {
	assert.True(t, (&TransportError{Err: errors.New("dial")}).Temporary())
	assert.True(t, (&TransportError{StatusCode: 503}).Temporary())
	assert.True(t, (&TransportError{StatusCode: 429}).Temporary())
	assert.False(t, (&TransportError{StatusCode: 404}).Temporary())
}
