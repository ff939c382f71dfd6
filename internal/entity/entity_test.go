package entity

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFilm_RoundTrip(t *testing.T) {
	films := []Film{
		{Identifier: "test_id", Title: "Test Film", Description: ptr("Test Description"), ThumbnailURL: ptr("https://archive.org/services/img/test_id")},
		{Identifier: "bare", Title: "No Optionals"},
		{},
	}
	for _, f := range films {
		got := FilmFromMap(f.ToMap())
		if diff := cmp.Diff(f, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestFilmFromMap_Defaults(t *testing.T) {
	f := FilmFromMap(map[string]any{})
	assert.Equal(t, "", f.Identifier)
	assert.Equal(t, "", f.Title)
	assert.Nil(t, f.Description)
	assert.Nil(t, f.ThumbnailURL)
}

func TestFilmFromMap_ListDescription(t *testing.T) {
	f := FilmFromMap(map[string]any{
		"identifier":  "x",
		"description": []any{"first paragraph", "second paragraph"},
	})
	require.NotNil(t, f.Description)
	assert.Equal(t, "first paragraph\nsecond paragraph", *f.Description)
}

func TestFilm_Equal(t *testing.T) {
	a := Film{Identifier: "same", Title: "A"}
	b := Film{Identifier: "same", Title: "B"}
	c := Film{Identifier: "other", Title: "A"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFilm_JSON(t *testing.T) {
	b, err := json.Marshal(Film{Identifier: "x", Title: "X"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"identifier":"x","title":"X","description":null,"thumbnail_url":null}`, string(b))
}

func TestCollection_ToMapPreservesFilmOrder(t *testing.T) {
	c := Collection{
		Identifier: "feature_films",
		Title:      "Feature Films",
		Rows:       ptr(3),
		Page:       ptr(1),
		Films: []Film{
			{Identifier: "f1", Title: "One"},
			{Identifier: "f2", Title: "Two"},
			{Identifier: "f3", Title: "Three"},
		},
	}

	m := c.ToMap()
	films, ok := m["films"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, films, 3)
	for i, want := range []string{"f1", "f2", "f3"} {
		assert.Equal(t, want, films[i]["identifier"])
	}
	assert.Equal(t, 3, m["rows"])
	assert.Nil(t, m["qin"])
}

func TestCollection_RoundTrip(t *testing.T) {
	c := Collection{
		Identifier:   "feature_films",
		Title:        "Feature Films",
		Description:  ptr("Classic movies"),
		Qin:          ptr("identifier:(feature_films)"),
		Fields:       ptr("identifier,title,description"),
		Rows:         ptr(10),
		Page:         ptr(2),
		ThumbnailURL: ptr("https://archive.org/services/img/feature_films"),
		Films:        []Film{{Identifier: "f1", Title: "One", ThumbnailURL: ptr("t1")}},
	}
	if diff := cmp.Diff(c, CollectionFromMap(c.ToMap())); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionFromMap_DecodedJSON(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"identifier": "c", "title": "C", "rows": 5, "page": "2",
		"films": [{"identifier": "f1", "title": "One"}, {"identifier": "f2", "title": "Two"}]
	}`), &m))

	c := CollectionFromMap(m)
	require.NotNil(t, c.Rows)
	require.NotNil(t, c.Page)
	assert.Equal(t, 5, *c.Rows)
	assert.Equal(t, 2, *c.Page)
	require.Len(t, c.Films, 2)
	assert.Equal(t, "f2", c.Films[1].Identifier)
}

func TestVideoFromMap_NormalizesLists(t *testing.T) {
	tests := []struct {
		name           string
		in             map[string]any
		wantSubject    []string
		wantCollection []string
	}{
		{
			name:           "bare strings",
			in:             map[string]any{"subject": "horror", "collection": "feature_films"},
			wantSubject:    []string{"horror"},
			wantCollection: []string{"feature_films"},
		},
		{
			name:           "lists",
			in:             map[string]any{"subject": []any{"horror", "zombies"}, "collection": []string{"feature_films", "moviesandfilms"}},
			wantSubject:    []string{"horror", "zombies"},
			wantCollection: []string{"feature_films", "moviesandfilms"},
		},
		{
			name:           "absent",
			in:             map[string]any{},
			wantSubject:    []string{},
			wantCollection: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VideoFromMap(tt.in)
			assert.Equal(t, tt.wantSubject, v.Subject)
			assert.Equal(t, tt.wantCollection, v.Collection)
			assert.NotNil(t, v.Metadata)
			assert.NotNil(t, v.PlaybackURLs)
		})
	}
}

func TestVideo_RoundTrip(t *testing.T) {
	v := Video{
		Identifier:   "night_of_the_living_dead",
		Title:        "Night of the Living Dead",
		Description:  ptr("A classic"),
		Creator:      ptr("George A. Romero"),
		Date:         ptr("1968-10-01"),
		Subject:      []string{"horror"},
		Collection:   []string{"feature_films"},
		ThumbnailURL: ptr("https://archive.org/download/night/night.thumbs/a_thumb.jpg"),
		PlaybackURLs: []PlaybackURL{{Format: "h.264", URL: "https://archive.org/download/night/night.mp4"}},
		Metadata:     map[string]any{"runtime": "1:35:00"},
	}
	if diff := cmp.Diff(v, VideoFromMap(v.ToMap())); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaybackURLFromMap_DefaultFormat(t *testing.T) {
	assert.Equal(t, PlaybackURL{Format: "Unknown", URL: "u"}, PlaybackURLFromMap(map[string]any{"url": "u"}))
	assert.Equal(t, PlaybackURL{Format: "Unknown"}, PlaybackURLFromMap(map[string]any{"format": ""}))
}

func TestVideo_JSONShape(t *testing.T) {
	v := VideoFromMap(map[string]any{"identifier": "x", "title": "X"})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"identifier": "x", "title": "X", "description": null, "creator": null, "date": null,
		"subject": [], "collection": [], "thumbnail_url": null, "playback_urls": [], "metadata": {}
	}`, string(b))
}
