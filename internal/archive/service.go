// Package archive turns Internet Archive search and metadata responses into
// the collection, film and video shapes served by the API.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"archiveapi/internal/entity"
	"archiveapi/internal/logging"
	"archiveapi/internal/platform/archiveorg"
)

const (
	DefaultCollection = "*"
	DefaultMediaType  = "movies"
	DefaultSort       = "stars desc"
	DefaultRows       = 10
	DefaultPage       = 1
	MaxRows           = 100

	searchFields = "identifier,title,description"
	videoFields  = "identifier,title,description,creator,date,subject,publicdate,addeddate,mediatype,collection"

	noResultsDescription = "No results found"
)

var ErrNotFound = errors.New("not found")

var playbackExtensions = []string{".mp4", ".webm", ".avi", ".mov"}

// Config holds the URL bases used to synthesize thumbnail and download links.
type Config struct {
	ImageBaseURL    string
	DownloadBaseURL string
}

// Service provides the query building and normalization logic.
type Service struct {
	client       Client
	imageBase    string
	downloadBase string
}

// NewService creates a new archive service.
func NewService(client Client, cfg Config) *Service {
	return &Service{
		client:       client,
		imageBase:    strings.TrimRight(cfg.ImageBaseURL, "/"),
		downloadBase: strings.TrimRight(cfg.DownloadBaseURL, "/"),
	}
}

// CollectionsQuery parameterizes SearchCollections. Zero values take the
// package defaults.
type CollectionsQuery struct {
	Collection string
	MediaType  string
	Page       int
	Rows       int
	Sort       string
}

func (q CollectionsQuery) withDefaults() CollectionsQuery {
	if q.Collection == "" {
		q.Collection = DefaultCollection
	}
	if q.MediaType == "" {
		q.MediaType = DefaultMediaType
	}
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Rows == 0 {
		q.Rows = DefaultRows
	}
	return q
}

// FilmsQuery parameterizes SearchFilmsByCollection.
type FilmsQuery struct {
	Page int
	Rows int
	Sort string
}

func (q FilmsQuery) withDefaults() FilmsQuery {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Rows == 0 {
		q.Rows = DefaultRows
	}
	return q
}

func collectionQuery(collection, mediaType string) string {
	return fmt.Sprintf("collection:(%s) AND mediatype:(%s)", collection, mediaType)
}

func identifierQuery(identifier string) string {
	return fmt.Sprintf("identifier:(%s)", identifier)
}

func exploreDescription(collection, mediaType string) string {
	return fmt.Sprintf("Explore results for all collections of videos in Internet Archive API: Collection=(%s) and MediaType=(%s)", collection, mediaType)
}

// SearchCollections runs an explore search. An upstream answer without a
// result set yields an empty envelope rather than an error.
func (s *Service) SearchCollections(ctx context.Context, q CollectionsQuery) (*Envelope, error) {
	q = q.withDefaults()
	query := collectionQuery(q.Collection, q.MediaType)

	logging.Ctx(ctx).Debug().
		Str("q", query).
		Str("sort", q.Sort).
		Int("rows", q.Rows).
		Int("page", q.Page).
		Msg("searching collections")

	res, err := s.client.Search(ctx, archiveorg.SearchQuery{
		Q:      query,
		Fields: searchFields,
		Rows:   q.Rows,
		Page:   q.Page,
		Sort:   q.Sort,
	})
	if err != nil {
		return nil, err
	}

	env := &Envelope{}
	if res.Empty() {
		logging.Ctx(ctx).Debug().Str("q", query).Msg("empty search response")
		env.Set("numFound", 0)
		env.Set("start", 0)
		env.Set("qin", query)
		env.Set("fields", searchFields)
		env.Set("rows", q.Rows)
		env.Set("description", noResultsDescription)
		env.Docs = []archiveorg.Document{}
		return env, nil
	}

	for _, f := range res.Response.Fields {
		env.Set(f.Key, f.Value)
	}
	params := res.ResponseHeader.Params
	env.Set("qin", stringOr(params.Qin, query))
	env.Set("fields", stringOr(params.Fields, searchFields))
	env.Set("rows", q.Rows)
	env.Set("description", exploreDescription(q.Collection, q.MediaType))

	env.Docs = make([]archiveorg.Document, 0, len(res.Response.Docs))
	for _, doc := range res.Response.Docs {
		if doc == nil {
			doc = archiveorg.Document{}
		}
		doc["thumbnail_url"] = s.imageURL(doc.Identifier())
		env.Docs = append(env.Docs, doc)
	}
	return env, nil
}

// SearchFilmsByCollection lists the movies of a collection in upstream order.
func (s *Service) SearchFilmsByCollection(ctx context.Context, collectionID string, q FilmsQuery) ([]entity.Film, error) {
	q = q.withDefaults()
	query := collectionQuery(collectionID, DefaultMediaType)

	res, err := s.client.Search(ctx, archiveorg.SearchQuery{
		Q:      query,
		Fields: searchFields,
		Rows:   q.Rows,
		Page:   q.Page,
		Sort:   q.Sort,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &archiveorg.SearchResponse{}
	}

	logging.Ctx(ctx).Debug().
		Str("q", query).
		Interface("qin", res.ResponseHeader.Params.Qin).
		Int("docs", len(res.Response.Docs)).
		Msg("searched collection films")

	films := make([]entity.Film, 0, len(res.Response.Docs))
	for _, doc := range res.Response.Docs {
		film := entity.FilmFromMap(doc)
		thumb := s.imageURL(film.Identifier)
		film.ThumbnailURL = &thumb
		films = append(films, film)
	}
	return films, nil
}

// GetCollectionWithFilms looks up a collection and fills in one page of its
// films. The page size and number are the caller's, not the lookup's.
func (s *Service) GetCollectionWithFilms(ctx context.Context, collectionID string, filmRows, page int) (*entity.Collection, error) {
	doc, header, err := s.lookup(ctx, collectionID, searchFields)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}

	collection := entity.CollectionFromMap(doc)
	collection.Qin = header.Params.Qin
	collection.Fields = header.Params.Fields
	collection.Rows = &filmRows
	collection.Page = &page
	thumb := s.imageURL(collection.Identifier)
	collection.ThumbnailURL = &thumb

	films, err := s.SearchFilmsByCollection(ctx, collectionID, FilmsQuery{
		Page: page,
		Rows: filmRows,
		Sort: DefaultSort,
	})
	if err != nil {
		return nil, err
	}
	collection.Films = films

	return &collection, nil
}

// GetVideoDetailsMap merges the search document, derived thumbnail and
// playback URLs and the item metadata into one map.
func (s *Service) GetVideoDetailsMap(ctx context.Context, videoID string) (map[string]any, error) {
	doc, _, err := s.lookup(ctx, videoID, videoFields)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	item, err := s.client.Metadata(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &archiveorg.ItemMetadata{}
	}

	thumb := s.imageURL(videoID)
	for _, f := range item.Files {
		if strings.HasSuffix(f.Name, ".jpg") && strings.Contains(f.Name, "thumb") {
			thumb = s.downloadURL(videoID, f.Name)
			break
		}
	}

	playback := make([]map[string]any, 0)
	for _, f := range item.Files {
		if !hasPlaybackExtension(f.Name) {
			continue
		}
		format := f.Format
		if format == "" {
			format = entity.UnknownFormat
		}
		playback = append(playback, entity.PlaybackURL{
			Format: format,
			URL:    s.downloadURL(videoID, f.Name),
		}.ToMap())
	}

	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	details := make(map[string]any, len(doc)+3)
	for k, v := range doc {
		details[k] = v
	}
	details["thumbnail_url"] = thumb
	details["playback_urls"] = playback
	details["metadata"] = metadata

	logging.Ctx(ctx).Debug().
		Str("identifier", videoID).
		Int("files", len(item.Files)).
		Int("playback_urls", len(playback)).
		Msg("resolved video details")

	return details, nil
}

// GetVideoDetails returns the normalized video for videoID.
func (s *Service) GetVideoDetails(ctx context.Context, videoID string) (*entity.Video, error) {
	details, err := s.GetVideoDetailsMap(ctx, videoID)
	if err != nil {
		return nil, err
	}
	video := entity.VideoFromMap(details)
	return &video, nil
}

// lookup fetches the single document matching identifier. A nil document
// with a nil error means there was no match.
func (s *Service) lookup(ctx context.Context, identifier, fields string) (archiveorg.Document, archiveorg.ResponseHeader, error) {
	query := identifierQuery(identifier)
	logging.Ctx(ctx).Debug().Str("q", query).Msg("looking up identifier")

	res, err := s.client.Search(ctx, archiveorg.SearchQuery{
		Q:      query,
		Fields: fields,
		Rows:   1,
	})
	if err != nil {
		return nil, archiveorg.ResponseHeader{}, err
	}
	if res == nil || len(res.Response.Docs) == 0 {
		return nil, archiveorg.ResponseHeader{}, nil
	}
	doc := res.Response.Docs[0]
	if doc == nil {
		doc = archiveorg.Document{}
	}
	return doc, res.ResponseHeader, nil
}

func (s *Service) imageURL(identifier string) string {
	return s.imageBase + "/" + identifier
}

func (s *Service) downloadURL(identifier, name string) string {
	return s.downloadBase + "/" + identifier + "/" + name
}

func hasPlaybackExtension(name string) bool {
	for _, ext := range playbackExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
