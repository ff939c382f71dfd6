package archive

import (
	"errors"
	"fmt"
	"net/http"

	"archiveapi/internal/entity"
	"archiveapi/internal/httpx"
	"archiveapi/internal/logging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type exploreParams struct {
	Collection string `query:"collection"`
	Page       int    `query:"page" validate:"gte=1"`
	Rows       int    `query:"rows" validate:"gte=1,lte=100"`
	Sort       string `query:"sort"`
}

type collectionParams struct {
	FilmRows int `query:"film_rows" validate:"gte=1,lte=100"`
	Page     int `query:"page" validate:"gte=1"`
}

type itemsParams struct {
	Page int    `query:"page" validate:"gte=1"`
	Rows int    `query:"rows" validate:"gte=1,lte=100"`
	Sort string `query:"sort"`
}

// @Summary Explore collections
// @Description Search Internet Archive videos by collection pattern
// @Tags archive
// @Produce json
// @Param collection query string false "Collection to search for" default(*)
// @Param page query int false "Page number" default(1)
// @Param rows query int false "Rows per page" default(10)
// @Param sort query string false "Sort criteria" default(stars desc)
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/v1/explore [get]
func (h *HTTPHandler) Explore(w http.ResponseWriter, r *http.Request) {
	b := httpx.NewQueryBinder(r.URL.Query())
	params := exploreParams{
		Collection: b.String("collection", DefaultCollection),
		Page:       b.Int("page", DefaultPage),
		Rows:       b.Int("rows", DefaultRows),
		Sort:       b.String("sort", DefaultSort),
	}
	if !validQuery(w, r, b, params) {
		return
	}

	env, err := h.service.SearchCollections(r.Context(), CollectionsQuery{
		Collection: params.Collection,
		MediaType:  DefaultMediaType,
		Page:       params.Page,
		Rows:       params.Rows,
		Sort:       params.Sort,
	})
	if err != nil {
		internalError(w, r, err, "Failed to fetch collections")
		return
	}
	httpx.JSON(w, http.StatusOK, env)
}

// @Summary Get collection
// @Description Get a collection by identifier including one page of its films
// @Tags archive
// @Produce json
// @Param collection_id path string true "Collection identifier"
// @Param film_rows query int false "Number of films to include" default(10)
// @Param page query int false "Page number for films" default(1)
// @Success 200 {object} entity.Collection
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/v1/collections/{collection_id} [get]
func (h *HTTPHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := r.PathValue("collection_id")

	b := httpx.NewQueryBinder(r.URL.Query())
	params := collectionParams{
		FilmRows: b.Int("film_rows", DefaultRows),
		Page:     b.Int("page", DefaultPage),
	}
	if !validQuery(w, r, b, params) {
		return
	}

	collection, err := h.service.GetCollectionWithFilms(r.Context(), collectionID, params.FilmRows, params.Page)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Collection with ID %s not found", collectionID), nil)
			return
		}
		internalError(w, r, err, "Failed to fetch collection")
		return
	}
	httpx.JSON(w, http.StatusOK, collection)
}

// @Summary List collection items
// @Description Get the movies within a collection
// @Tags archive
// @Produce json
// @Param collection_id path string true "Collection identifier"
// @Param page query int false "Page number" default(1)
// @Param rows query int false "Rows per page" default(10)
// @Param sort query string false "Sort criteria" default(stars desc)
// @Success 200 {array} entity.Film
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/v1/collections/{collection_id}/items [get]
func (h *HTTPHandler) ListCollectionItems(w http.ResponseWriter, r *http.Request) {
	collectionID := r.PathValue("collection_id")

	b := httpx.NewQueryBinder(r.URL.Query())
	params := itemsParams{
		Page: b.Int("page", DefaultPage),
		Rows: b.Int("rows", DefaultRows),
		Sort: b.String("sort", DefaultSort),
	}
	if !validQuery(w, r, b, params) {
		return
	}

	films, err := h.service.SearchFilmsByCollection(r.Context(), collectionID, FilmsQuery{
		Page: params.Page,
		Rows: params.Rows,
		Sort: params.Sort,
	})
	if err != nil {
		internalError(w, r, err, "Failed to fetch items")
		return
	}
	if films == nil {
		films = []entity.Film{}
	}
	httpx.JSON(w, http.StatusOK, films)
}

// @Summary Get video
// @Description Get detailed information about a video, including playback URLs
// @Tags archive
// @Produce json
// @Param video_id path string true "Video identifier"
// @Success 200 {object} entity.Video
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/v1/videos/{video_id} [get]
func (h *HTTPHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("video_id")

	video, err := h.service.GetVideoDetails(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Video with ID %s not found", videoID), nil)
			return
		}
		internalError(w, r, err, "Failed to fetch video details")
		return
	}
	httpx.JSON(w, http.StatusOK, video)
}

// validQuery writes a 422 and returns false when the query string could not
// be parsed or the bound params fail validation.
func validQuery(w http.ResponseWriter, r *http.Request, b *httpx.QueryBinder, params interface{}) bool {
	details := b.Errors()
	if len(details) == 0 {
		details = httpx.ValidateStruct(params)
	}
	if len(details) == 0 {
		return true
	}
	httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid query parameters", details)
	return false
}

func internalError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(prefix)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("%s: %v", prefix, err), nil)
}
