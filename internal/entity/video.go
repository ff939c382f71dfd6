package entity

const UnknownFormat = "Unknown"

// PlaybackURL is one downloadable rendition of a video.
type PlaybackURL struct {
	Format string `json:"format"`
	URL    string `json:"url"`
}

func (p PlaybackURL) ToMap() map[string]any {
	return map[string]any{
		"format": p.Format,
		"url":    p.URL,
	}
}

func PlaybackURLFromMap(m map[string]any) PlaybackURL {
	format := stringOr(m, "format", UnknownFormat)
	if format == "" {
		format = UnknownFormat
	}
	return PlaybackURL{
		Format: format,
		URL:    stringOr(m, "url", ""),
	}
}

// Video is the full detail projection of one item. Subject and Collection
// are always lists, even when archive.org sends a single string.
type Video struct {
	Identifier   string         `json:"identifier"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Creator      *string        `json:"creator"`
	Date         *string        `json:"date"`
	Subject      []string       `json:"subject"`
	Collection   []string       `json:"collection"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	PlaybackURLs []PlaybackURL  `json:"playback_urls"`
	Metadata     map[string]any `json:"metadata"`
}

func (v Video) ToMap() map[string]any {
	urls := make([]map[string]any, 0, len(v.PlaybackURLs))
	for _, u := range v.PlaybackURLs {
		urls = append(urls, u.ToMap())
	}
	subject := v.Subject
	if subject == nil {
		subject = []string{}
	}
	collection := v.Collection
	if collection == nil {
		collection = []string{}
	}
	metadata := v.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"identifier":    v.Identifier,
		"title":         v.Title,
		"description":   ptrValue(v.Description),
		"creator":       ptrValue(v.Creator),
		"date":          ptrValue(v.Date),
		"subject":       subject,
		"collection":    collection,
		"thumbnail_url": ptrValue(v.ThumbnailURL),
		"playback_urls": urls,
		"metadata":      metadata,
	}
}

func VideoFromMap(m map[string]any) Video {
	raw := mapList(m, "playback_urls")
	urls := make([]PlaybackURL, 0, len(raw))
	for _, um := range raw {
		urls = append(urls, PlaybackURLFromMap(um))
	}
	metadata, _ := m["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Video{
		Identifier:   stringOr(m, "identifier", ""),
		Title:        stringOr(m, "title", ""),
		Description:  optString(m, "description"),
		Creator:      optString(m, "creator"),
		Date:         optString(m, "date"),
		Subject:      stringList(m, "subject"),
		Collection:   stringList(m, "collection"),
		ThumbnailURL: optString(m, "thumbnail_url"),
		PlaybackURLs: urls,
		Metadata:     metadata,
	}
}
