package entity

// Collection is a named grouping of films together with the query metadata
// used to page through it.
type Collection struct {
	Identifier   string  `json:"identifier"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Qin          *string `json:"qin"`
	Fields       *string `json:"fields"`
	Rows         *int    `json:"rows"`
	Page         *int    `json:"page"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Films        []Film  `json:"films"`
}

func (c Collection) ToMap() map[string]any {
	films := make([]map[string]any, 0, len(c.Films))
	for _, f := range c.Films {
		films = append(films, f.ToMap())
	}
	return map[string]any{
		"identifier":    c.Identifier,
		"title":         c.Title,
		"description":   ptrValue(c.Description),
		"qin":           ptrValue(c.Qin),
		"fields":        ptrValue(c.Fields),
		"rows":          ptrValue(c.Rows),
		"page":          ptrValue(c.Page),
		"thumbnail_url": ptrValue(c.ThumbnailURL),
		"films":         films,
	}
}

func CollectionFromMap(m map[string]any) Collection {
	raw := mapList(m, "films")
	films := make([]Film, 0, len(raw))
	for _, fm := range raw {
		films = append(films, FilmFromMap(fm))
	}
	return Collection{
		Identifier:   stringOr(m, "identifier", ""),
		Title:        stringOr(m, "title", ""),
		Description:  optString(m, "description"),
		Qin:          optString(m, "qin"),
		Fields:       optString(m, "fields"),
		Rows:         optInt(m, "rows"),
		Page:         optInt(m, "page"),
		ThumbnailURL: optString(m, "thumbnail_url"),
		Films:        films,
	}
}
