package entity

// Film is the minimal projection of an archive.org item.
type Film struct {
	Identifier   string  `json:"identifier"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// Equal reports whether both films refer to the same archive.org item.
func (f Film) Equal(other Film) bool {
	return f.Identifier == other.Identifier
}

func (f Film) ToMap() map[string]any {
	return map[string]any{
		"identifier":    f.Identifier,
		"title":         f.Title,
		"description":   ptrValue(f.Description),
		"thumbnail_url": ptrValue(f.ThumbnailURL),
	}
}

func FilmFromMap(m map[string]any) Film {
	return Film{
		Identifier:   stringOr(m, "identifier", ""),
		Title:        stringOr(m, "title", ""),
		Description:  optString(m, "description"),
		ThumbnailURL: optString(m, "thumbnail_url"),
	}
}
