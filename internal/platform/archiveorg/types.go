package archiveorg

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchQuery is one advanced search request. Rows, Page and Sort are only
// sent when set.
type SearchQuery struct {
	Q      string
	Fields string
	Rows   int
	Page   int
	Sort   string
}

// Encode renders the query string in the order q, fl, rows, page, output,
// sort. Values are query-escaped, so the spaces of a sort directive become
// the literal "+" archive.org expects ("stars desc" -> "stars+desc").
func (q SearchQuery) Encode() string {
	parts := []string{
		"q=" + url.QueryEscape(q.Q),
		"fl=" + url.QueryEscape(q.Fields),
	}
	if q.Rows > 0 {
		parts = append(parts, "rows="+strconv.Itoa(q.Rows))
	}
	if q.Page > 0 {
		parts = append(parts, "page="+strconv.Itoa(q.Page))
	}
	parts = append(parts, "output=json")
	if q.Sort != "" {
		parts = append(parts, "sort="+url.QueryEscape(q.Sort))
	}
	return strings.Join(parts, "&")
}

// SearchResponse matches advancedsearch.php?output=json.
type SearchResponse struct {
	ResponseHeader ResponseHeader `json:"responseHeader"`
	Response       ResultSet      `json:"response"`
}

// Empty reports whether archive.org returned no result set at all, as
// opposed to a result set with zero documents.
func (r *SearchResponse) Empty() bool {
	return r == nil || !r.Response.present
}

type ResponseHeader struct {
	Status int          `json:"status"`
	QTime  int          `json:"QTime"`
	Params HeaderParams `json:"params"`
}

// HeaderParams is the request echo. Qin and Fields are nil when archive.org
// omits them.
type HeaderParams struct {
	Query  string  `json:"query"`
	Qin    *string `json:"qin"`
	Fields *string `json:"fields"`
}

// Document is a single search hit, kept free-form so that every requested
// field passes through untouched.
type Document map[string]any

// Identifier returns the document's identifier, or "" when absent.
func (d Document) Identifier() string {
	s, _ := d["identifier"].(string)
	return s
}

// ItemMetadata matches /metadata/{identifier}.
type ItemMetadata struct {
	Files    []File         `json:"files"`
	Metadata map[string]any `json:"metadata"`
}

type File struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Source string `json:"source"`
}
