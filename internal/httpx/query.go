package httpx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// QueryBinder reads typed values out of a query string and collects parse
// failures so they can be reported together.
type QueryBinder struct {
	values url.Values
	errs   []ErrorDetail
}

func NewQueryBinder(values url.Values) *QueryBinder {
	return &QueryBinder{values: values}
}

// String returns the parameter or def when it is absent.
func (b *QueryBinder) String(name, def string) string {
	if !b.values.Has(name) {
		return def
	}
	return b.values.Get(name)
}

// Int returns the parameter parsed as an integer, or def when it is absent.
// A present but unparsable value is recorded as an error.
func (b *QueryBinder) Int(name string, def int) int {
	if !b.values.Has(name) {
		return def
	}
	raw := strings.TrimSpace(b.values.Get(name))
	v, err := strconv.Atoi(raw)
	if err != nil {
		b.errs = append(b.errs, ErrorDetail{
			Field:   name,
			Message: fmt.Sprintf("%s must be a valid integer", name),
		})
		return def
	}
	return v
}

// Errors returns the parse failures seen so far.
func (b *QueryBinder) Errors() []ErrorDetail {
	return b.errs
}
