package archive

import (
	"context"

	"archiveapi/internal/platform/archiveorg"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=archive

// Client is the upstream surface the service depends on.
type Client interface {
	Search(ctx context.Context, q archiveorg.SearchQuery) (*archiveorg.SearchResponse, error)
	Metadata(ctx context.Context, identifier string) (*archiveorg.ItemMetadata, error)
}
