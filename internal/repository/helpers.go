package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// List is one page of decoded documents
type List[T any] struct {
	Items      []*T
	HasMore    bool
	NextOffset int
}

// getDocument loads and decodes a document. A missing document yields
// (nil, nil).
func getDocument[T any](ctx context.Context, store database.Store, kind database.Kind, id model.ID, setID func(*T, model.ID)) (*T, error) {
	rec, err := store.Get(ctx, kind, int64(id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(rec, setID)
}

// putDocument encodes and stores a document, returning its id
func putDocument(ctx context.Context, store database.Store, kind database.Kind, id model.ID, doc any) (model.ID, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", kind, err)
	}
	newID, err := store.Put(ctx, kind, &database.Record{ID: int64(id), Data: data})
	if err != nil {
		return 0, err
	}
	return model.ID(newID), nil
}

// scanDocuments pages through a kind and decodes each document
func scanDocuments[T any](ctx context.Context, store database.Store, kind database.Kind, limit, offset int, setID func(*T, model.ID)) (*List[T], error) {
	page, err := store.Scan(ctx, kind, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, len(page.Records))
	for i := range page.Records {
		doc, err := decodeDocument(&page.Records[i], setID)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	return &List[T]{Items: items, HasMore: page.HasMore, NextOffset: page.NextOffset}, nil
}

func decodeDocument[T any](rec *database.Record, setID func(*T, model.ID)) (*T, error) {
	var doc T
	if err := json.Unmarshal(rec.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode record %d: %w", rec.ID, err)
	}
	setID(&doc, model.ID(rec.ID))
	return &doc, nil
}

// storedRefs drops self links, which are computed per request
func storedRefs(refs []model.Ref) []model.Ref {
	out := make([]model.Ref, len(refs))
	for i, r := range refs {
		out[i] = model.Ref{ID: r.ID}
	}
	return out
}
