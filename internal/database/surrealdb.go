package database

import (
	"context"
	"fmt"
	"math"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB implements the Store interface for SurrealDB.
//
// Each kind is a table; a document is stored as {seq, doc} where doc is the
// raw JSON body. Ids are allocated from a per-kind counter in the sequence
// table.
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates a new SurrealDB instance
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
	}
}

// Connect establishes a connection to SurrealDB
func (s *SurrealDB) Connect(ctx context.Context) error {
	endpoint := fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	_, err = db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SurrealDB) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Get fetches a single document
func (s *SurrealDB) Get(ctx context.Context, kind Kind, id int64) (*Record, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	rows, err := s.query(ctx,
		"SELECT seq, doc FROM type::thing($tb, $id)",
		map[string]interface{}{"tb": string(kind), "id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rowToRecord(rows[0])
}

// Put upserts a document, allocating an id when rec.ID is zero
func (s *SurrealDB) Put(ctx context.Context, kind Kind, rec *Record) (int64, error) {
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}
	id := rec.ID
	if id == 0 {
		next, err := s.nextID(ctx, kind)
		if err != nil {
			return 0, err
		}
		id = next
	}

	_, err := s.query(ctx,
		"UPSERT type::thing($tb, $id) CONTENT { seq: $id, doc: $doc }",
		map[string]interface{}{"tb": string(kind), "id": id, "doc": string(rec.Data)},
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes a document
func (s *SurrealDB) Delete(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	rows, err := s.query(ctx,
		"DELETE type::thing($tb, $id) RETURN BEFORE",
		map[string]interface{}{"tb": string(kind), "id": id},
	)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// Scan pages through a table ordered by id. One extra row is requested to
// learn whether another page exists.
func (s *SurrealDB) Scan(ctx context.Context, kind Kind, limit, offset int) (*Page, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if offset < 0 {
		offset = 0
	}

	fetch := math.MaxInt32
	if limit > 0 && limit < math.MaxInt32 {
		fetch = limit + 1
	}
	rows, err := s.query(ctx,
		"SELECT seq, doc FROM type::table($tb) ORDER BY seq ASC LIMIT $limit START $offset",
		map[string]interface{}{"tb": string(kind), "limit": fetch, "offset": offset},
	)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	page := &Page{Records: records}
	if limit > 0 && len(records) > limit {
		page.Records = records[:limit]
		page.HasMore = true
	}
	page.NextOffset = offset + len(page.Records)
	return page, nil
}

func (s *SurrealDB) nextID(ctx context.Context, kind Kind) (int64, error) {
	rows, err := s.query(ctx,
		"UPSERT type::thing('sequence', $tb) SET value += 1 RETURN value",
		map[string]interface{}{"tb": string(kind)},
	)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: sequence %s returned nothing", ErrQuery, kind)
	}
	id, ok := toInt64(rows[0]["value"])
	if !ok {
		return 0, fmt.Errorf("%w: sequence %s returned non-numeric value", ErrQuery, kind)
	}
	return id, nil
}

// query runs a single statement and unwraps its result rows.
func (s *SurrealDB) query(ctx context.Context, query string, vars map[string]interface{}) ([]map[string]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[[]map[string]interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	r := (*results)[0]
	if r.Status != "OK" {
		if r.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
		}
		return nil, ErrQuery
	}
	return r.Result, nil
}

func rowToRecord(row map[string]interface{}) (*Record, error) {
	id, ok := toInt64(row["seq"])
	if !ok {
		return nil, fmt.Errorf("%w: row missing seq", ErrQuery)
	}
	doc, _ := row["doc"].(string)
	return &Record{ID: id, Data: []byte(doc)}, nil
}

// toInt64 normalizes the numeric types the CBOR decoder may produce.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}
