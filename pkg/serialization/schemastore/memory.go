package schemastore

import (
	"context"
	"fmt"
	"sync"

	hambavro "github.com/hamba/avro/v2"
	"github.com/samber/lo"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/envelope"
)

// memoryStore is the default in-process store: RWMutex-guarded indexes by
// fingerprint and by full name. The byName index keeps the latest
// registration per name, which is the "current" schema for that type.
type memoryStore struct {
	mu            sync.RWMutex
	byFingerprint map[envelope.Fingerprint]hambavro.Schema
	byName        map[string]hambavro.Schema
}

// NewMemoryStore creates an in-memory schema store, optionally seeded.
// Seeding failures panic: they are construction-time misuse, not runtime
// conditions.
func NewMemoryStore(seed ...hambavro.Schema) Store {
	s := &memoryStore{
		byFingerprint: make(map[envelope.Fingerprint]hambavro.Schema),
		byName:        make(map[string]hambavro.Schema),
	}
	for _, schema := range seed {
		if _, err := s.Register(context.Background(), schema); err != nil {
			panic(fmt.Sprintf("schemastore: seeding memory store: %v", err))
		}
	}
	return s
}

var _ Store = (*memoryStore)(nil)

func (s *memoryStore) Register(_ context.Context, schema hambavro.Schema) (envelope.Fingerprint, error) {
	fp, err := envelope.FingerprintOf(schema)
	if err != nil {
		return envelope.Fingerprint{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byFingerprint[fp]; ok && !sameSchema(existing, schema) {
		return envelope.Fingerprint{}, fmt.Errorf("%w: fingerprint %s of %s is already bound to %s",
			ErrFingerprintCollision, fp, schemaFullName(schema), schemaFullName(existing))
	}

	s.byFingerprint[fp] = schema
	if named, ok := schema.(hambavro.NamedSchema); ok {
		s.byName[named.FullName()] = schema
	}
	return fp, nil
}

func (s *memoryStore) ByFingerprint(_ context.Context, fp envelope.Fingerprint) (hambavro.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.byFingerprint[fp]
	if !ok {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrSchemaNotFound, fp)
	}
	return schema, nil
}

func (s *memoryStore) ByName(_ context.Context, fullName string) (hambavro.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.byName[fullName]
	if !ok {
		return nil, fmt.Errorf("%w: name %s", ErrSchemaNotFound, fullName)
	}
	return schema, nil
}

func (s *memoryStore) Schemas(_ context.Context) ([]hambavro.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Values(s.byFingerprint), nil
}
