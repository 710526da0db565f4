package schemastore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cenkalti/backoff/v4"
	schemaregistry "github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	hambavro "github.com/hamba/avro/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/envelope"
)

// confluentStore adapts a Confluent Schema Registry cluster to the Store
// contract. Subjects follow the record-name strategy: the subject is the
// schema full name, independent of any topic. Wire fingerprints are computed
// locally and cached, since the registry cannot be queried by fingerprint;
// an unknown fingerprint triggers a rate-limited, deduplicated refresh of
// all subjects.
type confluentStore struct {
	client schemaregistry.Client
	log    *zap.Logger
	cfg    ConfluentConfig

	limiter *rate.Limiter
	group   singleflight.Group

	mu            sync.RWMutex
	byFingerprint map[envelope.Fingerprint]hambavro.Schema
	collided      map[envelope.Fingerprint][]string
}

// NewConfluentStore wraps a Schema Registry client. Zero-valued config
// fields fall back to defaults. The client's lifecycle (Close) stays with
// the caller.
func NewConfluentStore(client schemaregistry.Client, log *zap.Logger, cfg ConfluentConfig) Store {
	applyConfluentDefaults(&cfg)
	return &confluentStore{
		client:        client,
		log:           log,
		cfg:           cfg,
		limiter:       rate.NewLimiter(rate.Limit(*cfg.LookupRatePerSec), *cfg.LookupBurst),
		byFingerprint: make(map[envelope.Fingerprint]hambavro.Schema),
		collided:      make(map[envelope.Fingerprint][]string),
	}
}

var _ Store = (*confluentStore)(nil)

func (s *confluentStore) Register(ctx context.Context, schema hambavro.Schema) (envelope.Fingerprint, error) {
	named, ok := schema.(hambavro.NamedSchema)
	if !ok {
		return envelope.Fingerprint{}, fmt.Errorf("cannot register unnamed schema of type %s", schema.Type())
	}
	fp, err := envelope.FingerprintOf(schema)
	if err != nil {
		return envelope.Fingerprint{}, err
	}
	existing, err := s.lookup(fp)
	if err != nil {
		return envelope.Fingerprint{}, err
	}
	if existing != nil && !sameSchema(existing, schema) {
		return envelope.Fingerprint{}, fmt.Errorf("%w: fingerprint %s of %s is already bound to %s",
			ErrFingerprintCollision, fp, named.FullName(), schemaFullName(existing))
	}

	info := schemaregistry.SchemaInfo{
		Schema:     schema.String(),
		SchemaType: "AVRO",
	}
	err = s.retry(ctx, func() error {
		_, err := s.client.Register(named.FullName(), info, false)
		return err
	})
	if err != nil {
		return envelope.Fingerprint{}, fmt.Errorf("failed to register schema %s: %w", named.FullName(), err)
	}

	s.cache(schema, fp)
	return fp, nil
}

func (s *confluentStore) ByFingerprint(ctx context.Context, fp envelope.Fingerprint) (hambavro.Schema, error) {
	if schema, err := s.lookup(fp); schema != nil || err != nil {
		return schema, err
	}

	// Cache miss: refresh once, shared across concurrent callers and
	// throttled so a stream of poison envelopes cannot hammer the registry.
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return nil, s.refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh schema cache: %w", err)
	}

	schema, err := s.lookup(fp)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrSchemaNotFound, fp)
	}
	return schema, nil
}

func (s *confluentStore) ByName(ctx context.Context, fullName string) (hambavro.Schema, error) {
	var metadata schemaregistry.SchemaMetadata
	err := s.retry(ctx, func() error {
		var err error
		metadata, err = s.client.GetLatestSchemaMetadata(fullName)
		return err
	})
	if err != nil {
		if !s.subjectExists(ctx, fullName) {
			return nil, fmt.Errorf("%w: name %s", ErrSchemaNotFound, fullName)
		}
		return nil, fmt.Errorf("failed to fetch latest schema for %s: %w", fullName, err)
	}

	schema, err := hambavro.Parse(metadata.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema for %s: %w", fullName, err)
	}
	fp, err := envelope.FingerprintOf(schema)
	if err != nil {
		return nil, err
	}
	s.cache(schema, fp)
	return schema, nil
}

func (s *confluentStore) Schemas(ctx context.Context) ([]hambavro.Schema, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Values(s.byFingerprint), nil
}

// refresh pulls the latest schema of every subject and indexes it by wire
// fingerprint. Bad subjects are skipped with a warning so one broken schema
// cannot block resolution of the others.
func (s *confluentStore) refresh(ctx context.Context) error {
	var subjects []string
	err := s.retry(ctx, func() error {
		var err error
		subjects, err = s.client.GetAllSubjects()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	for _, subject := range subjects {
		var metadata schemaregistry.SchemaMetadata
		err := s.retry(ctx, func() error {
			var err error
			metadata, err = s.client.GetLatestSchemaMetadata(subject)
			return err
		})
		if err != nil {
			s.log.Warn("skipping subject during schema cache refresh",
				zap.String("subject", subject), zap.Error(err))
			continue
		}

		schema, err := hambavro.Parse(metadata.Schema)
		if err != nil {
			s.log.Warn("skipping unparseable schema",
				zap.String("subject", subject), zap.Error(err))
			continue
		}
		fp, err := envelope.FingerprintOf(schema)
		if err != nil {
			s.log.Warn("skipping schema without fingerprint",
				zap.String("subject", subject), zap.Error(err))
			continue
		}
		s.cache(schema, fp)
	}
	return nil
}

// lookup returns the cached schema, a collision error, or (nil, nil) on a
// plain miss.
func (s *confluentStore) lookup(fp envelope.Fingerprint) (hambavro.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if names := s.collided[fp]; len(names) > 0 {
		return nil, fmt.Errorf("%w: fingerprint %s is claimed by %v", ErrFingerprintCollision, fp, names)
	}
	if schema, ok := s.byFingerprint[fp]; ok {
		return schema, nil
	}
	return nil, nil
}

// cache indexes a schema by fingerprint. A fingerprint claimed by two
// distinct schemas is quarantined: later lookups fail with
// ErrFingerprintCollision instead of resolving to either schema.
func (s *confluentStore) cache(schema hambavro.Schema, fp envelope.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if names := s.collided[fp]; len(names) > 0 {
		if name := schemaFullName(schema); !slices.Contains(names, name) {
			s.collided[fp] = append(names, name)
		}
		return
	}
	if existing, ok := s.byFingerprint[fp]; ok && !sameSchema(existing, schema) {
		s.collided[fp] = []string{schemaFullName(existing), schemaFullName(schema)}
		delete(s.byFingerprint, fp)
		s.log.Error("schema fingerprint collision detected",
			zap.String("fingerprint", fp.String()),
			zap.Strings("schemas", s.collided[fp]))
		return
	}
	s.byFingerprint[fp] = schema
}

// subjectExists distinguishes a missing subject from a transport failure.
// When the listing itself fails, absence cannot be proven and the original
// error should surface instead.
func (s *confluentStore) subjectExists(ctx context.Context, subject string) bool {
	var subjects []string
	err := s.retry(ctx, func() error {
		var err error
		subjects, err = s.client.GetAllSubjects()
		return err
	})
	if err != nil {
		return true
	}
	return slices.Contains(subjects, subject)
}

func (s *confluentStore) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(*s.cfg.RetryInitialInterval),
		backoff.WithMaxElapsedTime(*s.cfg.RetryMaxElapsed),
	), ctx)
	return backoff.Retry(op, policy)
}
