// Package store persists observation records in a local bbolt database.
// Records are grouped per subject inside per-kind buckets and keyed by
// timestamp so time-window reads are range scans. Validation happens at this
// boundary; the analysis engines assume well-formed input.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	pkg "github.com/aulanota/insight/pkg"
	"github.com/aulanota/insight/pkg/logx"
)

var (
	bucketEmotions = []byte("emotions")
	bucketSensory  = []byte("sensory")
	bucketSessions = []byte("sessions")
	bucketGoals    = []byte("goals")
)

var kindBuckets = [][]byte{bucketEmotions, bucketSensory, bucketSessions, bucketGoals}

// Store is a bbolt-backed observation database
type Store struct {
	db     *bolt.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the database at path
func Open(path string, logger *logx.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range kindBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store buckets: %w", err)
	}

	logger.Info("Observation store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// recordKey orders records chronologically within a subject bucket; the ID
// suffix keeps same-instant records distinct.
func recordKey(ts time.Time, id string) []byte {
	return []byte(ts.UTC().Format(time.RFC3339Nano) + "|" + id)
}

func (s *Store) put(kind []byte, subjectID string, key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		subjects := tx.Bucket(kind)
		bucket, err := subjects.CreateBucketIfNotExists([]byte(subjectID))
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

// PutEmotion validates and stores an emotion record
func (s *Store) PutEmotion(rec pkg.EmotionRecord) error {
	if err := pkg.ValidateEmotion(&rec); err != nil {
		return err
	}
	return s.put(bucketEmotions, rec.SubjectID, recordKey(rec.Timestamp, rec.ID), rec)
}

// PutSensory validates and stores a sensory record
func (s *Store) PutSensory(rec pkg.SensoryRecord) error {
	if err := pkg.ValidateSensory(&rec); err != nil {
		return err
	}
	return s.put(bucketSensory, rec.SubjectID, recordKey(rec.Timestamp, rec.ID), rec)
}

// PutSession validates and stores a session record
func (s *Store) PutSession(rec pkg.SessionRecord) error {
	if err := pkg.ValidateSession(&rec); err != nil {
		return err
	}
	return s.put(bucketSessions, rec.SubjectID, recordKey(rec.Timestamp, rec.ID), rec)
}

// PutGoal validates and upserts a goal record, keyed by goal ID so progress
// updates overwrite in place.
func (s *Store) PutGoal(rec pkg.GoalRecord) error {
	if err := pkg.ValidateGoal(&rec); err != nil {
		return err
	}
	return s.put(bucketGoals, rec.SubjectID, []byte(rec.ID), rec)
}

// sinceScan visits every record for subjectID with timestamp >= since
func (s *Store) sinceScan(kind []byte, subjectID string, since time.Time, visit func(data []byte) error) error {
	start := []byte(since.UTC().Format(time.RFC3339Nano))
	return s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(kind).Bucket([]byte(subjectID))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Seek(start); k != nil; k, v = c.Next() {
			if err := visit(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// EmotionsSince returns the subject's emotion records at or after since,
// oldest first.
func (s *Store) EmotionsSince(subjectID string, since time.Time) ([]pkg.EmotionRecord, error) {
	var records []pkg.EmotionRecord
	err := s.sinceScan(bucketEmotions, subjectID, since, func(data []byte) error {
		var rec pkg.EmotionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode emotion record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// SensorySince returns the subject's sensory records at or after since
func (s *Store) SensorySince(subjectID string, since time.Time) ([]pkg.SensoryRecord, error) {
	var records []pkg.SensoryRecord
	err := s.sinceScan(bucketSensory, subjectID, since, func(data []byte) error {
		var rec pkg.SensoryRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode sensory record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// SessionsSince returns the subject's session records at or after since
func (s *Store) SessionsSince(subjectID string, since time.Time) ([]pkg.SessionRecord, error) {
	var records []pkg.SessionRecord
	err := s.sinceScan(bucketSessions, subjectID, since, func(data []byte) error {
		var rec pkg.SessionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode session record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// Goals returns every goal for the subject
func (s *Store) Goals(subjectID string) ([]pkg.GoalRecord, error) {
	var records []pkg.GoalRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketGoals).Bucket([]byte(subjectID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var rec pkg.GoalRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode goal record: %w", err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Subjects returns every subject ID that has at least one record of any kind
func (s *Store) Subjects() ([]string, error) {
	seen := make(map[string]struct{})
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, kind := range kindBuckets {
			err := tx.Bucket(kind).ForEachBucket(func(name []byte) error {
				seen[string(name)] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	subjects := make([]string, 0, len(seen))
	for id := range seen {
		subjects = append(subjects, id)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// DeleteSubject removes every record for the subject across all kinds.
// Callers should invalidate the subject's analysis cache afterwards.
func (s *Store) DeleteSubject(subjectID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, kind := range kindBuckets {
			bucket := tx.Bucket(kind)
			if bucket.Bucket([]byte(subjectID)) == nil {
				continue
			}
			if err := bucket.DeleteBucket([]byte(subjectID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete subject %s: %w", subjectID, err)
	}
	s.logger.Info("Subject records deleted", "subject_id", subjectID)
	return nil
}
