// Package store implements the durable enrollment database: a mapping of
// user id to the enrolled person's profile and face embedding samples.
// The whole store is serialized to a single JSON file after every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aaka8h/face-attend/internal/facematch"
)

// EnrollmentSamples is the number of embedding samples captured per user.
const EnrollmentSamples = 5

var (
	// ErrNotFound is returned when operating on an unknown user id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateID is returned when registering an id that already exists.
	ErrDuplicateID = errors.New("user id already registered")

	// ErrInvalidInput is returned for empty required fields or a wrong
	// embedding sample count.
	ErrInvalidInput = errors.New("invalid input")
)

// EnrolledUser is one registered person. The ID is immutable after creation.
type EnrolledUser struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Department      string      `json:"department"`
	Embeddings      [][]float32 `json:"embeddings"`
	RegisteredAt    time.Time   `json:"registered_at"`
	LastAttendance  *time.Time  `json:"last_attendance,omitempty"`
	TotalAttendance int         `json:"total_attendance"`
}

// Store holds all enrolled users in insertion order and persists them to a
// single JSON file. It is owned by one process; there is no file locking.
type Store struct {
	path  string
	users []*EnrolledUser
	index map[string]*EnrolledUser
}

// Open loads the store from path, or creates an empty one if the file does
// not exist yet. The parent directory is created if needed.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		index: make(map[string]*EnrolledUser),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	var users []*EnrolledUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing store file %s: %w", path, err)
	}

	s.users = users
	for _, u := range users {
		s.index[u.ID] = u
	}
	return s, nil
}

// Create registers a new user. Name and id must be non-empty and exactly
// EnrollmentSamples embedding samples must be provided. The new record is
// persisted before Create returns; on persistence failure the in-memory
// state is rolled back so the caller observes no change.
func (s *Store) Create(id, name, department string, embeddings [][]float32) (*EnrolledUser, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if len(embeddings) != EnrollmentSamples {
		return nil, fmt.Errorf("%w: expected %d embedding samples, got %d",
			ErrInvalidInput, EnrollmentSamples, len(embeddings))
	}
	for i, e := range embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("%w: embedding sample %d is empty", ErrInvalidInput, i)
		}
	}
	if _, ok := s.index[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	// Detach from the caller's buffers.
	samples := make([][]float32, len(embeddings))
	for i, e := range embeddings {
		samples[i] = append([]float32(nil), e...)
	}

	u := &EnrolledUser{
		ID:           id,
		Name:         name,
		Department:   department,
		Embeddings:   samples,
		RegisteredAt: time.Now(),
	}

	s.users = append(s.users, u)
	s.index[id] = u

	if err := s.save(); err != nil {
		s.users = s.users[:len(s.users)-1]
		delete(s.index, id)
		return nil, err
	}
	return u.clone(), nil
}

// Get returns a copy of the user record, or ErrNotFound.
func (s *Store) Get(id string) (*EnrolledUser, error) {
	u, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u.clone(), nil
}

// Delete removes a user. Deleting an unknown id fails with ErrNotFound. On
// persistence failure the record is restored at its original position, so
// the caller observes no change.
func (s *Store) Delete(id string) error {
	removed, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	pos := -1
	for i, u := range s.users {
		if u.ID == id {
			pos = i
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	delete(s.index, id)

	if err := s.save(); err != nil {
		if pos >= 0 {
			s.users = append(s.users[:pos], append([]*EnrolledUser{removed}, s.users[pos:]...)...)
		}
		s.index[id] = removed
		return err
	}
	return nil
}

// RecordAttendance updates the attendance stats for a user after a
// successful mark: sets the last attendance timestamp and increments the
// total counter. Fails with ErrNotFound for unknown ids.
func (s *Store) RecordAttendance(id string, ts time.Time) error {
	u, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prevLast, prevTotal := u.LastAttendance, u.TotalAttendance
	t := ts
	u.LastAttendance = &t
	u.TotalAttendance++

	if err := s.save(); err != nil {
		u.LastAttendance = prevLast
		u.TotalAttendance = prevTotal
		return err
	}
	return nil
}

// All returns a snapshot of every user record in insertion order.
func (s *Store) All() []EnrolledUser {
	out := make([]EnrolledUser, len(s.users))
	for i, u := range s.users {
		out[i] = *u.clone()
	}
	return out
}

// Count returns the number of enrolled users.
func (s *Store) Count() int {
	return len(s.users)
}

// FindByName returns users whose name matches after normalization
// (lowercase, diacritics stripped). Used to warn about enrolling the same
// person twice under a different id.
func (s *Store) FindByName(name string) []EnrolledUser {
	want := facematch.NormalizePersonName(name)
	var out []EnrolledUser
	for _, u := range s.users {
		if facematch.NormalizePersonName(u.Name) == want {
			out = append(out, *u.clone())
		}
	}
	return out
}

// save serializes the full store to a temporary file in the same directory
// and renames it over the previous file, so readers never observe a
// partially written store.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

func (u *EnrolledUser) clone() *EnrolledUser {
	c := *u
	c.Embeddings = make([][]float32, len(u.Embeddings))
	for i, e := range u.Embeddings {
		c.Embeddings[i] = append([]float32(nil), e...)
	}
	if u.LastAttendance != nil {
		t := *u.LastAttendance
		c.LastAttendance = &t
	}
	return &c
}
