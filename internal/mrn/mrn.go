// Package mrn assigns medical record numbers: short permanent patient
// identifiers drawn from an alphabet without visually ambiguous
// characters.
package mrn

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/pkg/metrics"
)

// PatientStore is the slice of the patient repository the generator
// needs.
type PatientStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	MRNExists(ctx context.Context, mrn string) (bool, error)
	SetMRN(ctx context.Context, id uuid.UUID, mrn string) (bool, error)
}

// Alphabet omits 0/O, 1/I/L and lowercase to keep MRNs unambiguous when
// read aloud or handwritten.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Length is fixed; existing identifiers never change shape.
const Length = 5

// DefaultMaxAttempts bounds collision retries. The id space holds 31^5
// (~28.6M) values, so hitting the bound means the space is effectively
// saturated or the database is misbehaving.
const DefaultMaxAttempts = 10

var (
	// ErrSpaceExhausted is returned when MaxAttempts consecutive
	// candidates collided.
	ErrSpaceExhausted = errors.New("mrn: id space exhausted")

	// ErrAlreadyAssigned is returned when the patient already has an
	// MRN. Assignment is one-shot; an assigned MRN is never replaced.
	ErrAlreadyAssigned = errors.New("mrn: already assigned")
)

type Generator struct {
	repo        PatientStore
	maxAttempts int
	metrics     *metrics.Metrics

	// randRead is swappable in tests.
	randRead func(b []byte) (int, error)
}

func NewGenerator(repo PatientStore, maxAttempts int, m *metrics.Metrics) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		repo:        repo,
		maxAttempts: maxAttempts,
		metrics:     m,
		randRead:    rand.Read,
	}
}

// Generate returns a candidate MRN. Candidates are uniform over the
// alphabet; uniqueness is the caller's problem.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, Length)
	out := make([]byte, Length)

	for i := 0; i < Length; {
		if _, err := g.randRead(buf[i : i+1]); err != nil {
			return "", fmt.Errorf("mrn: failed to read random bytes: %w", err)
		}
		// Rejection sampling keeps the distribution uniform.
		if int(buf[i]) >= 256-(256%len(Alphabet)) {
			continue
		}
		out[i] = Alphabet[int(buf[i])%len(Alphabet)]
		i++
	}

	return string(out), nil
}

// Assign generates a unique MRN and persists it for the patient. It
// retries on collision up to the configured bound and never overwrites
// an existing assignment.
func (g *Generator) Assign(ctx context.Context, patientID uuid.UUID) (string, error) {
	patient, err := g.repo.Get(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("mrn: failed to load patient: %w", err)
	}
	if patient.MRN != nil {
		return "", ErrAlreadyAssigned
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := g.Generate()
		if err != nil {
			return "", err
		}

		exists, err := g.repo.MRNExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("mrn: uniqueness check failed: %w", err)
		}
		if exists {
			if g.metrics != nil {
				g.metrics.MRNRetries.Inc()
			}
			continue
		}

		// SetMRN is conditional on mrn IS NULL; a false return means a
		// concurrent assignment won.
		set, err := g.repo.SetMRN(ctx, patientID, candidate)
		if err != nil {
			return "", fmt.Errorf("mrn: failed to persist: %w", err)
		}
		if !set {
			return "", ErrAlreadyAssigned
		}

		if g.metrics != nil {
			g.metrics.MRNAssigned.Inc()
		}
		return candidate, nil
	}

	return "", ErrSpaceExhausted
}

// Valid reports whether s is a well-formed MRN.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		found := false
		for _, a := range Alphabet {
			if c == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
