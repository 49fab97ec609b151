package mrn

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
)

type fakePatientStore struct {
	patients map[uuid.UUID]*model.Patient
	taken    map[string]bool
}

func newFakePatientStore() *fakePatientStore {
	return &fakePatientStore{
		patients: make(map[uuid.UUID]*model.Patient),
		taken:    make(map[string]bool),
	}
}

func (f *fakePatientStore) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	return f.patients[id], nil
}

func (f *fakePatientStore) MRNExists(_ context.Context, mrn string) (bool, error) {
	return f.taken[mrn], nil
}

func (f *fakePatientStore) SetMRN(_ context.Context, id uuid.UUID, mrn string) (bool, error) {
	p := f.patients[id]
	if p.MRN != nil {
		return false, nil
	}
	p.MRN = &mrn
	f.taken[mrn] = true
	return true, nil
}

func (f *fakePatientStore) addPatient() uuid.UUID {
	id := uuid.New()
	f.patients[id] = &model.Patient{Base: model.Base{ID: id}}
	return id
}

func TestGenerateShape(t *testing.T) {
	g := NewGenerator(newFakePatientStore(), 0, nil)

	for i := 0; i < 100; i++ {
		mrn, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, mrn, Length)
		assert.True(t, Valid(mrn), "generated %q", mrn)
	}
}

func TestGenerateExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "0O1IL" {
		assert.NotContains(t, Alphabet, string(c))
	}
}

func TestAssign(t *testing.T) {
	store := newFakePatientStore()
	id := store.addPatient()

	g := NewGenerator(store, 0, nil)
	mrn, err := g.Assign(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, Valid(mrn))
	require.NotNil(t, store.patients[id].MRN)
	assert.Equal(t, mrn, *store.patients[id].MRN)
}

func TestAssignIsOneShot(t *testing.T) {
	store := newFakePatientStore()
	id := store.addPatient()

	g := NewGenerator(store, 0, nil)
	first, err := g.Assign(context.Background(), id)
	require.NoError(t, err)

	_, err = g.Assign(context.Background(), id)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.Equal(t, first, *store.patients[id].MRN)
}

func TestAssignRetriesOnCollision(t *testing.T) {
	store := newFakePatientStore()
	id := store.addPatient()

	colliding := &collidingStore{fakePatientStore: store, collisions: 2}
	g := NewGenerator(colliding, 5, nil)

	mrn, err := g.Assign(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, Valid(mrn))
	assert.Equal(t, 3, colliding.checks)
}

type collidingStore struct {
	*fakePatientStore
	collisions int
	checks     int
}

func (c *collidingStore) MRNExists(ctx context.Context, mrn string) (bool, error) {
	c.checks++
	if c.checks <= c.collisions {
		return true, nil
	}
	return c.fakePatientStore.MRNExists(ctx, mrn)
}

func TestAssignSpaceExhausted(t *testing.T) {
	store := newFakePatientStore()
	id := store.addPatient()

	g := NewGenerator(store, 4, nil)
	// Every candidate reads as taken.
	exhausted := &exhaustedStore{fakePatientStore: store}
	g.repo = exhausted

	_, err := g.Assign(context.Background(), id)
	assert.ErrorIs(t, err, ErrSpaceExhausted)
	assert.Equal(t, 4, exhausted.checks)
}

type exhaustedStore struct {
	*fakePatientStore
	checks int
}

func (e *exhaustedStore) MRNExists(_ context.Context, _ string) (bool, error) {
	e.checks++
	return true, nil
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ABC23"))
	assert.False(t, Valid("ABC2"), "too short")
	assert.False(t, Valid("ABC234"), "too long")
	assert.False(t, Valid("ABC20"), "ambiguous zero")
	assert.False(t, Valid("abc23"), "lowercase")
}
