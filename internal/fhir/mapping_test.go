package fhir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
)

func TestMapPatient(t *testing.T) {
	mrn := "ABC23"
	p := &model.Patient{
		MRN:         &mrn,
		FirstName:   "Amina",
		LastName:    "Okafor",
		DateOfBirth: time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		Phone:       "+2348012345678",
		Email:       "amina@example.com",
		Status:      model.PatientStatusActive,
	}

	out := MapPatient(p)

	assert.Equal(t, "Patient", out.ResourceType)
	require.Len(t, out.Name, 1)
	assert.Equal(t, "Okafor", out.Name[0].Family)
	assert.Equal(t, []string{"Amina"}, out.Name[0].Given)
	assert.Equal(t, "female", out.Gender)
	assert.Equal(t, "1988-04-12", out.BirthDate)
	assert.True(t, out.Active)
	assert.False(t, out.Deceased)

	require.Len(t, out.Identifier, 1)
	assert.Equal(t, mrnSystem, out.Identifier[0].System)
	assert.Equal(t, "ABC23", out.Identifier[0].Value)

	require.Len(t, out.Telecom, 2)
	assert.Equal(t, "phone", out.Telecom[0].System)
	assert.Equal(t, "email", out.Telecom[1].System)
}

func TestMapPatientWithoutMRN(t *testing.T) {
	p := &model.Patient{
		FirstName:   "Test",
		LastName:    "Person",
		DateOfBirth: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "O",
		Status:      model.PatientStatusDeceased,
	}

	out := MapPatient(p)
	assert.Empty(t, out.Identifier)
	assert.Equal(t, "other", out.Gender)
	assert.True(t, out.Deceased)
	assert.False(t, out.Active)
}

func TestMapCondition(t *testing.T) {
	rec := &model.MedicalRecord{
		Base:      model.Base{CreatedAt: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)},
		Diagnosis: "Type 2 diabetes mellitus",
		Notes:     "Dietary counselling given",
	}

	out := MapCondition(rec, "fhir-123")

	assert.Equal(t, "Condition", out.ResourceType)
	assert.Equal(t, "Patient/fhir-123", out.Subject.Reference)
	assert.Equal(t, "Type 2 diabetes mellitus", out.Code.Text)
	assert.Equal(t, "2026-02-03", out.RecordedDate)
	require.Len(t, out.Note, 1)
}
