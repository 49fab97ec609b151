package fhir

import (
	"strings"

	"github.com/caretide/hospital-api/internal/model"
)

// Patient is the subset of the FHIR R4 Patient resource this system
// publishes.
type Patient struct {
	ResourceType string        `json:"resourceType"`
	Identifier   []Identifier  `json:"identifier,omitempty"`
	Name         []HumanName   `json:"name"`
	Gender       string        `json:"gender,omitempty"`
	BirthDate    string        `json:"birthDate,omitempty"`
	Telecom      []ContactInfo `json:"telecom,omitempty"`
	Active       bool          `json:"active"`
	Deceased     bool          `json:"deceasedBoolean,omitempty"`
}

type Identifier struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

type ContactInfo struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

// Condition is the subset of the FHIR R4 Condition resource used when
// publishing diagnoses.
type Condition struct {
	ResourceType string          `json:"resourceType"`
	Subject      Reference       `json:"subject"`
	Code         CodeableConcept `json:"code"`
	RecordedDate string          `json:"recordedDate,omitempty"`
	Note         []Annotation    `json:"note,omitempty"`
}

type Reference struct {
	Reference string `json:"reference"`
}

type CodeableConcept struct {
	Text string `json:"text"`
}

type Annotation struct {
	Text string `json:"text"`
}

const mrnSystem = "urn:caretide:mrn"

// MapPatient converts an internal patient to its FHIR representation.
func MapPatient(p *model.Patient) *Patient {
	out := &Patient{
		ResourceType: "Patient",
		Name: []HumanName{{
			Family: p.LastName,
			Given:  []string{p.FirstName},
		}},
		Gender:    mapGender(p.Gender),
		BirthDate: p.DateOfBirth.Format("2006-01-02"),
		Active:    p.Status == model.PatientStatusActive,
		Deceased:  p.Status == model.PatientStatusDeceased,
	}

	if p.MRN != nil {
		out.Identifier = append(out.Identifier, Identifier{System: mrnSystem, Value: *p.MRN})
	}
	if p.Phone != "" {
		out.Telecom = append(out.Telecom, ContactInfo{System: "phone", Value: p.Phone})
	}
	if p.Email != "" {
		out.Telecom = append(out.Telecom, ContactInfo{System: "email", Value: p.Email})
	}
	return out
}

// MapCondition converts a medical record's diagnosis to a FHIR
// Condition referencing the already-synced patient.
func MapCondition(rec *model.MedicalRecord, patientFHIRID string) *Condition {
	c := &Condition{
		ResourceType: "Condition",
		Subject:      Reference{Reference: "Patient/" + patientFHIRID},
		Code:         CodeableConcept{Text: rec.Diagnosis},
		RecordedDate: rec.CreatedAt.Format("2006-01-02"),
	}
	if rec.Notes != "" {
		c.Note = append(c.Note, Annotation{Text: rec.Notes})
	}
	return c
}

func mapGender(g string) string {
	switch strings.ToUpper(g) {
	case "M":
		return "male"
	case "F":
		return "female"
	case "O":
		return "other"
	default:
		return "unknown"
	}
}
