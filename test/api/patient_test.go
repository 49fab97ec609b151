package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientFlow(t *testing.T) {
	createResp := makeRequest("POST", "/patients", map[string]interface{}{
		"first_name":    "Amina",
		"last_name":     uniqueName("Okoro"),
		"date_of_birth": "1990-04-12T00:00:00Z",
		"gender":        "F",
		"phone":         "+2348012345678",
	}, authToken)
	require.True(t, createResp.IsSuccess(), "failed to create patient: %s", createResp.Message)

	patientID = createResp.GetString("id")
	require.NotEmpty(t, patientID)

	mrn := createResp.GetString("mrn")
	require.Len(t, mrn, 5, "expected a 5 character MRN, got %q", mrn)
	for _, r := range mrn {
		assert.NotContains(t, "01IlO", string(r))
	}

	getResp := makeRequest("GET", fmt.Sprintf("/patients/%s", patientID), nil, authToken)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, mrn, getResp.GetString("mrn"))

	byMRNResp := makeRequest("GET", fmt.Sprintf("/patients/mrn/%s", mrn), nil, authToken)
	require.True(t, byMRNResp.IsSuccess())
	assert.Equal(t, patientID, byMRNResp.GetString("id"))

	// MRN is permanent; an update must not touch it.
	updateResp := makeRequest("PUT", fmt.Sprintf("/patients/%s", patientID), map[string]interface{}{
		"phone": "+2348098765432",
	}, authToken)
	require.True(t, updateResp.IsSuccess())
	assert.Equal(t, mrn, updateResp.GetString("mrn"))
}

func TestPatientUnknownMRN(t *testing.T) {
	resp := makeRequest("GET", "/patients/mrn/ZZZZ9", nil, authToken)
	assert.False(t, resp.IsSuccess())
}
