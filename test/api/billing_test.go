package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingFlow(t *testing.T) {
	createResp := makeRequest("POST", "/patients", map[string]interface{}{
		"first_name":    "Chidi",
		"last_name":     uniqueName("Eze"),
		"date_of_birth": "1985-09-01T00:00:00Z",
		"gender":        "M",
	}, authToken)
	require.True(t, createResp.IsSuccess(), "failed to create patient: %s", createResp.Message)
	billPatientID := createResp.GetString("id")
	defer makeRequest("DELETE", fmt.Sprintf("/patients/%s", billPatientID), nil, authToken)

	billResp := makeRequest("POST", "/bills", map[string]interface{}{
		"patient_id": billPatientID,
		"currency":   "NGN",
		"items": []map[string]interface{}{
			{"description": "Consultation", "quantity": 1, "unit_cents": 50000},
			{"description": "Lab panel", "quantity": 2, "unit_cents": 15000},
		},
	}, authToken)
	require.True(t, billResp.IsSuccess(), "failed to create bill: %s", billResp.Message)
	billID := billResp.GetString("id")
	require.NotEmpty(t, billID)

	// Totals come from the line items, and drafts carry no invoice
	// number yet.
	assert.Equal(t, float64(80000), billResp.Data["total_cents"])
	assert.Equal(t, "draft", billResp.Data["status"])
	assert.Nil(t, billResp.Data["invoice_number"])

	issueResp := makeRequest("POST", fmt.Sprintf("/bills/%s/issue", billID), nil, authToken)
	require.True(t, issueResp.IsSuccess(), "failed to issue bill: %s", issueResp.Message)
	assert.Equal(t, "issued", issueResp.Data["status"])
	assert.NotNil(t, issueResp.Data["invoice_number"])

	// Overpayment is rejected.
	overResp := makeRequest("POST", fmt.Sprintf("/bills/%s/payments", billID), map[string]interface{}{
		"amount_cents": 90000,
		"method":       "cash",
	}, authToken)
	assert.False(t, overResp.IsSuccess())

	payResp := makeRequest("POST", fmt.Sprintf("/bills/%s/payments", billID), map[string]interface{}{
		"amount_cents": 80000,
		"method":       "cash",
	}, authToken)
	require.True(t, payResp.IsSuccess(), "failed to record payment: %s", payResp.Message)
	assert.Equal(t, "paid", payResp.Data["status"])

	// A settled bill cannot be voided.
	voidResp := makeRequest("POST", fmt.Sprintf("/bills/%s/void", billID), nil, authToken)
	assert.False(t, voidResp.IsSuccess())
}
