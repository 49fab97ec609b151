package maternity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEDD(t *testing.T) {
	lmp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), EDD(lmp))
}

func TestGestationalWeek(t *testing.T) {
	lmp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, GestationalWeek(lmp, lmp))
	assert.Equal(t, 0, GestationalWeek(lmp, lmp.AddDate(0, 0, 6)))
	assert.Equal(t, 1, GestationalWeek(lmp, lmp.AddDate(0, 0, 7)))
	assert.Equal(t, 12, GestationalWeek(lmp, lmp.AddDate(0, 0, 87)))
	assert.Equal(t, 40, GestationalWeek(lmp, EDD(lmp)))

	// Visits dated before the LMP clamp to zero.
	assert.Equal(t, 0, GestationalWeek(lmp, lmp.AddDate(0, 0, -3)))
}
