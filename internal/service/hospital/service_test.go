package hospital

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubdomain(t *testing.T) {
	cases := map[string]string{
		"Mercy General":           "mercy-general",
		"  St. Luke's  Hospital ": "st-lukes-hospital",
		"ACME":                    "acme",
		"Hôpital Général":         "hpital-gnral",
		"---":                     "",
	}
	for name, want := range cases {
		assert.Equal(t, want, Subdomain(name), name)
	}
}
