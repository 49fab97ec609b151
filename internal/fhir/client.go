// Package fhir pushes clinical data to an external FHIR R4 server and
// remembers the remote resource ids.
package fhir

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/caretide/hospital-api/pkg/metrics"
)

type Config struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
}

// Client is a thin FHIR R4 REST client covering the create and update
// interactions the sync worker needs.
type Client struct {
	client  *resty.Client
	metrics *metrics.Metrics
}

func NewClient(cfg Config, m *metrics.Metrics) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Content-Type", "application/fhir+json").
		SetHeader("Accept", "application/fhir+json")
	if cfg.Token != "" {
		c.SetHeader("Authorization", "Bearer "+cfg.Token)
	}
	return &Client{client: c, metrics: m}
}

type resourceResponse struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// CreateResource POSTs a new resource and returns the server-assigned id.
func (c *Client) CreateResource(ctx context.Context, resourceType string, resource interface{}) (string, error) {
	var result resourceResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(resource).
		SetResult(&result).
		Post("/" + resourceType)

	if err != nil {
		c.count(resourceType, "error")
		return "", fmt.Errorf("fhir create %s failed: %w", resourceType, err)
	}
	if resp.IsError() {
		c.count(resourceType, "error")
		return "", fmt.Errorf("fhir create %s rejected: status %d", resourceType, resp.StatusCode())
	}
	if result.ID == "" {
		c.count(resourceType, "error")
		return "", fmt.Errorf("fhir create %s returned no id", resourceType)
	}

	c.count(resourceType, "created")
	return result.ID, nil
}

// UpdateResource PUTs a resource at a known id.
func (c *Client) UpdateResource(ctx context.Context, resourceType, id string, resource interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(resource).
		Put(fmt.Sprintf("/%s/%s", resourceType, id))

	if err != nil {
		c.count(resourceType, "error")
		return fmt.Errorf("fhir update %s/%s failed: %w", resourceType, id, err)
	}
	if resp.IsError() {
		c.count(resourceType, "error")
		return fmt.Errorf("fhir update %s/%s rejected: status %d", resourceType, id, resp.StatusCode())
	}

	c.count(resourceType, "updated")
	return nil
}

func (c *Client) count(resource, status string) {
	if c.metrics != nil {
		c.metrics.FHIRSyncs.WithLabelValues(resource, status).Inc()
	}
}
