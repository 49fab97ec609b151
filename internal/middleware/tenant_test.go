package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/caretide/hospital-api/internal/model"
)

type fakeHospitalRepo struct {
	bySubdomain map[string]*model.Hospital
	lookups     int
}

func (f *fakeHospitalRepo) GetBySubdomain(_ context.Context, subdomain string) (*model.Hospital, error) {
	f.lookups++
	return f.bySubdomain[subdomain], nil
}

func (f *fakeHospitalRepo) Create(context.Context, *model.Hospital) error { return nil }
func (f *fakeHospitalRepo) Get(context.Context, uuid.UUID) (*model.Hospital, error) {
	return nil, nil
}
func (f *fakeHospitalRepo) Update(context.Context, *model.Hospital) error    { return nil }
func (f *fakeHospitalRepo) Delete(context.Context, uuid.UUID) error          { return nil }
func (f *fakeHospitalRepo) List(context.Context) ([]*model.Hospital, error)  { return nil, nil }
func (f *fakeHospitalRepo) GetDashboardStats(context.Context, uuid.UUID) (*model.DashboardStats, error) {
	return nil, nil
}
func (f *fakeHospitalRepo) CreateSubscription(context.Context, *model.Subscription) error {
	return nil
}
func (f *fakeHospitalRepo) GetSubscription(context.Context, uuid.UUID) (*model.Subscription, error) {
	return nil, nil
}
func (f *fakeHospitalRepo) UpdateSubscription(context.Context, *model.Subscription) error {
	return nil
}

func tenantRequest(t *testing.T, m *TenantMiddleware, host string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ping", m.Resolve(), func(c *gin.Context) {
		hospital, _ := GetHospital(c)
		c.JSON(http.StatusOK, gin.H{"hospital_id": hospital.ID.String()})
	})

	req := httptest.NewRequest(http.MethodGet, "http://"+host+"/ping", nil)
	req.Host = host
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTenantResolve(t *testing.T) {
	repo := &fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{
		"mercy": {Base: model.Base{ID: uuid.New()}, Subdomain: "mercy", IsActive: true},
	}}
	m := NewTenantMiddleware(repo, "caretide.example")

	w := tenantRequest(t, m, "mercy.caretide.example")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantResolveIsCaseInsensitive(t *testing.T) {
	repo := &fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{
		"mercy": {Base: model.Base{ID: uuid.New()}, Subdomain: "mercy", IsActive: true},
	}}
	m := NewTenantMiddleware(repo, "caretide.example")

	w := tenantRequest(t, m, "MERCY.Caretide.Example:8080")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantUnknownSubdomain(t *testing.T) {
	m := NewTenantMiddleware(&fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{}}, "caretide.example")

	w := tenantRequest(t, m, "ghost.caretide.example")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantBareDomainRejected(t *testing.T) {
	m := NewTenantMiddleware(&fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{}}, "caretide.example")

	w := tenantRequest(t, m, "caretide.example")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantDeactivatedHospital(t *testing.T) {
	repo := &fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{
		"mercy": {Base: model.Base{ID: uuid.New()}, Subdomain: "mercy", IsActive: false},
	}}
	m := NewTenantMiddleware(repo, "caretide.example")

	w := tenantRequest(t, m, "mercy.caretide.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTenantLookupIsCached(t *testing.T) {
	repo := &fakeHospitalRepo{bySubdomain: map[string]*model.Hospital{
		"mercy": {Base: model.Base{ID: uuid.New()}, Subdomain: "mercy", IsActive: true},
	}}
	m := NewTenantMiddleware(repo, "caretide.example")

	tenantRequest(t, m, "mercy.caretide.example")
	tenantRequest(t, m, "mercy.caretide.example")
	assert.Equal(t, 1, repo.lookups)
}
