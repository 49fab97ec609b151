package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan string

const (
	PlanBasic      SubscriptionPlan = "basic"
	PlanPremium    SubscriptionPlan = "premium"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// Hospital is a tenant. The subdomain is the slug that routes requests to
// it and is always stored lowercase.
type Hospital struct {
	Base
	Name        string           `db:"name" json:"name"`
	Subdomain   string           `db:"subdomain" json:"subdomain"`
	AdminEmail  string           `db:"admin_email" json:"admin_email"`
	Phone       string           `db:"phone" json:"phone"`
	Address     string           `db:"address" json:"address"`
	Website     string           `db:"website" json:"website"`
	Description string           `db:"description" json:"description"`
	Plan        SubscriptionPlan `db:"plan" json:"plan"`
	Branches    int              `db:"branches" json:"branches"`
	IsActive    bool             `db:"is_active" json:"is_active"`
}

type Subscription struct {
	Base
	HospitalID uuid.UUID        `db:"hospital_id" json:"hospital_id"`
	Plan       SubscriptionPlan `db:"plan" json:"plan"`
	StartDate  time.Time        `db:"start_date" json:"start_date"`
	EndDate    *time.Time       `db:"end_date" json:"end_date,omitempty"`
	IsActive   bool             `db:"is_active" json:"is_active"`
}

type CreateHospitalRequest struct {
	Name          string           `json:"name" binding:"required"`
	AdminEmail    string           `json:"admin_email" binding:"required,email"`
	AdminPassword string           `json:"admin_password" binding:"required,min=8"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	Website       string           `json:"website"`
	Description   string           `json:"description"`
	Plan          SubscriptionPlan `json:"plan" binding:"omitempty,oneof=basic premium enterprise"`
}

type UpdateHospitalRequest struct {
	Name        *string           `json:"name"`
	Phone       *string           `json:"phone"`
	Address     *string           `json:"address"`
	Website     *string           `json:"website"`
	Description *string           `json:"description"`
	Plan        *SubscriptionPlan `json:"plan" binding:"omitempty,oneof=basic premium enterprise"`
	IsActive    *bool             `json:"is_active"`
}

// DashboardStats backs the tenant dashboard endpoint.
type DashboardStats struct {
	TotalPatients     int64 `db:"total_patients" json:"total_patients"`
	TotalAppointments int64 `db:"total_appointments" json:"total_appointments"`
	OpenBills         int64 `db:"open_bills" json:"open_bills"`
	ActiveChats       int64 `db:"active_chats" json:"active_chats"`
}
