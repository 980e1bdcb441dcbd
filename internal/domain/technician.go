package domain

import (
	"time"
)

// WorkOrderStatus represents the status of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusPending    WorkOrderStatus = "pending"
	WorkOrderStatusAssigned   WorkOrderStatus = "assigned"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

// Technician represents a field worker
type Technician struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Zone      string `json:"zone"`
	Specialty string `json:"specialty"`
}

// WorkOrder represents a unit of field service
type WorkOrder struct {
	ID                   string          `json:"id"`
	CreatedAt            time.Time       `json:"created_at"`
	Specialty            string          `json:"specialty"`
	Zone                 string          `json:"zone"`
	Status               WorkOrderStatus `json:"status"`
	AssignedTechnicianID string          `json:"assigned_technician_id,omitempty"`
	AssignedAt           *time.Time      `json:"assigned_at,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// IsAssigned reports whether the order has a technician
func (o WorkOrder) IsAssigned() bool {
	return o.AssignedTechnicianID != ""
}

// ResolutionDays returns the elapsed days from assignment (creation when the
// assignment time is unknown) to completion. ok is false when the order has
// not completed or carries no completion timestamp.
func (o WorkOrder) ResolutionDays() (days float64, ok bool) {
	if o.Status != WorkOrderStatusCompleted || o.CompletedAt == nil {
		return 0, false
	}
	start := o.CreatedAt
	if o.AssignedAt != nil {
		start = *o.AssignedAt
	}
	elapsed := o.CompletedAt.Sub(start)
	if elapsed < 0 {
		return 0, true
	}
	return elapsed.Hours() / 24, true
}
