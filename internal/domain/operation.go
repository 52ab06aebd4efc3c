package domain

import "time"

// OperationType enumerates the contractual categories of a project.
type OperationType string

const (
	OperationTypeOPP    OperationType = "OPP"
	OperationTypeVEFA   OperationType = "VEFA"
	OperationTypeAMO    OperationType = "AMO"
	OperationTypeMandat OperationType = "MANDAT"
)

// OperationStatus enumerates lifecycle stages of an operation.
type OperationStatus string

const (
	OperationStatusMontage   OperationStatus = "MONTAGE"
	OperationStatusEtudes    OperationStatus = "ETUDES"
	OperationStatusTravaux   OperationStatus = "TRAVAUX"
	OperationStatusReception OperationStatus = "RECEPTION"
	OperationStatusGPA       OperationStatus = "GPA"
	OperationStatusCloturee  OperationStatus = "CLOTUREE"
)

// OperationTypes lists accepted types in display order.
var OperationTypes = []OperationType{
	OperationTypeOPP,
	OperationTypeVEFA,
	OperationTypeAMO,
	OperationTypeMandat,
}

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	for _, known := range OperationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HealthLight is the traffic-light shown next to an operation.
type HealthLight string

const (
	HealthGreen  HealthLight = "vert"
	HealthOrange HealthLight = "orange"
	HealthRed    HealthLight = "rouge"
)

// Operation is a tracked real-estate development project.
type Operation struct {
	ID           string
	Name         string
	Type         OperationType
	Municipality string
	Status       OperationStatus
	Progress     float64
	Budget       float64
	Units        int
	CreatedAt    time.Time
	StartDate    *time.Time
	EndDate      *time.Time
	Blockers     int
	ACO          string
}

// Health derives the traffic-light from the active blocker count.
func (o *Operation) Health() HealthLight {
	switch {
	case o.Blockers <= 0:
		return HealthGreen
	case o.Blockers == 1:
		return HealthOrange
	default:
		return HealthRed
	}
}

// OperationKey is the key used by fixture slices for an operation.
func OperationKey(id string) string {
	return "operation_" + id
}
