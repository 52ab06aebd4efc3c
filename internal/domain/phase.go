package domain

import "time"

// PhaseStatus enumerates the progress states of a phase.
type PhaseStatus string

const (
	PhaseStatusValidee           PhaseStatus = "VALIDEE"
	PhaseStatusEnCours           PhaseStatus = "EN_COURS"
	PhaseStatusEnAttente         PhaseStatus = "EN_ATTENTE"
	PhaseStatusRetard            PhaseStatus = "RETARD"
	PhaseStatusCritique          PhaseStatus = "CRITIQUE"
	PhaseStatusNonDemarree       PhaseStatus = "NON_DEMARREE"
	PhaseStatusValidationRequise PhaseStatus = "VALIDATION_REQUISE"
	PhaseStatusEnRevision        PhaseStatus = "EN_REVISION"
)

// Phase is a discrete stage of an operation with planned dates.
// End is never before Start once a phase has been normalized.
type Phase struct {
	Name        string
	Start       time.Time
	End         time.Time
	Status      PhaseStatus
	Responsible string
	Critical    bool
}

// Duration returns the planned span of the phase.
func (p Phase) Duration() time.Duration {
	return p.End.Sub(p.Start)
}
