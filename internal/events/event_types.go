package events

import (
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOperationCreated EventType = "operation_created"
	EventOperationClosed  EventType = "operation_closed"
	EventAmendmentCreated EventType = "amendment_created"
	EventNoticeGenerated  EventType = "notice_generated"
	EventNoticeReminded   EventType = "notice_reminded"
	EventUtilityReminded  EventType = "utility_reminded"
	EventClaimRegistered  EventType = "claim_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	OperationID string      `json:"operation_id"`
	Actor       string      `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// OperationCreatedPayload payload.
type OperationCreatedPayload struct {
	Name   string               `json:"name"`
	Type   domain.OperationType `json:"type"`
	Phases int                  `json:"phases"`
}

// AmendmentCreatedPayload payload.
type AmendmentCreatedPayload struct {
	Number       string  `json:"number"`
	Reason       string  `json:"reason"`
	BudgetImpact float64 `json:"budget_impact"`
	DelayImpact  int     `json:"delay_impact"`
}

// NoticePayload payload for generated and reminded notices.
type NoticePayload struct {
	Reference       string `json:"reference"`
	Recipient       string `json:"recipient"`
	ConformityDelay int    `json:"conformity_delay"`
}

// UtilityRemindedPayload payload.
type UtilityRemindedPayload struct {
	Provider     domain.UtilityProvider `json:"provider"`
	PendingSteps int                    `json:"pending_steps"`
}

// ClaimRegisteredPayload payload.
type ClaimRegisteredPayload struct {
	Unit    string `json:"unit"`
	Type    string `json:"type"`
	Urgency string `json:"urgency"`
}
