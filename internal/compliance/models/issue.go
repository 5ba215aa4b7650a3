package models

import (
	"strings"
	"time"

	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// Severity orders compliance issues. It only ever moves upward; see
// CanEscalate.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

func ParseSeverity(s string) (Severity, error) {
	if _, ok := severityRank[Severity(s)]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown severity: "+s)
	}
	return Severity(s), nil
}

// Rank returns the severity's position in the low to critical order.
func (s Severity) Rank() int { return severityRank[s] }

// IssueStatus is the tracked lifecycle state of a compliance issue.
type IssueStatus string

const (
	IssueOpen         IssueStatus = "open"
	IssueAcknowledged IssueStatus = "acknowledged"
	IssueResolved     IssueStatus = "resolved"
)

// ComplianceIssue is a tracked finding against a client account.
type ComplianceIssue struct {
	ID          id.IssueID  `json:"id"`
	ClientID    id.ClientID `json:"client_id"`
	Severity    Severity    `json:"severity"`
	Status      IssueStatus `json:"status"`
	Description string      `json:"description"`
	DetectedAt  time.Time   `json:"detected_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewIssue opens a compliance issue at the given severity.
func NewIssue(issueID id.IssueID, clientID id.ClientID, severity Severity, description string, now time.Time) (*ComplianceIssue, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if _, ok := severityRank[severity]; !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown severity: "+string(severity))
	}
	return &ComplianceIssue{
		ID:          issueID,
		ClientID:    clientID,
		Severity:    severity,
		Status:      IssueOpen,
		Description: description,
		DetectedAt:  now,
		UpdatedAt:   now,
	}, nil
}

// DaysOpen is always derived, never stored: whole days between detection
// and now, floored.
func (i *ComplianceIssue) DaysOpen(now time.Time) int {
	d := int(now.Sub(i.DetectedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// CanAcknowledge permits acknowledgement from open only.
func (i *ComplianceIssue) CanAcknowledge() error {
	if i.Status != IssueOpen {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot acknowledge a "+string(i.Status)+" issue")
	}
	return nil
}

func (i *ComplianceIssue) ApplyAcknowledgement(now time.Time) {
	i.Status = IssueAcknowledged
	i.UpdatedAt = now
}

// CanEscalate enforces strictly increasing severity on a live issue.
// Re-asserting the current severity is rejected the same as lowering it.
func (i *ComplianceIssue) CanEscalate(to Severity) error {
	if i.Status == IssueResolved {
		return dErrors.New(dErrors.CodeInvalidTransition, "cannot escalate a resolved issue")
	}
	if _, ok := severityRank[to]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown severity: "+string(to))
	}
	if to.Rank() <= i.Severity.Rank() {
		return dErrors.New(dErrors.CodeInvalidEscalation,
			"severity can only increase: "+string(i.Severity)+" to "+string(to))
	}
	return nil
}

func (i *ComplianceIssue) ApplyEscalation(to Severity, now time.Time) {
	i.Severity = to
	i.UpdatedAt = now
}

// CanResolve permits resolution from any non-resolved status.
func (i *ComplianceIssue) CanResolve() error {
	if i.Status == IssueResolved {
		return dErrors.New(dErrors.CodeInvalidTransition, "issue is already resolved")
	}
	return nil
}

func (i *ComplianceIssue) ApplyResolution(now time.Time) {
	i.Status = IssueResolved
	i.ResolvedAt = &now
	i.UpdatedAt = now
}
