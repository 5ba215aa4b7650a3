// Package domain holds the shared value types of the payroll engine: typed
// identifiers, service tiers, and the capability/requirement vocabulary used
// by eligibility evaluation.
//
// IDs are distinct uuid-backed types so a SessionID can never be passed where
// a ClientID is expected. Construct them via the Parse* functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "paylane/pkg/domain-errors"
)

// ClientID identifies a payroll client (the employer account).
type ClientID uuid.UUID

// MemberID identifies a roster member (employee or contractor).
type MemberID uuid.UUID

// SessionID identifies an advisory session booking.
type SessionID uuid.UUID

// IssueID identifies a compliance issue.
type IssueID uuid.UUID

// WindowID identifies an administrator-defined blackout window.
type WindowID uuid.UUID

func (id ClientID) String() string  { return uuid.UUID(id).String() }
func (id MemberID) String() string  { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id IssueID) String() string   { return uuid.UUID(id).String() }
func (id WindowID) String() string  { return uuid.UUID(id).String() }

func (id ClientID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id IssueID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id WindowID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// The typed IDs marshal as canonical uuid strings. Defined types do not
// inherit uuid.UUID's encoding methods, so each type carries its own.

func (id ClientID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id MemberID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id IssueID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id WindowID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *ClientID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ClientID(u)
	return nil
}

func (id *MemberID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = MemberID(u)
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id *IssueID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = IssueID(u)
	return nil
}

func (id *WindowID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = WindowID(u)
	return nil
}

// parseUUID enforces the shared ID invariant: valid, non-empty, non-nil.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}

// ParseClientID constructs a ClientID from external input.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ClientID{}, err
	}
	return ClientID(u), nil
}

// ParseMemberID constructs a MemberID from external input.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return MemberID{}, err
	}
	return MemberID(u), nil
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// ParseIssueID constructs an IssueID from external input.
func ParseIssueID(s string) (IssueID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return IssueID{}, err
	}
	return IssueID(u), nil
}

// ParseWindowID constructs a WindowID from external input.
func ParseWindowID(s string) (WindowID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return WindowID{}, err
	}
	return WindowID(u), nil
}
