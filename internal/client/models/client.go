package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
)

// ClientStatus is the soft lifecycle state of a client account. Clients are
// never hard-deleted; suspension is the strongest transition available.
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusSuspended ClientStatus = "suspended"
)

// MemberClassification distinguishes employees from contractors. Only the
// count and classification matter to the engine; the rest of a member's
// profile is opaque payload owned by the host application.
type MemberClassification string

const (
	ClassificationEmployee   MemberClassification = "employee"
	ClassificationContractor MemberClassification = "contractor"
)

var validClassifications = map[MemberClassification]bool{
	ClassificationEmployee:   true,
	ClassificationContractor: true,
}

// ParseMemberClassification constructs a classification from external input.
func ParseMemberClassification(s string) (MemberClassification, error) {
	c := MemberClassification(s)
	if !validClassifications[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "classification must be employee or contractor")
	}
	return c, nil
}

// Member is a roster entry owned by composition: it has no life outside its
// client.
type Member struct {
	ID             id.MemberID          `json:"id"`
	Classification MemberClassification `json:"classification"`
	Compensation   decimal.Decimal      `json:"compensation"`
	AddedAt        time.Time            `json:"added_at"`
}

// Subscription is an active service tier with its commitment window.
//
// Invariant: an active subscription cannot be deactivated before
// CommittedUntil.
type Subscription struct {
	Tier             id.ServiceTier `json:"tier"`
	StartDate        time.Time      `json:"start_date"`
	CommitmentMonths int            `json:"commitment_months"`
}

// CommittedUntil is the first instant the subscription may be deactivated.
func (s Subscription) CommittedUntil() time.Time {
	return s.StartDate.AddDate(0, s.CommitmentMonths, 0)
}

// PaymentInstrument records presence plus a last-4 display reference. The
// instrument itself lives with the payment collaborator.
type PaymentInstrument struct {
	Present bool   `json:"present"`
	Last4   string `json:"last4,omitempty"`
}

// Client is the aggregate root for a payroll client: its roster, its tier
// subscriptions, and its payment-instrument presence.
//
// Invariants:
//   - CompanyName is non-empty and at most 128 characters
//   - Status transitions: active ↔ suspended only
//   - At most one subscription per tier
//   - An active subscription cannot be deactivated inside its commitment window
type Client struct {
	ID            id.ClientID       `json:"id"`
	CompanyName   string            `json:"company_name"`
	Status        ClientStatus      `json:"status"`
	Members       []Member          `json:"members"`
	Subscriptions []Subscription    `json:"subscriptions"`
	Payment       PaymentInstrument `json:"payment"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewClient constructs an active client with an empty roster.
func NewClient(clientID id.ClientID, companyName string, now time.Time) (*Client, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name cannot be empty")
	}
	if len(companyName) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name must be 128 characters or less")
	}
	return &Client{
		ID:          clientID,
		CompanyName: companyName,
		Status:      ClientStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// RosterSize returns the member headcount regardless of classification.
func (c *Client) RosterSize() int {
	return len(c.Members)
}

// HasTier reports whether the tier is currently subscribed.
func (c *Client) HasTier(tier id.ServiceTier) bool {
	for _, s := range c.Subscriptions {
		if s.Tier == tier {
			return true
		}
	}
	return false
}

// ActiveTiers returns the subscribed tier set.
func (c *Client) ActiveTiers() map[id.ServiceTier]bool {
	tiers := make(map[id.ServiceTier]bool, len(c.Subscriptions))
	for _, s := range c.Subscriptions {
		tiers[s.Tier] = true
	}
	return tiers
}

// AddMember appends a roster entry.
func (c *Client) AddMember(m Member, now time.Time) {
	c.Members = append(c.Members, m)
	c.UpdatedAt = now
}

// RemoveMember drops a roster entry by ID.
func (c *Client) RemoveMember(memberID id.MemberID, now time.Time) error {
	for i, m := range c.Members {
		if m.ID == memberID {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			c.UpdatedAt = now
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "member not found")
}

// CanActivateTier checks whether a new subscription for the tier is allowed.
func (c *Client) CanActivateTier(tier id.ServiceTier) error {
	if !tier.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid tier")
	}
	if c.HasTier(tier) {
		return dErrors.New(dErrors.CodeInvariantViolation, "tier is already active")
	}
	return nil
}

// ApplyTierActivation starts a subscription with its commitment window.
// Call CanActivateTier first to validate.
func (c *Client) ApplyTierActivation(tier id.ServiceTier, commitmentMonths int, now time.Time) {
	if commitmentMonths <= 0 {
		commitmentMonths = id.DefaultCommitmentMonths
	}
	c.Subscriptions = append(c.Subscriptions, Subscription{
		Tier:             tier,
		StartDate:        now,
		CommitmentMonths: commitmentMonths,
	})
	c.UpdatedAt = now
}

// CanDeactivateTier checks the commitment-window invariant.
func (c *Client) CanDeactivateTier(tier id.ServiceTier, now time.Time) error {
	for _, s := range c.Subscriptions {
		if s.Tier != tier {
			continue
		}
		if now.Before(s.CommittedUntil()) {
			return dErrors.New(dErrors.CodeConflict, "tier is inside its commitment window")
		}
		return nil
	}
	return dErrors.New(dErrors.CodeNotFound, "tier is not active")
}

// ApplyTierDeactivation removes the subscription. Call CanDeactivateTier
// first to validate.
func (c *Client) ApplyTierDeactivation(tier id.ServiceTier, now time.Time) {
	for i, s := range c.Subscriptions {
		if s.Tier == tier {
			c.Subscriptions = append(c.Subscriptions[:i], c.Subscriptions[i+1:]...)
			break
		}
	}
	c.UpdatedAt = now
}

// LinkPaymentInstrument records that an instrument is on file.
func (c *Client) LinkPaymentInstrument(last4 string, now time.Time) error {
	last4 = strings.TrimSpace(last4)
	if len(last4) != 4 {
		return dErrors.New(dErrors.CodeValidation, "last4 must be exactly 4 digits")
	}
	for _, r := range last4 {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeValidation, "last4 must be exactly 4 digits")
		}
	}
	c.Payment = PaymentInstrument{Present: true, Last4: last4}
	c.UpdatedAt = now
	return nil
}

// CanSuspend checks the status transition to suspended.
func (c *Client) CanSuspend() error {
	if c.Status == ClientStatusSuspended {
		return dErrors.New(dErrors.CodeInvariantViolation, "client is already suspended")
	}
	return nil
}

// ApplySuspension transitions the client to suspended.
func (c *Client) ApplySuspension(now time.Time) {
	c.Status = ClientStatusSuspended
	c.UpdatedAt = now
}

// CanReactivate checks the status transition back to active.
func (c *Client) CanReactivate() error {
	if c.Status == ClientStatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "client is already active")
	}
	return nil
}

// ApplyReactivation transitions the client to active.
func (c *Client) ApplyReactivation(now time.Time) {
	c.Status = ClientStatusActive
	c.UpdatedAt = now
}

// Clone returns a deep copy so store reads never alias store state.
func (c *Client) Clone() *Client {
	cp := *c
	cp.Members = append([]Member(nil), c.Members...)
	cp.Subscriptions = append([]Subscription(nil), c.Subscriptions...)
	return &cp
}
