package storage

import (
	"fmt"

	"curvefund/internal/domain"
)

// ValidateCampaign checks the fields required before a campaign may be
// inserted. The goal guard matters downstream: reconciliation never
// computes a percentage against a non-positive goal.
func ValidateCampaign(c *domain.Campaign) error {
	if c == nil {
		return fmt.Errorf("%w: nil campaign", ErrInvalidInput)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidInput)
	}
	if c.Goal <= 0 {
		return fmt.Errorf("%w: campaign goal must be positive, got %v", ErrInvalidInput, c.Goal)
	}
	if c.Status == "" {
		c.Status = domain.StatusDrafted
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, c.Status)
	}
	return nil
}

// ValidateUser checks the fields required before a user may be inserted.
func ValidateUser(u *domain.User) error {
	if u == nil {
		return fmt.Errorf("%w: nil user", ErrInvalidInput)
	}
	if u.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	return nil
}
