// Package lifecycle owns the objective status transition table. Every status
// change goes through Transition so the rules live in one place.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/arnold/okrs-api/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("role cannot perform this transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

var statuses = map[string]bool{
	models.StatusDraft:           true,
	models.StatusPendingApproval: true,
	models.StatusApproved:        true,
	models.StatusRejected:        true,
}

// approvalFlow applies to company, department and team objectives.
var approvalFlow = map[string][]string{
	models.StatusDraft:           {models.StatusPendingApproval},
	models.StatusPendingApproval: {models.StatusApproved, models.StatusRejected},
}

// signOff lists target statuses that need a manager or admin.
var signOff = map[string]bool{
	models.StatusApproved: true,
	models.StatusRejected: true,
}

// Allowed reports the statuses reachable from the current one.
func Allowed(objectiveType, from string) []string {
	if objectiveType == models.ObjectivePersonal {
		out := make([]string, 0, len(statuses)-1)
		for _, s := range []string{models.StatusDraft, models.StatusPendingApproval, models.StatusApproved, models.StatusRejected} {
			if s != from {
				out = append(out, s)
			}
		}
		return out
	}
	return approvalFlow[from]
}

// Transition validates moving an objective from one status to another for a
// caller with the given role.
func Transition(objectiveType, from, to, role string) error {
	if !statuses[to] {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return fmt.Errorf("%w: already %s", ErrInvalidTransition, to)
	}

	// Personal objectives have no approval gate.
	if objectiveType == models.ObjectivePersonal {
		return nil
	}

	permitted := false
	for _, s := range approvalFlow[from] {
		if s == to {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if signOff[to] && role != models.RoleManager && role != models.RoleAdmin {
		return fmt.Errorf("%w: %s requires manager or admin", ErrForbidden, to)
	}
	return nil
}
