package prescription

import (
	"fmt"

	"github.com/atelier/backend/internal/domain/shared"
)

// Status is the lifecycle stage of a prescription
type Status string

const (
	StatusEnCours  Status = "EN_COURS"
	StatusValide   Status = "VALIDE"
	StatusCommande Status = "COMMANDE"
	StatusLivre    Status = "LIVRE"
	StatusAnnule   Status = "ANNULE"
)

// transitions lists the allowed next states of each status
var transitions = map[Status][]Status{
	StatusEnCours:  {StatusValide, StatusAnnule},
	StatusValide:   {StatusCommande, StatusAnnule},
	StatusCommande: {StatusLivre, StatusAnnule},
	StatusLivre:    nil,
	StatusAnnule:   nil,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether s -> next is allowed. Staying put is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition-coded errors for illegal moves
func (s Status) ValidateTransition(next Status) error {
	if !next.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown status %q", next))
	}
	if !s.CanTransitionTo(next) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move a prescription from %s to %s", s, next))
	}
	return nil
}
