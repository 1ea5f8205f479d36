package shared

import "fmt"

// MaxActorIDLength matches the width of the created_by, operator_id and actor_id columns
const MaxActorIDLength = 50

// ValidateActorID rejects actor ids that do not fit the actor columns.
// An empty id is allowed and is recorded as the system actor.
func ValidateActorID(actorID string) error {
	if len(actorID) > MaxActorIDLength {
		return NewValidationError("actor_id", fmt.Sprintf("must be at most %d characters", MaxActorIDLength))
	}
	return nil
}
