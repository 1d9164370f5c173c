package guard

import "github.com/pixil98/go-armory/internal/armory"

// Denial is returned when a flow is refused. Message is what the player was
// told; Reason is set when the refusal came from a mark attempt.
type Denial struct {
	Reason  armory.DenyReason
	Message string
}

func (d *Denial) Error() string {
	return d.Message
}

var markDenyMessages = map[armory.DenyReason]string{
	armory.DenyStackedItem:           "You can't use a stacked weapon. Split the stack first.",
	armory.DenyExclusiveConflict:     "You already have a marked weapon from an exclusive group.",
	armory.DenyPoolTotalLimit:        "That group's shared limit is full.",
	armory.DenyPoolMemberCap:         "You've reached the per-weapon cap for this group.",
	armory.DenyPerWeaponLimit:        "You've reached the limit for this weapon.",
	armory.DenyMarkBlockedInCombat:   "Marking is disabled while you're in combat.",
	armory.DenyRemarkBlockedInCombat: "You unmarked during combat; re-marking is blocked until combat ends.",
}

func markDenyMessage(r armory.DenyReason) string {
	if msg, ok := markDenyMessages[r]; ok {
		return msg
	}
	return "Couldn't mark this weapon right now."
}
