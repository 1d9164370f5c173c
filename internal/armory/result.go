package armory

import "github.com/pixil98/go-armory/internal/policy"

// DenyReason explains why a mark attempt was refused.
type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyNotManaged
	DenyStackedItem
	DenyExclusiveConflict
	DenyPoolTotalLimit
	DenyPoolMemberCap
	DenyPerWeaponLimit
	DenyRemarkBlockedInCombat
	DenyMarkBlockedInCombat
	DenyUnknownError
)

var denyReasonNames = map[DenyReason]string{
	DenyNone:                  "NONE",
	DenyNotManaged:            "NOT_MANAGED",
	DenyStackedItem:           "STACKED_ITEM",
	DenyExclusiveConflict:     "EXCLUSIVE_CONFLICT",
	DenyPoolTotalLimit:        "POOL_TOTAL_LIMIT",
	DenyPoolMemberCap:         "POOL_MEMBER_CAP",
	DenyPerWeaponLimit:        "PER_WEAPON_LIMIT",
	DenyRemarkBlockedInCombat: "REMARK_BLOCKED_IN_COMBAT",
	DenyMarkBlockedInCombat:   "MARK_BLOCKED_IN_COMBAT",
	DenyUnknownError:          "UNKNOWN_ERROR",
}

func (r DenyReason) String() string {
	if s, ok := denyReasonNames[r]; ok {
		return s
	}
	return "UNKNOWN_ERROR"
}

// MarkResult is the outcome of a mark attempt. Reason is DenyNone when allowed.
type MarkResult struct {
	Allowed bool
	Reason  DenyReason
}

func allow() MarkResult {
	return MarkResult{Allowed: true}
}

func deny(r DenyReason) MarkResult {
	return MarkResult{Reason: r}
}

// UnmarkResult reports whether an unmark changed the item.
type UnmarkResult struct {
	Changed bool
}

// UnmarkCause records which flow removed a mark.
type UnmarkCause int

const (
	CauseAPI UnmarkCause = iota
	CausePlayerDrop
	CausePutInContainer
	CauseIndirectTransfer
	CauseItemFrame
	CauseDecoratedContainer
	CauseHatSlotGuard
	CauseDeathDrop
	CauseDeathKeepInventory
	CauseSpecialContainer
	CauseOther
)

var unmarkCauseNames = map[UnmarkCause]string{
	CauseAPI:                "API",
	CausePlayerDrop:         "PLAYER_DROP",
	CausePutInContainer:     "PUT_IN_CONTAINER",
	CauseIndirectTransfer:   "INDIRECT_TRANSFER",
	CauseItemFrame:          "ITEM_FRAME",
	CauseDecoratedContainer: "DECORATED_CONTAINER",
	CauseHatSlotGuard:       "HAT_SLOT_GUARD",
	CauseDeathDrop:          "DEATH_DROP",
	CauseDeathKeepInventory: "DEATH_KEEP_INVENTORY",
	CauseSpecialContainer:   "SPECIAL_CONTAINER",
	CauseOther:              "OTHER",
}

func (c UnmarkCause) String() string {
	if s, ok := unmarkCauseNames[c]; ok {
		return s
	}
	return "OTHER"
}

// GroupInfo is a read-only view of a group as it applies to one title.
// Unlimited values are reported as policy.Unlimited.
type GroupInfo struct {
	Name      string
	Mode      policy.GroupMode
	PoolLimit int
	MemberCap int
}

// WeightUsage totals a holder's accrued weight.
type WeightUsage struct {
	IndividualUsed int `json:"individual_used"`
	GroupUsed      int `json:"group_used"`
}

// WeightDecision is the outcome of a weight check. When denied, the fields
// describe the first group that refused the use.
type WeightDecision struct {
	Allowed bool
	Group   string
	Type    policy.WeightType
	Used    int
	Cost    int
	Max     int
	// Saturated is set when a shared pool was already full before this use.
	Saturated bool
}
