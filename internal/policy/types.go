package policy

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unlimited is the effective value of any limit or cap that is unset or non-positive.
const Unlimited = math.MaxInt

// GroupMode defines how the members of a group constrain each other.
type GroupMode int

const (
	// GroupModeExclusive allows at most one marked title among the members.
	GroupModeExclusive GroupMode = iota
	// GroupModePool shares a numeric budget across the members.
	GroupModePool
)

func (m GroupMode) String() string {
	switch m {
	case GroupModePool:
		return "POOL"
	default:
		return "EXCLUSIVE"
	}
}

// GroupDef is an immutable group definition. Instances belong to a single
// snapshot and are never modified after a reload has published them.
type GroupDef struct {
	Name     string
	Mode     GroupMode
	Limit    int // <=0 means unlimited
	Priority int

	// Members holds normalized titles in configuration order.
	Members    []string
	MemberCaps map[string]int // <=0 or absent means unlimited

	memberSet map[string]struct{}
}

// HasMember reports whether the normalized title belongs to the group.
func (g *GroupDef) HasMember(title string) bool {
	_, ok := g.memberSet[Normalize(title)]
	return ok
}

// EffectiveLimit returns the pool-wide cap, or Unlimited.
func (g *GroupDef) EffectiveLimit() int {
	if g.Limit <= 0 {
		return Unlimited
	}
	return g.Limit
}

// EffectiveMemberCap returns the per-title cap inside the group, or Unlimited.
func (g *GroupDef) EffectiveMemberCap(title string) int {
	c, ok := g.MemberCaps[Normalize(title)]
	if !ok || c <= 0 {
		return Unlimited
	}
	return c
}

// WeightType defines how a weight group charges its titles.
type WeightType int

const (
	// WeightTypeIndividual charges every use against a per-title budget.
	WeightTypeIndividual WeightType = iota
	// WeightTypeSharedPool charges the first use of each title against a shared budget.
	WeightTypeSharedPool
)

func (t WeightType) String() string {
	switch t {
	case WeightTypeSharedPool:
		return "SHARED_POOL"
	default:
		return "INDIVIDUAL"
	}
}

// WeightGroup is an immutable weight group definition. Items only holds
// titles with a positive cost.
type WeightGroup struct {
	Name  string
	Type  WeightType
	Max   int
	Items map[string]int
}

// Cost returns the cost of the title in this group.
func (g *WeightGroup) Cost(title string) (int, bool) {
	c, ok := g.Items[Normalize(title)]
	return c, ok && c > 0
}

// CombatOptions toggles the combat-gated restrictions.
type CombatOptions struct {
	BlockMarking      bool
	BlockRemarking    bool
	BlockDropping     bool
	BlockMovingMarked bool
}

// DefaultCombatOptions returns the restrictions applied when the
// configuration omits them.
func DefaultCombatOptions() CombatOptions {
	return CombatOptions{
		BlockMarking:      false,
		BlockRemarking:    true,
		BlockDropping:     true,
		BlockMovingMarked: true,
	}
}

// WeightOptions controls how accrued weight decays after combat.
type WeightOptions struct {
	ClearOnCombatEnd bool
	ResetTimeout     time.Duration
}

// Persistent reports whether weight survives combat end with no decay at all.
func (o WeightOptions) Persistent() bool {
	return !o.ClearOnCombatEnd && o.ResetTimeout <= 0
}

// Normalize returns the canonical key form of a title or container name.
func Normalize(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// CommandRoot reduces a command line to its normalized root: the first word
// without its leading slash or plugin namespace.
func CommandRoot(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	root := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(root, ':'); i != -1 {
		root = root[i+1:]
	}
	return Normalize(root)
}
