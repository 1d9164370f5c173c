package policy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	keyWeaponLimits       = "weapon-limits"
	keyGroups             = "groups"
	keyWeightGroups       = "weight-groups"
	keyContainers         = "containers"
	keyCombatRestrictions = "combat-restrictions"
	keyRemovePostCombat   = "remove-limit-post-combat"
	keyWeightResetTimeout = "weight-reset-timeout-seconds"
	keyAuctionCommands    = "auction-commands"
)

// maxResetSeconds is the longest reset timeout a time.Duration can hold.
const maxResetSeconds = math.MaxInt64 / int64(time.Second)

var (
	defaultRegularContainers = []string{
		"chest", "barrel", "ender_chest", "shulker_box",
		"hopper", "dispenser", "dropper",
	}
	defaultNonAcceptingContainers = []string{
		"beacon", "enchanting", "anvil", "grindstone",
		"cartography", "loom", "smithing", "stonecutter",
		"merchant", "brewing", "furnace", "smoker", "blast_furnace",
	}
)

// parser turns a raw configuration tree into a snapshot. Every malformed
// entry is recorded as a warning and replaced with a safe default.
type parser struct {
	ctx      context.Context
	warnings []error
}

func parse(ctx context.Context, tree map[string]any) *snapshot {
	p := &parser{ctx: ctx}

	s := newSnapshot()
	s.limits = p.limits(tree[keyWeaponLimits])
	s.groups = p.groups(tree[keyGroups])
	s.weightGroups = p.weightGroups(tree[keyWeightGroups])
	s.regular, s.nonAccepting = p.containers(tree[keyContainers])
	s.combat = p.combat(tree[keyCombatRestrictions])
	s.weight = p.weight(tree)
	s.auction = p.commandRoots(tree[keyAuctionCommands])
	s.index()
	s.warnings = p.warnings

	return s
}

func (p *parser) warn(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	slog.WarnContext(p.ctx, "policy misconfiguration", "error", err)
	p.warnings = append(p.warnings, err)
}

func (p *parser) limits(raw any) map[string]int {
	limits := map[string]int{}
	if raw == nil {
		return limits
	}

	sec, ok := asMap(raw)
	if !ok {
		p.warn("%s must be a mapping of title to limit", keyWeaponLimits)
		return limits
	}

	for _, title := range sortedKeys(sec) {
		n, ok := asInt(sec[title])
		if !ok {
			p.warn("%s.%s: %v is not an integer, treating as unlimited", keyWeaponLimits, title, sec[title])
			n = 0
		}
		limits[Normalize(title)] = n
	}
	return limits
}

func (p *parser) groups(raw any) []*GroupDef {
	if raw == nil {
		return nil
	}

	sec, ok := asMap(raw)
	if !ok {
		p.warn("%s must be a mapping of group name to definition", keyGroups)
		return nil
	}

	var groups []*GroupDef
	for _, name := range sortedKeys(sec) {
		g, err := p.group(name, sec[name])
		if err != nil {
			p.warn("%s.%s: %w, skipping group", keyGroups, name, err)
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

func (p *parser) group(name string, raw any) (*GroupDef, error) {
	sec, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("definition is not a mapping")
	}

	g := &GroupDef{
		Name:       name,
		Mode:       GroupModeExclusive,
		MemberCaps: map[string]int{},
		memberSet:  map[string]struct{}{},
	}

	if v, ok := sec["type"]; ok {
		switch Normalize(fmt.Sprint(v)) {
		case "EXCLUSIVE":
		case "POOL", "SHARED_POOL":
			g.Mode = GroupModePool
		default:
			p.warn("%s.%s.type: unknown group type %q, defaulting to EXCLUSIVE", keyGroups, name, v)
		}
	}

	if v, ok := sec["priority"]; ok {
		n, ok := asInt(v)
		if !ok {
			p.warn("%s.%s.priority: %v is not an integer, defaulting to 0", keyGroups, name, v)
		}
		g.Priority = n
	}

	limitKey := "limit"
	if _, ok := sec[limitKey]; !ok {
		limitKey = "maximum_limit"
	}
	if v, ok := sec[limitKey]; ok {
		n, ok := asInt(v)
		if !ok {
			p.warn("%s.%s.%s: %v is not an integer, treating as unlimited", keyGroups, name, limitKey, v)
		}
		g.Limit = n
	}

	members, ok := sec["members"]
	if !ok {
		return nil, fmt.Errorf("members are required")
	}

	if list, ok := members.([]any); ok {
		for _, m := range list {
			if m == nil {
				continue
			}
			if g.addMember(fmt.Sprint(m)) == "" {
				p.warn("%s.%s.members: blank title, ignoring", keyGroups, name)
			}
		}
	} else if caps, ok := asMap(members); ok {
		for _, m := range sortedKeys(caps) {
			title := g.addMember(m)
			if title == "" {
				p.warn("%s.%s.members: blank title, ignoring", keyGroups, name)
				continue
			}
			c, ok := asInt(caps[m])
			if !ok && caps[m] != nil {
				p.warn("%s.%s.members.%s: cap %v is not an integer, treating as unlimited", keyGroups, name, m, caps[m])
			}
			g.MemberCaps[title] = c
		}
	} else {
		return nil, fmt.Errorf("members must be a list or a mapping of title to cap")
	}

	if len(g.Members) == 0 {
		slog.DebugContext(p.ctx, "group has no members", "group", name)
	}

	return g, nil
}

func (g *GroupDef) addMember(raw string) string {
	title := Normalize(raw)
	if title == "" {
		return title
	}
	if _, dup := g.memberSet[title]; !dup {
		g.memberSet[title] = struct{}{}
		g.Members = append(g.Members, title)
	}
	return title
}

func (p *parser) weightGroups(raw any) map[string]*WeightGroup {
	groups := map[string]*WeightGroup{}
	if raw == nil {
		return groups
	}

	sec, ok := asMap(raw)
	if !ok {
		p.warn("%s must be a mapping of group name to definition", keyWeightGroups)
		return groups
	}

	for _, name := range sortedKeys(sec) {
		gsec, ok := asMap(sec[name])
		if !ok {
			p.warn("%s.%s: definition is not a mapping, skipping group", keyWeightGroups, name)
			continue
		}

		wg := &WeightGroup{
			Name:  name,
			Type:  WeightTypeIndividual,
			Items: map[string]int{},
		}

		if v, ok := gsec["type"]; ok {
			switch Normalize(fmt.Sprint(v)) {
			case "INDIVIDUAL", "CUMULATIVE":
			case "SHARED_POOL", "LIST":
				wg.Type = WeightTypeSharedPool
			default:
				p.warn("%s.%s.type: unknown weight type %q, defaulting to INDIVIDUAL", keyWeightGroups, name, v)
			}
		}

		budget, ok := asInt(gsec["maximum_limit"])
		if !ok {
			p.warn("%s.%s.maximum_limit: %v is not an integer, defaulting to 0", keyWeightGroups, name, gsec["maximum_limit"])
		}
		wg.Max = budget

		if items, ok := asMap(gsec["items"]); ok {
			for _, title := range sortedKeys(items) {
				cost, ok := asInt(items[title])
				if !ok || cost <= 0 {
					p.warn("%s.%s.items.%s: cost %v must be a positive integer, ignoring", keyWeightGroups, name, title, items[title])
					continue
				}
				wg.Items[Normalize(title)] = cost
			}
		} else if gsec["items"] != nil {
			p.warn("%s.%s.items must be a mapping of title to cost", keyWeightGroups, name)
		}

		groups[name] = wg
	}
	return groups
}

func (p *parser) containers(raw any) (regular, nonAccepting map[string]struct{}) {
	sec, _ := asMap(raw)
	regular = p.containerSet(sec["regular"], keyContainers+".regular", defaultRegularContainers)
	nonAccepting = p.containerSet(sec["non-accepting"], keyContainers+".non-accepting", defaultNonAcceptingContainers)
	return regular, nonAccepting
}

func (p *parser) containerSet(raw any, path string, defaults []string) map[string]struct{} {
	src := defaults
	if raw != nil {
		if list, ok := raw.([]any); ok && len(list) > 0 {
			src = src[:0:0]
			for _, v := range list {
				name, ok := v.(string)
				if !ok || strings.TrimSpace(name) == "" {
					p.warn("%s: %v is not a container name, ignoring", path, v)
					continue
				}
				src = append(src, name)
			}
		} else if !ok {
			p.warn("%s must be a list of container names, using defaults", path)
		}
	}

	set := make(map[string]struct{}, len(src))
	for _, name := range src {
		set[Normalize(name)] = struct{}{}
	}
	return set
}

func (p *parser) combat(raw any) CombatOptions {
	opts := DefaultCombatOptions()
	if raw == nil {
		return opts
	}

	sec, ok := asMap(raw)
	if !ok {
		p.warn("%s must be a mapping, using defaults", keyCombatRestrictions)
		return opts
	}

	p.boolField(sec, keyCombatRestrictions, "block-marking-in-combat", &opts.BlockMarking)
	p.boolField(sec, keyCombatRestrictions, "block-re-marking-in-combat", &opts.BlockRemarking)
	p.boolField(sec, keyCombatRestrictions, "block-dropping-in-combat", &opts.BlockDropping)
	p.boolField(sec, keyCombatRestrictions, "block-moving-marked-in-combat", &opts.BlockMovingMarked)
	return opts
}

func (p *parser) weight(tree map[string]any) WeightOptions {
	opts := WeightOptions{ClearOnCombatEnd: true}
	p.boolField(tree, "", keyRemovePostCombat, &opts.ClearOnCombatEnd)

	if v, ok := tree[keyWeightResetTimeout]; ok {
		secs, ok := asInt(v)
		if !ok || secs < 0 {
			p.warn("%s: %v must be a non-negative integer, defaulting to 0", keyWeightResetTimeout, v)
			secs = 0
		}
		if int64(secs) > maxResetSeconds {
			p.warn("%s: %d is too large, clamping to %d", keyWeightResetTimeout, secs, maxResetSeconds)
			secs = int(maxResetSeconds)
		}
		opts.ResetTimeout = time.Duration(secs) * time.Second
	}

	if opts.Persistent() {
		slog.WarnContext(p.ctx, "weight never decays after combat",
			"setting", keyRemovePostCombat, "timeout", keyWeightResetTimeout)
	}
	return opts
}

// commandRoots reads command roots such as "/ah" or "market:sell" into a
// set of bare normalized roots.
func (p *parser) commandRoots(raw any) map[string]struct{} {
	roots := map[string]struct{}{}
	if raw == nil {
		return roots
	}

	list, ok := raw.([]any)
	if !ok {
		p.warn("%s must be a list of command roots", keyAuctionCommands)
		return roots
	}

	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			p.warn("%s: %v is not a command root, ignoring", keyAuctionCommands, v)
			continue
		}
		if root := CommandRoot(s); root != "" {
			roots[root] = struct{}{}
		}
	}
	return roots
}

func (p *parser) boolField(sec map[string]any, path, key string, dst *bool) {
	v, ok := sec[key]
	if !ok {
		return
	}
	b, ok := asBool(v)
	if !ok {
		if path != "" {
			key = path + "." + key
		}
		p.warn("%s: %v is not a boolean, defaulting to %t", key, v, *dst)
		return
	}
	*dst = b
}

// asMap accepts both decoded YAML mapping shapes.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return Unlimited, true
		}
		return int(n), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, which does not fit.
		if n != math.Trunc(n) || n >= math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
