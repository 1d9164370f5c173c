package policy

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
)

// snapshot is one fully parsed configuration. A published snapshot is never
// mutated; reloads build a new one and swap it in.
type snapshot struct {
	limits         map[string]int
	groups         []*GroupDef
	groupsByMember map[string][]*GroupDef
	weightGroups   map[string]*WeightGroup
	weightByTitle  map[string][]*WeightGroup
	managed        map[string]struct{}
	regular        map[string]struct{}
	nonAccepting   map[string]struct{}
	combat         CombatOptions
	weight         WeightOptions
	auction        map[string]struct{}
	warnings       []error
}

func newSnapshot() *snapshot {
	return &snapshot{
		limits:         map[string]int{},
		groupsByMember: map[string][]*GroupDef{},
		weightGroups:   map[string]*WeightGroup{},
		weightByTitle:  map[string][]*WeightGroup{},
		managed:        map[string]struct{}{},
		regular:        map[string]struct{}{},
		nonAccepting:   map[string]struct{}{},
		combat:         DefaultCombatOptions(),
		weight:         WeightOptions{ClearOnCombatEnd: true},
		auction:        map[string]struct{}{},
	}
}

// index builds the lookup tables. Weight-only titles are deliberately left
// out of the managed set.
func (s *snapshot) index() {
	slices.SortStableFunc(s.groups, func(a, b *GroupDef) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	for _, g := range s.groups {
		for _, m := range g.Members {
			s.groupsByMember[m] = append(s.groupsByMember[m], g)
			s.managed[m] = struct{}{}
		}
	}

	for title := range s.limits {
		s.managed[title] = struct{}{}
	}

	names := make([]string, 0, len(s.weightGroups))
	for name := range s.weightGroups {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		wg := s.weightGroups[name]
		for title := range wg.Items {
			s.weightByTitle[title] = append(s.weightByTitle[title], wg)
		}
	}
}

// Store holds the active policy. Reads are lock free and always observe a
// complete snapshot.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore returns a store holding an empty policy with default options.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(newSnapshot())
	return s
}

// Reload loads the source and publishes the parsed policy. If the source
// cannot be read the previous policy remains active.
func (s *Store) Reload(ctx context.Context, src Source) error {
	tree, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}

	next := parse(ctx, tree)
	s.current.Store(next)

	slog.InfoContext(ctx, "policy reloaded",
		"limits", len(next.limits),
		"groups", len(next.groups),
		"weight_groups", len(next.weightGroups),
		"managed", len(next.managed),
		"warnings", len(next.warnings),
	)
	for _, g := range next.groups {
		slog.DebugContext(ctx, "policy group",
			"name", g.Name, "mode", g.Mode, "limit", g.Limit, "priority", g.Priority, "members", g.Members)
	}

	return nil
}

func (s *Store) snap() *snapshot {
	return s.current.Load()
}

// Warnings returns the misconfigurations found by the last reload.
func (s *Store) Warnings() []error {
	return s.snap().warnings
}

// IsManaged reports whether mark rules apply to the title.
func (s *Store) IsManaged(title string) bool {
	_, ok := s.snap().managed[Normalize(title)]
	return ok
}

// LimitFor returns the per-title mark limit, or Unlimited.
func (s *Store) LimitFor(title string) int {
	n, ok := s.snap().limits[Normalize(title)]
	if !ok || n <= 0 {
		return Unlimited
	}
	return n
}

// GroupsFor returns the groups containing the title, highest priority first.
func (s *Store) GroupsFor(title string) []*GroupDef {
	return s.snap().groupsByMember[Normalize(title)]
}

// Groups returns every configured group, highest priority first.
func (s *Store) Groups() []*GroupDef {
	return s.snap().groups
}

// WeightGroupsFor returns the weight groups charging the title.
func (s *Store) WeightGroupsFor(title string) []*WeightGroup {
	return s.snap().weightByTitle[Normalize(title)]
}

// HasWeightRules reports whether any weight group is configured.
func (s *Store) HasWeightRules() bool {
	return len(s.snap().weightGroups) > 0
}

// IsRegularContainer reports whether items placed in this container kind lose their mark.
func (s *Store) IsRegularContainer(kind string) bool {
	_, ok := s.snap().regular[Normalize(kind)]
	return ok
}

// IsNonAcceptingContainer reports whether this container kind refuses marked items.
func (s *Store) IsNonAcceptingContainer(kind string) bool {
	_, ok := s.snap().nonAccepting[Normalize(kind)]
	return ok
}

// Combat returns the combat restriction toggles.
func (s *Store) Combat() CombatOptions {
	return s.snap().combat
}

// Weight returns the weight decay options.
func (s *Store) Weight() WeightOptions {
	return s.snap().weight
}

// IsAuctionCommand reports whether the command line starts with a root that
// lists items for sale.
func (s *Store) IsAuctionCommand(line string) bool {
	root := CommandRoot(line)
	if root == "" {
		return false
	}
	_, ok := s.snap().auction[root]
	return ok
}
