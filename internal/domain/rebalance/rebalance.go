// Package rebalance implements the jar allocation rebalancer.
//
// Every mutation of the allocation table goes through a planner in this
// package. A planner takes an immutable snapshot of the current jars plus
// one batch request and returns a complete new snapshot whose percents
// sum to exactly jar.AllocationTarget, or fails without touching anything.
// Room is made for (or reclaimed from) jars by scaling every unaffected
// jar with a single proportional factor, so each jar keeps its relative
// share of whatever allocation is left over:
//
//	factor = remaining_room / sum(unaffected_percents)
//	new_percent = old_percent * factor
//
// CurrentPercent tracks actual spend and is never rebalanced.
package rebalance

import (
	"fmt"
	"math"
	"strings"

	"github.com/eshaffer321/jarbudget-backend/internal/domain/jar"
)

// CreateSpec describes one jar to create. Percent is the requested share
// after any amount conversion by the caller.
type CreateSpec struct {
	Name        string
	Description string
	Percent     float64
}

// UpdateSpec describes one jar mutation. Nil fields are left unchanged.
// Name and description changes carry no rebalancing; only NewPercent
// moves allocation between jars.
type UpdateSpec struct {
	Name           string
	NewName        *string
	NewDescription *string
	NewPercent     *float64
}

// Change records the before/after percent of one jar affected by a
// rebalancing event.
type Change struct {
	Name       string
	OldPercent float64
	NewPercent float64
}

// Report explains a single rebalancing event. Changes lists every jar
// whose percent moved; Summary is a rendered human-readable explanation.
// The report carries no control-flow meaning.
type Report struct {
	Changes []Change
	Summary string
}

// Result is the outcome of a successful plan: the complete new snapshot
// plus the report explaining what moved.
type Result struct {
	Jars   []jar.Jar
	Report Report
}

// Create plans a batch jar creation against the current snapshot.
//
// When the snapshot is empty this is the bootstrap case: the batch must
// allocate the full target on its own and is inserted as-is. Otherwise
// every existing jar is scaled by (target - requested) / existing_sum so
// the new jars fit while existing jars keep their relative shares.
func Create(current []jar.Jar, specs []CreateSpec) (*Result, error) {
	if len(specs) == 0 {
		return nil, jar.NewValidationError("no jars to create")
	}

	taken := make(map[string]bool, len(current))
	for _, j := range current {
		taken[jar.NormalizeName(j.Name)] = true
	}

	var requested float64
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		key := jar.NormalizeName(spec.Name)
		if key == "" {
			return nil, jar.NewValidationError("jar name must not be empty")
		}
		if taken[key] || seen[key] {
			return nil, jar.NewDuplicateName(spec.Name)
		}
		seen[key] = true
		if err := checkPercent(spec.Name, spec.Percent); err != nil {
			return nil, err
		}
		requested += spec.Percent
	}

	if requested > jar.AllocationTarget+jar.Tolerance {
		return nil, jar.NewInvalidAllocation(
			fmt.Sprintf("requested jars allocate %s, more than the %s available",
				formatPercent(requested), formatPercent(jar.AllocationTarget)),
			specNames(specs)...)
	}

	existingSum := jar.SumPercents(current)
	next := cloneJars(current)

	if existingSum == 0 {
		// Bootstrap: nothing to scale, so the batch itself must cover
		// the full allocation.
		if math.Abs(requested-jar.AllocationTarget) > jar.Tolerance {
			return nil, jar.NewInvalidAllocation(
				fmt.Sprintf("first jars must allocate the full budget: got %s, need %s",
					formatPercent(requested), formatPercent(jar.AllocationTarget)),
				specNames(specs)...)
		}
	} else {
		factor := (jar.AllocationTarget - requested) / existingSum
		if factor < 0 {
			factor = 0 // only reachable inside the tolerance band
		}
		for i := range next {
			next[i].Percent *= factor
		}
	}

	for _, spec := range specs {
		next = append(next, jar.Jar{
			Name:           strings.TrimSpace(spec.Name),
			Description:    spec.Description,
			Percent:        spec.Percent,
			CurrentPercent: 0,
		})
	}

	if err := renormalize(next); err != nil {
		return nil, err
	}

	changes := diffChanges(current, next)
	summary := ""
	if len(changes) == 0 {
		summary = fmt.Sprintf("Created %s with no rebalancing needed.", countJars(len(specs)))
	} else {
		summary = fmt.Sprintf("Scaled %s to free %s for %s: %s.",
			countJars(len(changes)), formatPercent(requested), countJars(len(specs)),
			renderChanges(changes))
	}

	return &Result{Jars: next, Report: Report{Changes: changes, Summary: summary}}, nil
}

// Delete plans the removal of the named jars, redistributing their freed
// share to the survivors in proportion to each survivor's current share.
// The reason string appears in the summary only.
func Delete(current []jar.Jar, names []string, reason string) (*Result, error) {
	if len(names) == 0 {
		return nil, jar.NewValidationError("no jars to delete")
	}

	doomed := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		key := jar.NormalizeName(name)
		if !containsJar(current, key) {
			missing = append(missing, name)
			continue
		}
		doomed[key] = true
	}
	if len(missing) > 0 {
		return nil, jar.NewNotFound(missing...)
	}

	var freed float64
	var next []jar.Jar
	var deletedNames []string
	for _, j := range current {
		if doomed[jar.NormalizeName(j.Name)] {
			freed += j.Percent
			deletedNames = append(deletedNames, j.Name)
			continue
		}
		next = append(next, j)
	}

	remaining := jar.SumPercents(next)
	if remaining > 0 {
		// Closed form of old + freed*(old/remaining): every survivor keeps
		// its relative share of the whole.
		scale := (remaining + freed) / remaining
		for i := range next {
			next[i].Percent *= scale
		}
		if err := renormalize(next); err != nil {
			return nil, err
		}
	}
	// remaining == 0 covers deleting every jar, or survivors that all sit
	// at zero percent; the freed share is discarded rather than divided
	// by zero.

	changes := diffChanges(current, next)
	summary := renderDeleteSummary(deletedNames, reason, freed, changes)

	return &Result{Jars: next, Report: Report{Changes: changes, Summary: summary}}, nil
}

// Update plans a batch jar update. Renames and description edits apply
// directly; percent changes are applied as one combined transaction:
// the updated jars take their requested percents and every other jar is
// scaled by the single factor implied by the aggregate delta.
func Update(current []jar.Jar, specs []UpdateSpec) (*Result, error) {
	if len(specs) == 0 {
		return nil, jar.NewValidationError("no jars to update")
	}

	index := make(map[string]int, len(current))
	for i, j := range current {
		index[jar.NormalizeName(j.Name)] = i
	}

	targeted := make(map[string]*UpdateSpec, len(specs))
	var missing []string
	for i := range specs {
		spec := &specs[i]
		key := jar.NormalizeName(spec.Name)
		if _, ok := index[key]; !ok {
			missing = append(missing, spec.Name)
			continue
		}
		if _, dup := targeted[key]; dup {
			return nil, jar.NewValidationError(
				fmt.Sprintf("jar %q is targeted twice in one batch", spec.Name))
		}
		targeted[key] = spec
		if spec.NewPercent != nil {
			if err := checkPercent(spec.Name, *spec.NewPercent); err != nil {
				return nil, err
			}
		}
		if spec.NewName != nil && jar.NormalizeName(*spec.NewName) == "" {
			return nil, jar.NewValidationError(
				fmt.Sprintf("new name for jar %q must not be empty", spec.Name))
		}
	}
	if len(missing) > 0 {
		return nil, jar.NewNotFound(missing...)
	}

	// Check the post-rename name set for collisions before touching
	// percents, so a bad rename aborts the whole batch.
	finalNames := make(map[string]string, len(current))
	for _, j := range current {
		key := jar.NormalizeName(j.Name)
		finalName := j.Name
		if spec, ok := targeted[key]; ok && spec.NewName != nil {
			finalName = strings.TrimSpace(*spec.NewName)
		}
		finalKey := jar.NormalizeName(finalName)
		if _, clash := finalNames[finalKey]; clash {
			return nil, jar.NewDuplicateName(finalName)
		}
		finalNames[finalKey] = finalName
	}

	// Net allocation effect of the batch.
	var requestedNew, requestedOld float64
	repriced := make(map[string]float64, len(specs))
	for key, spec := range targeted {
		if spec.NewPercent == nil {
			continue
		}
		repriced[key] = *spec.NewPercent
		requestedNew += *spec.NewPercent
		requestedOld += current[index[key]].Percent
	}

	next := cloneJars(current)

	if len(repriced) > 0 {
		othersSum := jar.SumPercents(current) - requestedOld
		room := jar.AllocationTarget - requestedNew

		if room < -jar.Tolerance {
			return nil, jar.NewInvalidAllocation(
				fmt.Sprintf("updated jars allocate %s, more than the %s available",
					formatPercent(requestedNew), formatPercent(jar.AllocationTarget)))
		}
		if othersSum == 0 && math.Abs(room) > jar.Tolerance {
			return nil, jar.NewInvalidAllocation(
				fmt.Sprintf("updated jars must allocate the full budget when no other jar can absorb the difference: got %s",
					formatPercent(requestedNew)))
		}

		for i := range next {
			key := jar.NormalizeName(next[i].Name)
			if p, ok := repriced[key]; ok {
				next[i].Percent = p
			} else if othersSum > 0 {
				factor := room / othersSum
				if factor < 0 {
					factor = 0
				}
				next[i].Percent *= factor
			}
		}

		if err := renormalize(next); err != nil {
			return nil, err
		}
	}

	changes := diffChanges(current, next)

	// Renames and descriptions last, so the report refers to the names
	// the caller used.
	for i := range next {
		key := jar.NormalizeName(current[i].Name)
		spec, ok := targeted[key]
		if !ok {
			continue
		}
		if spec.NewName != nil {
			next[i].Name = strings.TrimSpace(*spec.NewName)
		}
		if spec.NewDescription != nil {
			next[i].Description = *spec.NewDescription
		}
	}

	summary := ""
	if len(changes) == 0 {
		summary = "No allocation changes; jar percentages are unchanged."
	} else {
		summary = fmt.Sprintf("Updated allocations: %s.", renderChanges(changes))
	}

	return &Result{Jars: next, Report: Report{Changes: changes, Summary: summary}}, nil
}

// renormalize scales all percents so they sum to exactly the allocation
// target, distributing the floating-point residual proportionally. Sums
// outside the tolerance band are rejected rather than repaired.
func renormalize(jars []jar.Jar) error {
	if len(jars) == 0 {
		return nil
	}
	sum := jar.SumPercents(jars)
	if math.Abs(sum-jar.AllocationTarget) > jar.Tolerance {
		return jar.NewInvalidAllocation(
			fmt.Sprintf("allocation sums to %s instead of %s",
				formatPercent(sum), formatPercent(jar.AllocationTarget)))
	}
	if sum == jar.AllocationTarget || sum == 0 {
		return nil
	}
	scale := jar.AllocationTarget / sum
	for i := range jars {
		jars[i].Percent *= scale
	}
	return nil
}

func checkPercent(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return jar.NewInvalidAllocation(
			fmt.Sprintf("percent for jar %q must be between 0 and 1, got %v", name, p), name)
	}
	return nil
}

func cloneJars(jars []jar.Jar) []jar.Jar {
	next := make([]jar.Jar, len(jars))
	copy(next, jars)
	return next
}

func containsJar(jars []jar.Jar, key string) bool {
	for _, j := range jars {
		if jar.NormalizeName(j.Name) == key {
			return true
		}
	}
	return false
}

// diffChanges reports every jar present in both snapshots whose percent
// moved. Positional matching is safe for create (appends only) and
// update (in-place); delete passes the filtered survivor slice, so match
// by name instead.
func diffChanges(before, after []jar.Jar) []Change {
	byName := make(map[string]jar.Jar, len(after))
	for _, j := range after {
		byName[jar.NormalizeName(j.Name)] = j
	}
	var changes []Change
	for _, old := range before {
		now, ok := byName[jar.NormalizeName(old.Name)]
		if !ok || math.Abs(now.Percent-old.Percent) < 1e-9 {
			continue
		}
		changes = append(changes, Change{
			Name:       old.Name,
			OldPercent: old.Percent,
			NewPercent: now.Percent,
		})
	}
	return changes
}

func specNames(specs []CreateSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

func renderChanges(changes []Change) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = fmt.Sprintf("%s %s → %s", c.Name,
			formatPercent(c.OldPercent), formatPercent(c.NewPercent))
	}
	return strings.Join(parts, ", ")
}

func renderDeleteSummary(deleted []string, reason string, freed float64, changes []Change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deleted %s (%s)", strings.Join(deleted, ", "), reasonOrDefault(reason))
	if len(changes) > 0 {
		fmt.Fprintf(&b, "; redistributed the freed %s proportionally: %s",
			formatPercent(freed), renderChanges(changes))
	} else if freed > 0 {
		fmt.Fprintf(&b, "; the freed %s had no jars to absorb it", formatPercent(freed))
	}
	b.WriteString(".")
	return b.String()
}

func reasonOrDefault(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "no reason given"
	}
	return reason
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

func countJars(n int) string {
	if n == 1 {
		return "1 jar"
	}
	return fmt.Sprintf("%d jars", n)
}
