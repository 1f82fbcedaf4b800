package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsn/diagram"
)

func el(id string, kind diagram.Kind) diagram.Element {
	return diagram.Element{ID: id, Kind: kind, Content: "text for " + id}
}

var relSeq int

func rel(src, tgt string, kind diagram.RelationKind) diagram.Relation {
	relSeq++
	return diagram.Relation{ID: fmt.Sprintf("r%d", relSeq), Source: src, Target: tgt, Kind: kind}
}

func findCode(diags []Diagnostic, code Code) (Diagnostic, bool) {
	for _, d := range diags {
		if d.Code == code {
			return d, true
		}
	}
	return Diagnostic{}, false
}

func codes(diags []Diagnostic) []Code {
	var out []Code
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestValidate_RootPresence(t *testing.T) {
	v := NewValidator()

	t.Run("single root goal is fine", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("E1", diagram.KindEvidence)},
			[]diagram.Relation{rel("G1", "E1", diagram.SupportedBy)},
		)
		assert.True(t, result.IsValid)
		_, found := findCode(result.Warnings, CodeMultipleRootGoals)
		assert.False(t, found)
	})

	t.Run("no goal at all", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("S1", diagram.KindStrategy)},
			nil,
		)
		require.False(t, result.IsValid)
		_, found := findCode(result.Errors, CodeNoRootGoal)
		assert.True(t, found, "expected NO_ROOT_GOAL in %v", codes(result.Errors))
	})

	t.Run("two disconnected root goals", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("G2", diagram.KindGoal)},
			nil,
		)
		assert.True(t, result.IsValid, "multiple roots is only a warning")
		d, found := findCode(result.Warnings, CodeMultipleRootGoals)
		require.True(t, found)
		assert.ElementsMatch(t, []string{"G1", "G2"}, d.ElementIDs)
	})

	t.Run("supported goal is not a root", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("G2", diagram.KindGoal), el("E1", diagram.KindEvidence)},
			[]diagram.Relation{
				rel("G1", "G2", diagram.SupportedBy),
				rel("G2", "E1", diagram.SupportedBy),
			},
		)
		_, found := findCode(result.Warnings, CodeMultipleRootGoals)
		assert.False(t, found)
	})
}

func TestValidate_CycleDetection(t *testing.T) {
	v := NewValidator()

	t.Run("three-node cycle", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("A", diagram.KindGoal), el("B", diagram.KindStrategy), el("C", diagram.KindGoal)},
			[]diagram.Relation{
				rel("A", "B", diagram.SupportedBy),
				rel("B", "C", diagram.SupportedBy),
				rel("C", "A", diagram.SupportedBy),
			},
		)
		require.False(t, result.IsValid)
		d, found := findCode(result.Errors, CodeCyclicReference)
		require.True(t, found)
		assert.Subset(t, d.ElementIDs, []string{"A", "B", "C"})
	})

	t.Run("self-cycle via two nodes", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("A", diagram.KindGoal), el("B", diagram.KindGoal)},
			[]diagram.Relation{
				rel("G1", "A", diagram.SupportedBy),
				rel("A", "B", diagram.SupportedBy),
				rel("B", "A", diagram.SupportedBy),
			},
		)
		require.False(t, result.IsValid)
		d, found := findCode(result.Errors, CodeCyclicReference)
		require.True(t, found)
		assert.Subset(t, d.ElementIDs, []string{"A", "B"})
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{
				el("G1", diagram.KindGoal), el("S1", diagram.KindStrategy), el("S2", diagram.KindStrategy),
				el("G2", diagram.KindGoal), el("E1", diagram.KindEvidence), el("E2", diagram.KindEvidence),
			},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("G1", "S2", diagram.SupportedBy),
				rel("S1", "G2", diagram.SupportedBy),
				rel("S2", "G2", diagram.SupportedBy),
				rel("G2", "E1", diagram.SupportedBy),
				rel("G2", "E2", diagram.SupportedBy),
			},
		)
		_, found := findCode(result.Errors, CodeCyclicReference)
		assert.False(t, found)
		assert.True(t, result.IsValid)
	})
}

func TestValidate_Orphans(t *testing.T) {
	v := NewValidator()

	t.Run("untouched element is flagged", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("E1", diagram.KindEvidence), el("X", diagram.KindContext)},
			[]diagram.Relation{rel("G1", "E1", diagram.SupportedBy)},
		)
		d, found := findCode(result.Warnings, CodeOrphanNodes)
		require.True(t, found)
		assert.Equal(t, []string{"X"}, d.ElementIDs)
	})

	t.Run("single element diagram is exempt", func(t *testing.T) {
		result := v.Validate([]diagram.Element{el("G1", diagram.KindGoal)}, nil)
		_, found := findCode(result.Warnings, CodeOrphanNodes)
		assert.False(t, found)
	})

	t.Run("dangling relation still counts as touched", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("G2", diagram.KindGoal)},
			[]diagram.Relation{rel("G1", "missing", diagram.SupportedBy), rel("G2", "missing", diagram.SupportedBy)},
		)
		_, found := findCode(result.Warnings, CodeOrphanNodes)
		assert.False(t, found)
	})
}

func TestValidate_UndevelopedGoals(t *testing.T) {
	v := NewValidator()

	t.Run("lone empty goal warns", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{{ID: "G1", Kind: diagram.KindGoal, Content: ""}},
			nil,
		)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		d, found := findCode(result.Warnings, CodeUndevelopedGoals)
		require.True(t, found)
		assert.Equal(t, []string{"G1"}, d.ElementIDs)
	})

	t.Run("undeveloped marker suppresses the warning", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("U1", diagram.KindUndeveloped)},
			[]diagram.Relation{rel("G1", "U1", diagram.SupportedBy)},
		)
		_, found := findCode(result.Warnings, CodeUndevelopedGoals)
		assert.False(t, found)
	})

	t.Run("satellite child does not count as development", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("S1", diagram.KindStrategy), el("G1", diagram.KindGoal), el("C1", diagram.KindContext)},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("S1", "C1", diagram.InContextOf),
			},
		)
		d, found := findCode(result.Warnings, CodeUndevelopedGoals)
		require.True(t, found)
		assert.Contains(t, d.ElementIDs, "S1")
	})
}

func TestValidate_EvidencePath(t *testing.T) {
	v := NewValidator()

	t.Run("context leaf is not evidence", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("S1", diagram.KindStrategy), el("C1", diagram.KindContext)},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("S1", "C1", diagram.SupportedBy),
			},
		)
		d, found := findCode(result.Warnings, CodeNoEvidencePath)
		require.True(t, found)
		assert.Contains(t, d.ElementIDs, "G1")
	})

	t.Run("evidence deep in the tree satisfies every goal above", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{
				el("G1", diagram.KindGoal), el("S1", diagram.KindStrategy),
				el("G2", diagram.KindGoal), el("E1", diagram.KindEvidence), el("G3", diagram.KindGoal),
			},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("S1", "G2", diagram.SupportedBy),
				rel("S1", "G3", diagram.SupportedBy),
				rel("G2", "E1", diagram.SupportedBy),
				rel("G3", "E1", diagram.SupportedBy),
			},
		)
		_, found := findCode(result.Warnings, CodeNoEvidencePath)
		assert.False(t, found, "unexpected NO_EVIDENCE_PATH in %v", codes(result.Warnings))
	})

	t.Run("module and undeveloped terminate a path", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{
				el("G1", diagram.KindGoal), el("M1", diagram.KindModule),
				el("G2", diagram.KindGoal), el("U1", diagram.KindUndeveloped),
			},
			[]diagram.Relation{
				rel("G1", "M1", diagram.SupportedBy),
				rel("G2", "U1", diagram.SupportedBy),
			},
		)
		_, found := findCode(result.Warnings, CodeNoEvidencePath)
		assert.False(t, found)
	})

	t.Run("cyclic support does not loop the check", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("G2", diagram.KindGoal)},
			[]diagram.Relation{
				rel("G1", "G2", diagram.SupportedBy),
				rel("G2", "G1", diagram.SupportedBy),
			},
		)
		d, found := findCode(result.Warnings, CodeNoEvidencePath)
		require.True(t, found)
		assert.ElementsMatch(t, []string{"G1", "G2"}, d.ElementIDs)
	})
}

func TestValidate_StrategyFanOut(t *testing.T) {
	v := NewValidator()

	t.Run("one child warns", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{
				el("G1", diagram.KindGoal), el("S1", diagram.KindStrategy),
				el("G2", diagram.KindGoal), el("E1", diagram.KindEvidence),
			},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("S1", "G2", diagram.SupportedBy),
				rel("G2", "E1", diagram.SupportedBy),
			},
		)
		d, found := findCode(result.Warnings, CodeSingleChildStrategy)
		require.True(t, found)
		assert.Equal(t, []string{"S1"}, d.ElementIDs)
	})

	t.Run("two children do not warn", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{
				el("G1", diagram.KindGoal), el("S1", diagram.KindStrategy),
				el("G2", diagram.KindGoal), el("G3", diagram.KindGoal),
				el("E1", diagram.KindEvidence), el("E2", diagram.KindEvidence),
			},
			[]diagram.Relation{
				rel("G1", "S1", diagram.SupportedBy),
				rel("S1", "G2", diagram.SupportedBy),
				rel("S1", "G3", diagram.SupportedBy),
				rel("G2", "E1", diagram.SupportedBy),
				rel("G3", "E2", diagram.SupportedBy),
			},
		)
		_, found := findCode(result.Warnings, CodeSingleChildStrategy)
		assert.False(t, found)
	})
}

func TestValidate_Totality(t *testing.T) {
	v := NewValidator()

	t.Run("empty input", func(t *testing.T) {
		result := v.Validate(nil, nil)
		assert.Equal(t, result.IsValid, len(result.Errors) == 0)
	})

	t.Run("relations referencing nothing", func(t *testing.T) {
		result := v.Validate(
			[]diagram.Element{el("G1", diagram.KindGoal), el("E1", diagram.KindEvidence)},
			[]diagram.Relation{
				rel("ghost", "phantom", diagram.SupportedBy),
				rel("G1", "E1", diagram.SupportedBy),
			},
		)
		assert.True(t, result.IsValid)
	})

	t.Run("isValid mirrors errors for every shape", func(t *testing.T) {
		shapes := [][]diagram.Element{
			nil,
			{el("G1", diagram.KindGoal)},
			{el("S1", diagram.KindStrategy)},
			{el("G1", diagram.KindGoal), el("G2", diagram.KindGoal)},
		}
		for i, elements := range shapes {
			result := v.Validate(elements, nil)
			assert.Equal(t, len(result.Errors) == 0, result.IsValid, "shape %d", i)
		}
	})
}
