package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	tree := []Section{
		emptySection("s1", 0, widget("i1", "int1")),
		{ID: "s2", Kind: SectionKindCategory, Position: 1, Category: &CategoryAttrs{Name: "Media"}},
		{ID: "s3", Kind: SectionKindDynamic, Position: 2, Dynamic: &DynamicAttrs{Width: 2, Height: 2, ParentSectionID: strPtr("s1")}},
	}
	require.NoError(t, Validate(tree))
	require.NoError(t, Validate(nil))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	tree := []Section{
		emptySection("dup", 0, widget("i1")),
		emptySection("dup", 1, widget("i1")),
		{ID: "orphan", Kind: SectionKindDynamic, Position: 2, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("missing")}},
		{ID: "bad", Kind: "grid", Position: 3},
	}

	err := Validate(tree)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 4)
	require.Contains(t, err.Error(), `section "dup": duplicate id`)
	require.Contains(t, err.Error(), `item "i1": duplicate id`)
	require.Contains(t, err.Error(), `unknown parent section "missing"`)
	require.Contains(t, err.Error(), "kind")
}

func TestValidateRejectsParentCycles(t *testing.T) {
	tree := []Section{
		{ID: "a", Kind: SectionKindDynamic, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("b")}},
		{ID: "b", Kind: SectionKindDynamic, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("a")}},
		{ID: "self", Kind: SectionKindDynamic, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("self")}},
	}

	err := Validate(tree)
	require.Error(t, err)
	require.Contains(t, err.Error(), `section "a": parent chain forms a cycle`)
	require.Contains(t, err.Error(), `section "b": parent chain forms a cycle`)
	require.Contains(t, err.Error(), `section "self": cannot be its own parent`)
}

func TestValidateFieldRules(t *testing.T) {
	item := widget("has space")
	item.Width = 0
	tree := []Section{emptySection("s1", -1, item)}

	err := Validate(tree)
	require.Error(t, err)
	require.Contains(t, err.Error(), "position")
	require.Contains(t, err.Error(), "layout_id")
	require.Contains(t, err.Error(), "width")

	err = Validate([]Section{
		{ID: "cat", Kind: SectionKindCategory, Position: 0},
		{ID: "dyn", Kind: SectionKindDynamic, Position: 1},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `section "cat": category section requires a category block`)
	require.Contains(t, err.Error(), `section "dyn": dynamic section requires a dynamic block`)

	require.NoError(t, Validate([]Section{
		{ID: "cat", Kind: SectionKindCategory, Position: 0, Category: &CategoryAttrs{Name: "Media"}},
		{ID: "dyn", Kind: SectionKindDynamic, Position: 1, Dynamic: &DynamicAttrs{Width: 2, Height: 1}},
	}))
}
