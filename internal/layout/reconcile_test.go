package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func emptySection(id string, position int, items ...Item) Section {
	return Section{ID: id, Kind: SectionKindEmpty, Position: position, Items: items}
}

func widget(id string, integrations ...string) Item {
	return Item{ID: id, Kind: "clock", Width: 2, Height: 1, IntegrationIDs: integrations}
}

func TestReconcileIdenticalTreesOnlyUpdates(t *testing.T) {
	tree := []Section{
		emptySection("s1", 0, widget("i1", "int1")),
		{ID: "s2", Kind: SectionKindCategory, Position: 1, Category: &CategoryAttrs{Name: "Media"}},
	}

	plan := Reconcile(tree, tree, NewIntegrationAccess())

	require.False(t, plan.Structural())
	require.Len(t, plan.UpdatedSections, 2)
	require.Len(t, plan.UpdatedItems, 1)
	require.Empty(t, plan.DroppedLinks)
}

func TestReconcileRemovesItemMissingFromDesired(t *testing.T) {
	current := []Section{emptySection("s1", 0, widget("i1"))}
	desired := []Section{emptySection("s1", 0)}

	plan := Reconcile(desired, current, NewIntegrationAccess())

	require.Equal(t, []string{"i1"}, plan.RemovedItems)
	require.Empty(t, plan.RemovedSections)
	require.Empty(t, plan.AddedSections)
	require.Len(t, plan.UpdatedSections, 1)
	require.Equal(t, "s1", plan.UpdatedSections[0].ID)
}

func TestReconcileDropsUnauthorizedLinkAndRemovesStaleOne(t *testing.T) {
	current := []Section{emptySection("s1", 0, widget("i1", "int1"))}
	desired := []Section{emptySection("s1", 0, widget("i1", "int2"))}

	plan := Reconcile(desired, current, NewIntegrationAccess("int1"))

	require.Empty(t, plan.AddedLinks)
	require.Equal(t, []Link{{ItemID: "i1", IntegrationID: "int1"}}, plan.RemovedLinks)
	require.Equal(t, []Link{{ItemID: "i1", IntegrationID: "int2"}}, plan.DroppedLinks)
	require.Len(t, plan.UpdatedItems, 1)
}

func TestReconcileFiltersLinksOnNewItems(t *testing.T) {
	desired := []Section{emptySection("s1", 0, widget("i1", "allowed", "denied"))}

	plan := Reconcile(desired, nil, NewIntegrationAccess("allowed"))

	require.Equal(t, []Link{{ItemID: "i1", IntegrationID: "allowed"}}, plan.AddedLinks)
	require.Equal(t, []Link{{ItemID: "i1", IntegrationID: "denied"}}, plan.DroppedLinks)
}

func TestReconcileKeepsExistingLinksWithoutAccess(t *testing.T) {
	tree := []Section{emptySection("s1", 0, widget("i1", "int1"))}

	plan := Reconcile(tree, tree, NewIntegrationAccess())

	require.Empty(t, plan.RemovedLinks)
	require.Empty(t, plan.AddedLinks)
	require.Empty(t, plan.DroppedLinks)
}

func TestReconcileDeduplicatesRequestedLinks(t *testing.T) {
	desired := []Section{emptySection("s1", 0, widget("i1", "int1", "int1"))}

	plan := Reconcile(desired, nil, NewIntegrationAccess("int1"))

	require.Equal(t, []Link{{ItemID: "i1", IntegrationID: "int1"}}, plan.AddedLinks)
}

func TestReconcileAddAndRemoveSectionsTogether(t *testing.T) {
	current := []Section{
		emptySection("s1", 0),
		emptySection("old", 1, widget("i-old", "int1")),
	}
	desired := []Section{
		emptySection("s1", 0),
		emptySection("new", 1),
	}

	plan := Reconcile(desired, current, NewIntegrationAccess())

	require.Len(t, plan.AddedSections, 1)
	require.Equal(t, "new", plan.AddedSections[0].ID)
	require.Equal(t, []string{"old"}, plan.RemovedSections)
	require.Equal(t, []string{"i-old"}, plan.RemovedItems)
	require.Equal(t, []Link{{ItemID: "i-old", IntegrationID: "int1"}}, plan.RemovedLinks)
}

func TestReconcileMovesItemBetweenSections(t *testing.T) {
	current := []Section{emptySection("a", 0, widget("i1")), emptySection("b", 1)}
	desired := []Section{emptySection("a", 0), emptySection("b", 1, widget("i1"))}

	plan := Reconcile(desired, current, NewIntegrationAccess())

	require.Empty(t, plan.AddedItems)
	require.Empty(t, plan.RemovedItems)
	require.Len(t, plan.UpdatedItems, 1)
	require.Equal(t, "b", plan.UpdatedItems[0].SectionID)
}

func TestReconcileNullsFieldsOfOtherKinds(t *testing.T) {
	current := []Section{{
		ID: "s1", Kind: SectionKindDynamic, Position: 0,
		Dynamic: &DynamicAttrs{XOffset: 1, YOffset: 2, Width: 3, Height: 4},
	}}
	desired := []Section{{
		ID: "s1", Kind: SectionKindCategory, Position: 0,
		Category: &CategoryAttrs{Name: "Now a category"},
		Dynamic:  &DynamicAttrs{XOffset: 9, YOffset: 9, Width: 9, Height: 9},
	}}

	plan := Reconcile(desired, current, NewIntegrationAccess())

	require.Len(t, plan.UpdatedSections, 1)
	record := plan.UpdatedSections[0]
	require.Equal(t, SectionKindCategory, record.Kind)
	require.Equal(t, "Now a category", *record.Name)
	require.Nil(t, record.XOffset)
	require.Nil(t, record.YOffset)
	require.Nil(t, record.Width)
	require.Nil(t, record.Height)
	require.Nil(t, record.ParentSectionID)
}

func TestReconcileEmptySectionIgnoresSubmittedAttributes(t *testing.T) {
	desired := []Section{{
		ID: "s1", Kind: SectionKindEmpty,
		Category: &CategoryAttrs{Name: "leak"},
		Dynamic:  &DynamicAttrs{Width: 3, Height: 3},
	}}

	plan := Reconcile(desired, nil, NewIntegrationAccess())

	record := plan.AddedSections[0]
	require.Nil(t, record.Name)
	require.Nil(t, record.Width)
	require.Nil(t, record.ParentSectionID)
}

func TestReconcileOrdersNewDynamicParentsFirst(t *testing.T) {
	desired := []Section{
		{ID: "child", Kind: SectionKindDynamic, Position: 0, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("mid")}},
		{ID: "mid", Kind: SectionKindDynamic, Position: 1, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("root")}},
		emptySection("root", 2),
	}

	plan := Reconcile(desired, nil, NewIntegrationAccess())

	ids := make([]string, 0, len(plan.AddedSections))
	for _, record := range plan.AddedSections {
		ids = append(ids, record.ID)
	}
	require.Equal(t, []string{"root", "mid", "child"}, ids)
}

func TestReconcileOrdersRemovedChildrenFirst(t *testing.T) {
	current := []Section{
		emptySection("root", 0),
		{ID: "mid", Kind: SectionKindDynamic, Position: 1, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("root")}},
		{ID: "leaf", Kind: SectionKindDynamic, Position: 2, Dynamic: &DynamicAttrs{Width: 1, Height: 1, ParentSectionID: strPtr("mid")}},
	}

	plan := Reconcile(nil, current, NewIntegrationAccess())

	require.Equal(t, []string{"leaf", "mid", "root"}, plan.RemovedSections)
}

func TestReconcileCompactsOptions(t *testing.T) {
	item := widget("i1")
	item.Options = json.RawMessage(`{ "timezone": "UTC" }`)
	desired := []Section{emptySection("s1", 0, item)}

	plan := Reconcile(desired, nil, NewIntegrationAccess())

	require.JSONEq(t, `{"timezone":"UTC"}`, string(plan.AddedItems[0].Options))
	require.Equal(t, `{"timezone":"UTC"}`, string(plan.AddedItems[0].Options))
	require.Equal(t, `{}`, string(plan.AddedItems[0].AdvancedOptions))
}

func TestPlanStepsFollowApplyOrder(t *testing.T) {
	plan := &Plan{
		AddedSections:   []SectionRecord{{ID: "s-new"}},
		AddedItems:      []ItemRecord{{ID: "i-new"}},
		AddedLinks:      []Link{{ItemID: "i-new", IntegrationID: "int"}},
		UpdatedItems:    []ItemRecord{{ID: "i1"}, {ID: "i2"}},
		UpdatedSections: []SectionRecord{{ID: "s1"}},
		RemovedLinks:    []Link{{ItemID: "i-old", IntegrationID: "int"}},
		RemovedItems:    []string{"i-old"},
		RemovedSections: []string{"s-old"},
	}

	var kinds []StepKind
	for _, step := range plan.Steps() {
		kinds = append(kinds, step.Kind)
	}
	require.Equal(t, []StepKind{
		StepInsertSections,
		StepInsertItems,
		StepInsertLinks,
		StepUpdateItem,
		StepUpdateItem,
		StepUpdateSection,
		StepDeleteLinks,
		StepDeleteItems,
		StepDeleteSections,
	}, kinds)
	require.Equal(t, map[string]int{
		"section.insert": 1, "item.insert": 1, "link.insert": 1,
		"item.update": 2, "section.update": 1,
		"link.delete": 1, "item.delete": 1, "section.delete": 1,
	}, plan.Summary())
}

func TestPlanEmpty(t *testing.T) {
	var nilPlan *Plan
	require.True(t, nilPlan.Empty())
	require.True(t, (&Plan{}).Empty())
	require.False(t, (&Plan{RemovedItems: []string{"x"}}).Empty())
	require.Equal(t, "delete_items", StepDeleteItems.String())
}

func TestCanonicalMatchesLoaderShape(t *testing.T) {
	tree := []Section{
		{ID: "b", Kind: SectionKindCategory, Position: 1},
		{ID: "a", Kind: SectionKindEmpty, Position: 1, Items: []Item{
			{ID: "z", YOffset: 1, XOffset: 0, IntegrationIDs: []string{"y", "x", "y"}},
			{ID: "y", YOffset: 0, XOffset: 3},
		}},
	}

	canonical := Canonical(tree)

	require.Equal(t, "a", canonical[0].ID)
	require.Equal(t, "y", canonical[0].Items[0].ID)
	require.Equal(t, []string{"x", "y"}, canonical[0].Items[1].IntegrationIDs)
	require.NotNil(t, canonical[0].Items[0].IntegrationIDs)
	require.Equal(t, &CategoryAttrs{}, canonical[1].Category)
	require.NotNil(t, canonical[1].Items)
}

func TestReferencedIntegrations(t *testing.T) {
	tree := []Section{
		emptySection("s1", 0, widget("i1", "b", "a")),
		emptySection("s2", 1, widget("i2", "a", "c")),
	}
	require.Equal(t, []string{"a", "b", "c"}, ReferencedIntegrations(tree))
	require.False(t, IntegrationAccess{}.CanUse("a"))
}
