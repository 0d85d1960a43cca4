package layout

import "sort"

// Reconcile computes the operations that move the current tree to the desired one.
// Entities are matched by id per level: sections, items across all sections, and links
// across all items. Entities present on both sides become full-replace updates.
//
// New links are kept only when access allows the integration; requested links that are
// refused end up in Plan.DroppedLinks. Links that already exist are never dropped for lack
// of access, only by leaving them out of the desired tree.
//
// The desired tree is expected to have passed Validate.
func Reconcile(desired, current []Section, access IntegrationAccess) *Plan {
	plan := &Plan{}

	currentSections := make(map[string]Section, len(current))
	currentItems := make(map[string]struct{})
	currentLinks := make(map[Link]struct{})
	for _, section := range current {
		currentSections[section.ID] = section
		for _, item := range section.Items {
			currentItems[item.ID] = struct{}{}
			for _, integrationID := range item.IntegrationIDs {
				currentLinks[Link{ItemID: item.ID, IntegrationID: integrationID}] = struct{}{}
			}
		}
	}

	desiredSections := make(map[string]struct{}, len(desired))
	desiredItems := make(map[string]struct{})
	desiredLinks := make(map[Link]struct{})

	for _, raw := range desired {
		section := normalizeSection(raw)
		desiredSections[section.ID] = struct{}{}

		record := sectionRecord(section)
		if _, exists := currentSections[section.ID]; exists {
			plan.UpdatedSections = append(plan.UpdatedSections, record)
		} else {
			plan.AddedSections = append(plan.AddedSections, record)
		}

		for _, item := range section.Items {
			item = canonicalItem(item)
			desiredItems[item.ID] = struct{}{}

			record := itemRecord(section.ID, item)
			if _, exists := currentItems[item.ID]; exists {
				plan.UpdatedItems = append(plan.UpdatedItems, record)
			} else {
				plan.AddedItems = append(plan.AddedItems, record)
			}

			for _, integrationID := range item.IntegrationIDs {
				link := Link{ItemID: item.ID, IntegrationID: integrationID}
				if _, exists := currentLinks[link]; exists {
					desiredLinks[link] = struct{}{}
					continue
				}
				if !access.CanUse(integrationID) {
					plan.DroppedLinks = append(plan.DroppedLinks, link)
					continue
				}
				desiredLinks[link] = struct{}{}
				plan.AddedLinks = append(plan.AddedLinks, link)
			}
		}
	}

	var removedSections []Section
	for _, section := range current {
		if _, keep := desiredSections[section.ID]; !keep {
			removedSections = append(removedSections, section)
		}
		for _, item := range section.Items {
			if _, keep := desiredItems[item.ID]; !keep {
				plan.RemovedItems = append(plan.RemovedItems, item.ID)
			}
			for _, integrationID := range item.IntegrationIDs {
				link := Link{ItemID: item.ID, IntegrationID: integrationID}
				if _, keep := desiredLinks[link]; !keep {
					plan.RemovedLinks = append(plan.RemovedLinks, link)
				}
			}
		}
	}

	plan.AddedSections = parentsFirst(plan.AddedSections)
	plan.RemovedSections = childrenFirst(removedSections)
	sort.Slice(plan.RemovedLinks, func(i, j int) bool { return linkLess(plan.RemovedLinks[i], plan.RemovedLinks[j]) })
	sort.Strings(plan.RemovedItems)

	return plan
}

func sectionRecord(section Section) SectionRecord {
	record := SectionRecord{
		ID:       section.ID,
		Kind:     section.Kind,
		Position: section.Position,
	}

	switch section.Kind {
	case SectionKindCategory:
		name := section.Category.Name
		record.Name = &name
	case SectionKindDynamic:
		attrs := section.Dynamic
		record.XOffset = intPtr(attrs.XOffset)
		record.YOffset = intPtr(attrs.YOffset)
		record.Width = intPtr(attrs.Width)
		record.Height = intPtr(attrs.Height)
		record.ParentSectionID = attrs.ParentSectionID
	}

	return record
}

func itemRecord(sectionID string, item Item) ItemRecord {
	return ItemRecord{
		ID:              item.ID,
		SectionID:       sectionID,
		Kind:            item.Kind,
		Options:         item.Options,
		AdvancedOptions: item.AdvancedOptions,
		XOffset:         item.XOffset,
		YOffset:         item.YOffset,
		Width:           item.Width,
		Height:          item.Height,
	}
}

// parentsFirst orders new sections so a dynamic section follows its parent when both are new.
// Relative order is otherwise preserved.
func parentsFirst(records []SectionRecord) []SectionRecord {
	if len(records) < 2 {
		return records
	}

	byID := make(map[string]SectionRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	ordered := make([]SectionRecord, 0, len(records))
	placed := make(map[string]bool, len(records))
	visiting := make(map[string]bool, len(records))
	var place func(record SectionRecord)
	place = func(record SectionRecord) {
		if placed[record.ID] || visiting[record.ID] {
			return
		}
		visiting[record.ID] = true
		if record.ParentSectionID != nil {
			if parent, ok := byID[*record.ParentSectionID]; ok {
				place(parent)
			}
		}
		placed[record.ID] = true
		ordered = append(ordered, record)
	}
	for _, record := range records {
		place(record)
	}
	return ordered
}

// childrenFirst returns the ids of removed sections with every dynamic child before its parent.
func childrenFirst(sections []Section) []string {
	children := make(map[string][]string)
	removed := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		removed[section.ID] = struct{}{}
	}
	var roots []string
	for _, section := range sections {
		parent := ""
		if section.Kind == SectionKindDynamic && section.Dynamic != nil && section.Dynamic.ParentSectionID != nil {
			parent = *section.Dynamic.ParentSectionID
		}
		if _, ok := removed[parent]; ok && parent != section.ID {
			children[parent] = append(children[parent], section.ID)
			continue
		}
		roots = append(roots, section.ID)
	}
	sort.Strings(roots)

	ids := make([]string, 0, len(sections))
	visited := make(map[string]bool, len(sections))
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		kids := children[id]
		sort.Strings(kids)
		for _, child := range kids {
			visit(child)
		}
		ids = append(ids, id)
	}
	for _, id := range roots {
		visit(id)
	}
	// Sections caught in a stored parent cycle have no root; append them last.
	for _, section := range sections {
		visit(section.ID)
	}
	return ids
}

func linkLess(a, b Link) bool {
	if a.ItemID != b.ItemID {
		return a.ItemID < b.ItemID
	}
	return a.IntegrationID < b.IntegrationID
}

func intPtr(v int) *int {
	return &v
}
