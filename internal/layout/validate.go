package layout

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/charlesng35/boardsync/pkg/validator"
)

// Validate checks a desired tree before it reaches the reconciler: field rules on every
// section and item, the attributes block its kind requires, unique ids, dynamic parents that
// exist in the same tree and no parent cycles. All problems found are returned together.
func Validate(sections []Section) error {
	var errs error

	sectionIDs := make(map[string]SectionKind, len(sections))
	itemIDs := make(map[string]string)

	for i := range sections {
		section := sections[i]
		if err := validator.ValidateStruct(section); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("section %d (%s): %w", i, section.ID, err))
		}
		switch {
		case section.Kind == SectionKindCategory && section.Category == nil:
			errs = multierr.Append(errs, fmt.Errorf("section %q: category section requires a category block", section.ID))
		case section.Kind == SectionKindDynamic && section.Dynamic == nil:
			errs = multierr.Append(errs, fmt.Errorf("section %q: dynamic section requires a dynamic block", section.ID))
		}

		if _, dup := sectionIDs[section.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("section %q: duplicate id", section.ID))
		}
		sectionIDs[section.ID] = section.Kind

		for _, item := range section.Items {
			if owner, dup := itemIDs[item.ID]; dup {
				errs = multierr.Append(errs, fmt.Errorf("item %q: duplicate id (sections %q and %q)", item.ID, owner, section.ID))
				continue
			}
			itemIDs[item.ID] = section.ID
		}
	}

	parents := make(map[string]string)
	for _, section := range sections {
		if section.Kind != SectionKindDynamic || section.Dynamic == nil || section.Dynamic.ParentSectionID == nil {
			continue
		}
		parentID := *section.Dynamic.ParentSectionID
		if parentID == section.ID {
			errs = multierr.Append(errs, fmt.Errorf("section %q: cannot be its own parent", section.ID))
			continue
		}
		if _, ok := sectionIDs[parentID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("section %q: unknown parent section %q", section.ID, parentID))
			continue
		}
		parents[section.ID] = parentID
	}

	for _, section := range sections {
		if cycleFrom(section.ID, parents) {
			errs = multierr.Append(errs, fmt.Errorf("section %q: parent chain forms a cycle", section.ID))
		}
	}

	return errs
}

func cycleFrom(start string, parents map[string]string) bool {
	seen := map[string]struct{}{start: {}}
	current := start
	for {
		next, ok := parents[current]
		if !ok {
			return false
		}
		if _, loop := seen[next]; loop {
			return next == start
		}
		seen[next] = struct{}{}
		current = next
	}
}
