// Package layout holds the board layout tree and the pure reconciliation that turns a
// desired tree into an ordered list of storage operations.
package layout

import (
	"bytes"
	"encoding/json"
	"sort"
)

// SectionKind discriminates the section variants.
type SectionKind string

const (
	SectionKindEmpty    SectionKind = "empty"
	SectionKindCategory SectionKind = "category"
	SectionKindDynamic  SectionKind = "dynamic"
)

// Valid reports whether the kind is one of the known variants.
func (k SectionKind) Valid() bool {
	switch k {
	case SectionKindEmpty, SectionKindCategory, SectionKindDynamic:
		return true
	default:
		return false
	}
}

// Section is one node of a board layout. Exactly one of Category or Dynamic is meaningful,
// chosen by Kind; empty sections carry neither.
type Section struct {
	ID        string         `json:"id" validate:"layout_id"`
	Kind      SectionKind    `json:"kind" validate:"required,oneof=empty category dynamic"`
	Position  int            `json:"position" validate:"gte=0"`
	Category  *CategoryAttrs `json:"category,omitempty"`
	Dynamic   *DynamicAttrs  `json:"dynamic,omitempty"`
	Collapsed bool           `json:"collapsed"`
	Items     []Item         `json:"items" validate:"dive"`
}

// CategoryAttrs are the fields of a labelled category section.
type CategoryAttrs struct {
	Name string `json:"name" validate:"max=255"`
}

// DynamicAttrs are the fields of a freely positioned, nestable section.
type DynamicAttrs struct {
	XOffset         int     `json:"x_offset" validate:"gte=0"`
	YOffset         int     `json:"y_offset" validate:"gte=0"`
	Width           int     `json:"width" validate:"gte=1"`
	Height          int     `json:"height" validate:"gte=1"`
	ParentSectionID *string `json:"parent_section_id,omitempty" validate:"omitempty,layout_id"`
}

// Item is a positioned widget inside a section.
type Item struct {
	ID              string          `json:"id" validate:"layout_id"`
	Kind            string          `json:"kind" validate:"required,max=64"`
	Options         json.RawMessage `json:"options,omitempty"`
	AdvancedOptions json.RawMessage `json:"advanced_options,omitempty"`
	XOffset         int             `json:"x_offset" validate:"gte=0"`
	YOffset         int             `json:"y_offset" validate:"gte=0"`
	Width           int             `json:"width" validate:"gte=1"`
	Height          int             `json:"height" validate:"gte=1"`
	IntegrationIDs  []string        `json:"integration_ids" validate:"dive,required"`
}

// Canonical returns the tree in the shape the store hands back: kind variants normalised,
// sections ordered by position, items by row then column, integration ids sorted and unique,
// empty JSON blobs defaulted to {}.
func Canonical(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, section := range sections {
		section = normalizeSection(section)
		items := make([]Item, 0, len(section.Items))
		for _, item := range section.Items {
			items = append(items, canonicalItem(item))
		}
		SortItems(items)
		section.Items = items
		out = append(out, section)
	}
	SortSections(out)
	return out
}

// SortSections orders sections by position, ties broken by id.
func SortSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Position != sections[j].Position {
			return sections[i].Position < sections[j].Position
		}
		return sections[i].ID < sections[j].ID
	})
}

// SortItems orders items by row, then column, then id.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.YOffset != b.YOffset {
			return a.YOffset < b.YOffset
		}
		if a.XOffset != b.XOffset {
			return a.XOffset < b.XOffset
		}
		return a.ID < b.ID
	})
}

func canonicalItem(item Item) Item {
	item.Options = compactJSON(item.Options)
	item.AdvancedOptions = compactJSON(item.AdvancedOptions)
	item.IntegrationIDs = uniqueSorted(item.IntegrationIDs)
	return item
}

// normalizeSection keeps only the variant that belongs to the section's kind.
func normalizeSection(section Section) Section {
	switch section.Kind {
	case SectionKindCategory:
		section.Dynamic = nil
		if section.Category == nil {
			section.Category = &CategoryAttrs{}
		} else {
			attrs := *section.Category
			section.Category = &attrs
		}
	case SectionKindDynamic:
		section.Category = nil
		if section.Dynamic == nil {
			section.Dynamic = &DynamicAttrs{}
		} else {
			attrs := *section.Dynamic
			if attrs.ParentSectionID != nil {
				parent := *attrs.ParentSectionID
				attrs.ParentSectionID = &parent
			}
			section.Dynamic = &attrs
		}
	default:
		section.Category = nil
		section.Dynamic = nil
	}
	return section
}

var emptyObject = json.RawMessage(`{}`)

func compactJSON(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return append(json.RawMessage(nil), emptyObject...)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return append(json.RawMessage(nil), trimmed...)
	}
	return json.RawMessage(buf.Bytes())
}

func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
