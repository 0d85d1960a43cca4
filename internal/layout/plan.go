package layout

import "encoding/json"

// SectionRecord is a section as it is written to storage. Columns that do not belong to
// Kind are nil.
type SectionRecord struct {
	ID              string
	Kind            SectionKind
	Position        int
	Name            *string
	XOffset         *int
	YOffset         *int
	Width           *int
	Height          *int
	ParentSectionID *string
}

// ItemRecord is an item as it is written to storage.
type ItemRecord struct {
	ID              string
	SectionID       string
	Kind            string
	Options         json.RawMessage
	AdvancedOptions json.RawMessage
	XOffset         int
	YOffset         int
	Width           int
	Height          int
}

// Link binds an item to an integration.
type Link struct {
	ItemID        string `json:"item_id"`
	IntegrationID string `json:"integration_id"`
}

// Plan is the result of reconciling a desired tree against the stored one.
type Plan struct {
	AddedSections   []SectionRecord
	AddedItems      []ItemRecord
	AddedLinks      []Link
	UpdatedItems    []ItemRecord
	UpdatedSections []SectionRecord
	RemovedLinks    []Link
	RemovedItems    []string
	RemovedSections []string

	// DroppedLinks were requested but not added because the principal may not use the integration.
	DroppedLinks []Link
}

// StepKind names one storage operation of a plan.
type StepKind int

const (
	StepInsertSections StepKind = iota
	StepInsertItems
	StepInsertLinks
	StepUpdateItem
	StepUpdateSection
	StepDeleteLinks
	StepDeleteItems
	StepDeleteSections
)

var stepNames = map[StepKind]string{
	StepInsertSections: "insert_sections",
	StepInsertItems:    "insert_items",
	StepInsertLinks:    "insert_links",
	StepUpdateItem:     "update_item",
	StepUpdateSection:  "update_section",
	StepDeleteLinks:    "delete_links",
	StepDeleteItems:    "delete_items",
	StepDeleteSections: "delete_sections",
}

func (k StepKind) String() string {
	if name, ok := stepNames[k]; ok {
		return name
	}
	return "unknown"
}

// Step is one statement of the apply phase. Only the field matching Kind is set.
type Step struct {
	Kind     StepKind
	Sections []SectionRecord
	Items    []ItemRecord
	Links    []Link
	IDs      []string
}

// Steps lists the plan's operations in apply order: inserts parent before child, then
// updates, then deletes child before parent. Empty levels are skipped.
func (p *Plan) Steps() []Step {
	if p == nil {
		return nil
	}

	steps := make([]Step, 0, 6+len(p.UpdatedItems)+len(p.UpdatedSections))
	if len(p.AddedSections) > 0 {
		steps = append(steps, Step{Kind: StepInsertSections, Sections: p.AddedSections})
	}
	if len(p.AddedItems) > 0 {
		steps = append(steps, Step{Kind: StepInsertItems, Items: p.AddedItems})
	}
	if len(p.AddedLinks) > 0 {
		steps = append(steps, Step{Kind: StepInsertLinks, Links: p.AddedLinks})
	}
	for _, item := range p.UpdatedItems {
		steps = append(steps, Step{Kind: StepUpdateItem, Items: []ItemRecord{item}})
	}
	for _, section := range p.UpdatedSections {
		steps = append(steps, Step{Kind: StepUpdateSection, Sections: []SectionRecord{section}})
	}
	if len(p.RemovedLinks) > 0 {
		steps = append(steps, Step{Kind: StepDeleteLinks, Links: p.RemovedLinks})
	}
	if len(p.RemovedItems) > 0 {
		steps = append(steps, Step{Kind: StepDeleteItems, IDs: p.RemovedItems})
	}
	if len(p.RemovedSections) > 0 {
		steps = append(steps, Step{Kind: StepDeleteSections, IDs: p.RemovedSections})
	}
	return steps
}

// Empty reports whether applying the plan would write nothing.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Steps()) == 0
}

// Structural reports whether the plan inserts or deletes anything.
func (p *Plan) Structural() bool {
	if p == nil {
		return false
	}
	return len(p.AddedSections)+len(p.AddedItems)+len(p.AddedLinks)+
		len(p.RemovedLinks)+len(p.RemovedItems)+len(p.RemovedSections) > 0
}

// Summary counts the plan's operations per entity and operation, keyed "entity.operation".
func (p *Plan) Summary() map[string]int {
	summary := map[string]int{}
	if p == nil {
		return summary
	}
	add := func(key string, n int) {
		if n > 0 {
			summary[key] += n
		}
	}
	add("section.insert", len(p.AddedSections))
	add("item.insert", len(p.AddedItems))
	add("link.insert", len(p.AddedLinks))
	add("item.update", len(p.UpdatedItems))
	add("section.update", len(p.UpdatedSections))
	add("link.delete", len(p.RemovedLinks))
	add("item.delete", len(p.RemovedItems))
	add("section.delete", len(p.RemovedSections))
	return summary
}
