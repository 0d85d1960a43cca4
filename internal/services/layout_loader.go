package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
)

// LayoutLoader reads the stored layout of a board in the same shape clients submit it.
type LayoutLoader struct {
	db *gorm.DB
}

// NewLayoutLoader constructs a LayoutLoader.
func NewLayoutLoader(db *gorm.DB) (*LayoutLoader, error) {
	if db == nil {
		return nil, errors.New("layout loader: db is required")
	}
	return &LayoutLoader{db: db}, nil
}

// Load returns the board's sections ordered by position, each with its items ordered by row
// and column, their sorted integration ids and the user's collapse flag. The caller must have
// checked access to the board.
func (l *LayoutLoader) Load(ctx context.Context, boardID, userID string) ([]layout.Section, error) {
	ctx = ensureContext(ctx)
	db := l.db.WithContext(ctx)

	var sections []models.Section
	if err := db.Where("board_id = ?", boardID).
		Order("position ASC, id ASC").
		Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("layout loader: load sections: %w", err)
	}

	out := make([]layout.Section, 0, len(sections))
	if len(sections) == 0 {
		return out, nil
	}

	sectionIDs := make([]string, 0, len(sections))
	for _, section := range sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	var items []models.Item
	if err := db.Where("section_id IN ?", sectionIDs).
		Order("y_offset ASC, x_offset ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("layout loader: load items: %w", err)
	}

	links := make(map[string][]string)
	if len(items) > 0 {
		itemIDs := make([]string, 0, len(items))
		for _, item := range items {
			itemIDs = append(itemIDs, item.ID)
		}

		var rows []models.ItemIntegration
		if err := db.Where("item_id IN ?", itemIDs).
			Order("item_id ASC, integration_id ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("layout loader: load integration links: %w", err)
		}
		for _, row := range rows {
			links[row.ItemID] = append(links[row.ItemID], row.IntegrationID)
		}
	}

	collapsed := make(map[string]bool)
	if userID != "" {
		var states []models.SectionCollapseState
		if err := db.Where("user_id = ? AND section_id IN ?", userID, sectionIDs).
			Find(&states).Error; err != nil {
			return nil, fmt.Errorf("layout loader: load collapse states: %w", err)
		}
		for _, state := range states {
			collapsed[state.SectionID] = state.Collapsed
		}
	}

	itemsBySection := make(map[string][]layout.Item, len(sections))
	for _, item := range items {
		itemsBySection[item.SectionID] = append(itemsBySection[item.SectionID], toLayoutItem(item, links[item.ID]))
	}

	for _, section := range sections {
		converted := toLayoutSection(section)
		converted.Collapsed = collapsed[section.ID]
		converted.Items = itemsBySection[section.ID]
		if converted.Items == nil {
			converted.Items = []layout.Item{}
		}
		out = append(out, converted)
	}

	return out, nil
}

func toLayoutSection(section models.Section) layout.Section {
	converted := layout.Section{
		ID:       section.ID,
		Kind:     layout.SectionKind(section.Kind),
		Position: section.Position,
	}

	switch converted.Kind {
	case layout.SectionKindCategory:
		attrs := &layout.CategoryAttrs{}
		if section.Name != nil {
			attrs.Name = *section.Name
		}
		converted.Category = attrs
	case layout.SectionKindDynamic:
		converted.Dynamic = &layout.DynamicAttrs{
			XOffset:         derefInt(section.XOffset),
			YOffset:         derefInt(section.YOffset),
			Width:           derefInt(section.Width),
			Height:          derefInt(section.Height),
			ParentSectionID: section.ParentSectionID,
		}
	}

	return converted
}

func toLayoutItem(item models.Item, integrationIDs []string) layout.Item {
	if integrationIDs == nil {
		integrationIDs = []string{}
	}
	return layout.Item{
		ID:              item.ID,
		Kind:            item.Kind,
		Options:         jsonOrEmpty(item.Options),
		AdvancedOptions: jsonOrEmpty(item.AdvancedOptions),
		XOffset:         item.XOffset,
		YOffset:         item.YOffset,
		Width:           item.Width,
		Height:          item.Height,
		IntegrationIDs:  integrationIDs,
	}
}

func jsonOrEmpty(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(raw)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
