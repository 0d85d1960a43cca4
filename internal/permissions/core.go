package permissions

// Global permission identifiers. Group permissions reference these ids.
const (
	Admin = "admin"

	BoardCreate    = "board.create"
	BoardViewAll   = "board.view_all"
	BoardModifyAll = "board.modify_all"
	BoardFullAll   = "board.full_all"

	IntegrationUseAll      = "integration.use_all"
	IntegrationInteractAll = "integration.interact_all"
	IntegrationFullAll     = "integration.full_all"
)

func init() {
	perms := []*Permission{
		{
			ID:          BoardCreate,
			Module:      "board",
			Description: "Create new boards",
		},
		{
			ID:          BoardViewAll,
			Module:      "board",
			Description: "View every board",
		},
		{
			ID:          BoardModifyAll,
			Module:      "board",
			DependsOn:   []string{BoardViewAll},
			Implies:     []string{BoardViewAll},
			Description: "Change the layout and settings of every board",
		},
		{
			ID:          BoardFullAll,
			Module:      "board",
			DependsOn:   []string{BoardModifyAll},
			Implies:     []string{BoardModifyAll, BoardCreate},
			Description: "Manage visibility, grants and deletion of every board",
		},
		{
			ID:          IntegrationUseAll,
			Module:      "integration",
			Description: "Bind any integration to board items",
		},
		{
			ID:          IntegrationInteractAll,
			Module:      "integration",
			DependsOn:   []string{IntegrationUseAll},
			Implies:     []string{IntegrationUseAll},
			Description: "Trigger actions on any integration",
		},
		{
			ID:          IntegrationFullAll,
			Module:      "integration",
			DependsOn:   []string{IntegrationInteractAll},
			Implies:     []string{IntegrationInteractAll},
			Description: "Manage every integration",
		},
		{
			ID:          Admin,
			Module:      "core",
			Implies:     []string{BoardFullAll, IntegrationFullAll},
			Description: "Administrator access to every resource",
		},
	}

	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}
