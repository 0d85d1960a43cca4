package layout

// IntegrationAccess is the set of integrations a principal may bind new links to.
// The zero value allows none.
type IntegrationAccess struct {
	allowed map[string]struct{}
}

// NewIntegrationAccess allows exactly the given integration ids.
func NewIntegrationAccess(ids ...string) IntegrationAccess {
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return IntegrationAccess{allowed: allowed}
}

// CanUse reports whether a link to the integration may be created.
func (a IntegrationAccess) CanUse(integrationID string) bool {
	_, ok := a.allowed[integrationID]
	return ok
}

// ReferencedIntegrations returns the distinct integration ids named anywhere in the tree, sorted.
func ReferencedIntegrations(sections []Section) []string {
	var ids []string
	for _, section := range sections {
		for _, item := range section.Items {
			ids = append(ids, item.IntegrationIDs...)
		}
	}
	return uniqueSorted(ids)
}
