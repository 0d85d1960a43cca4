package permissions

import "github.com/charlesng35/boardsync/internal/models"

// BoardAccessInput is everything needed to decide what a principal may do with one board.
// UserGrants holds the tiers granted directly to the principal, GroupGrants the tiers granted
// to any group the principal belongs to.
type BoardAccessInput struct {
	PrincipalID string
	OwnerID     string
	IsPublic    bool
	UserGrants  []models.BoardPermission
	GroupGrants []models.BoardPermission

	ViewAll   bool
	ModifyAll bool
	FullAll   bool
}

// BoardAccess is the derived access level. Full implies change, change implies view.
type BoardAccess struct {
	HasViewAccess   bool
	HasChangeAccess bool
	HasFullAccess   bool
}

// Allows reports whether the access level covers the requested tier.
func (a BoardAccess) Allows(tier models.BoardPermission) bool {
	switch tier {
	case models.BoardPermissionView:
		return a.HasViewAccess
	case models.BoardPermissionModify:
		return a.HasChangeAccess
	case models.BoardPermissionFull:
		return a.HasFullAccess
	default:
		return false
	}
}

// ResolveBoardAccess derives the board access level. It performs no I/O.
func ResolveBoardAccess(in BoardAccessInput) BoardAccess {
	anonymous := in.PrincipalID == ""
	if anonymous {
		return BoardAccess{HasViewAccess: in.IsPublic}
	}

	isOwner := in.OwnerID != "" && in.OwnerID == in.PrincipalID

	var anyGrant, modifyGrant, fullGrant bool
	for _, grants := range [][]models.BoardPermission{in.UserGrants, in.GroupGrants} {
		for _, tier := range grants {
			if !tier.Valid() {
				continue
			}
			anyGrant = true
			switch tier {
			case models.BoardPermissionFull:
				fullGrant = true
				modifyGrant = true
			case models.BoardPermissionModify:
				modifyGrant = true
			}
		}
	}

	full := isOwner || fullGrant || in.FullAll
	change := full || modifyGrant || in.ModifyAll
	view := change || in.IsPublic || anyGrant || in.ViewAll

	return BoardAccess{
		HasViewAccess:   view,
		HasChangeAccess: change,
		HasFullAccess:   full,
	}
}

// GlobalBoardFlags fills the global permission flags of an input from the principal.
func GlobalBoardFlags(p Principal, in BoardAccessInput) BoardAccessInput {
	in.ViewAll = p.Has(BoardViewAll)
	in.ModifyAll = p.Has(BoardModifyAll)
	in.FullAll = p.Has(BoardFullAll)
	return in
}
