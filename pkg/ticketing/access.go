package ticketing

// Access is what an actor is to a ticket.
type Access struct {
	IsOwner bool
	IsStaff bool
}

// Policy is who may perform an action.
type Policy int

const (
	// PolicyOwnerOrStaff allows the ticket owner and staff.
	PolicyOwnerOrStaff Policy = iota

	// PolicyStaff allows staff only.
	PolicyStaff
)

// Authorize works out the access of the actor to the ticket from the actor's current roles.
func Authorize(actor Actor, tc *TicketContext) Access {
	a := Access{IsOwner: actor.ID != "" && actor.ID == tc.OwnerID}

	staff := make(map[string]struct{}, len(tc.Panel.StaffRoleIDs))
	for _, r := range tc.Panel.StaffRoleIDs {
		staff[r] = struct{}{}
	}
	for _, r := range actor.Roles {
		if _, ok := staff[r]; ok {
			a.IsStaff = true
			break
		}
	}
	return a
}

// Allows reports whether the access satisfies the policy.
func (a Access) Allows(p Policy) bool {
	switch p {
	case PolicyOwnerOrStaff:
		return a.IsOwner || a.IsStaff
	case PolicyStaff:
		return a.IsStaff
	default:
		return false
	}
}
