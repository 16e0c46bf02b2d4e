package models

// Actor is who is performing an operation. It is passed explicitly into every
// engine and view call; nothing reads it from ambient state.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanSeeTicket mirrors the query-side visibility rule: admins see everything,
// everyone else only tickets they are assigned to.
func (a Actor) CanSeeTicket(t Ticket) bool {
	return a.IsAdmin() || t.AssignedDeveloperIDs.Contains(a.UserID)
}
