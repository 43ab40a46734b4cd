package game

type Role int

const (
	RoleUnassigned Role = iota
	RoleCitizen
	RoleMafia
	RoleDoctor
	RoleDetective
)

func (r Role) String() string {
	switch r {
	case RoleCitizen:
		return "citizen"
	case RoleMafia:
		return "mafia"
	case RoleDoctor:
		return "doctor"
	case RoleDetective:
		return "detective"
	default:
		return "unassigned"
	}
}

// hasNightAction reports whether the role blocks the night barrier.
// Citizens sleep through the night.
func (r Role) hasNightAction() bool {
	return r == RoleMafia || r == RoleDoctor || r == RoleDetective
}
