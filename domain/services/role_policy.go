package services

import "pointsbot/domain/entities"

// SelectRole returns the threshold with the largest PointsRequired not above balance,
// or nil when none qualifies. The input order does not matter.
func SelectRole(balance int64, thresholds []*entities.RoleThreshold) *entities.RoleThreshold {
	var selected *entities.RoleThreshold
	for _, t := range thresholds {
		if t == nil || t.PointsRequired > balance {
			continue
		}
		if selected == nil || t.PointsRequired > selected.PointsRequired {
			selected = t
		}
	}
	return selected
}

// NextThreshold returns the smallest threshold strictly above balance, or nil at the top tier
func NextThreshold(balance int64, thresholds []*entities.RoleThreshold) *entities.RoleThreshold {
	var next *entities.RoleThreshold
	for _, t := range thresholds {
		if t == nil || t.PointsRequired <= balance {
			continue
		}
		if next == nil || t.PointsRequired < next.PointsRequired {
			next = t
		}
	}
	return next
}

// RoleTransition describes the tier change needed to bring a member in line with a balance
type RoleTransition struct {
	Target *entities.RoleThreshold // nil means no tier
	Revoke []string                // tier role names the member holds but should not
	Grant  bool                    // whether Target must be granted
}

// Changed reports whether any grant or revoke is required
func (t RoleTransition) Changed() bool {
	return t.Grant || len(t.Revoke) > 0
}

// PlanRoleTransition diffs the target tier for balance against the tier roles the member holds
func PlanRoleTransition(balance int64, thresholds []*entities.RoleThreshold, heldRoleNames []string) RoleTransition {
	transition := RoleTransition{Target: SelectRole(balance, thresholds)}

	tierNames := make(map[string]bool, len(thresholds))
	for _, t := range thresholds {
		if t != nil {
			tierNames[t.RoleName] = true
		}
	}

	holdsTarget := false
	for _, name := range heldRoleNames {
		if !tierNames[name] {
			continue
		}
		if transition.Target != nil && name == transition.Target.RoleName {
			holdsTarget = true
			continue
		}
		transition.Revoke = append(transition.Revoke, name)
	}

	transition.Grant = transition.Target != nil && !holdsTarget
	return transition
}
