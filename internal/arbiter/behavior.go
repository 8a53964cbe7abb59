package arbiter

// Role is an agent's current job. Slots are fixed; roles change only when
// scout slot 1 is promoted.
type Role uint8

const (
	RoleDefender Role = iota
	RoleScout
)

func (r Role) String() string {
	if r == RoleDefender {
		return "defender"
	}
	return "scout"
}

// Behavior labels the rule that produced a decision.
type Behavior uint8

const (
	BehaviorIdle Behavior = iota

	// reflexes
	BehaviorDodge
	BehaviorShoot
	BehaviorCarryHome
	BehaviorDefendHome

	// defender
	BehaviorPursue
	BehaviorHoldPerimeter

	// scout
	BehaviorPromote
	BehaviorSearch
	BehaviorRegroup
	BehaviorPush
	BehaviorAmbush
	BehaviorCover
)

var behaviorNames = [...]string{
	BehaviorIdle:          "idle",
	BehaviorDodge:         "dodge",
	BehaviorShoot:         "shoot",
	BehaviorCarryHome:     "carry_home",
	BehaviorDefendHome:    "defend_home",
	BehaviorPursue:        "pursue",
	BehaviorHoldPerimeter: "hold_perimeter",
	BehaviorPromote:       "promote",
	BehaviorSearch:        "search",
	BehaviorRegroup:       "regroup",
	BehaviorPush:          "push",
	BehaviorAmbush:        "ambush",
	BehaviorCover:         "cover",
}

func (b Behavior) String() string {
	if int(b) < len(behaviorNames) {
		return behaviorNames[b]
	}
	return "unknown"
}

// rule is one row of a precedence table. when gates the rule; do may still
// decline (ok=false), in which case evaluation falls through to the next row.
type rule struct {
	behavior Behavior
	when     func(*tick) bool
	do       func(*tick) (Decision, bool)
}

// Precedence is data: reflexes first, then the table for the agent's role.
var (
	reflexRules = []rule{
		{BehaviorDodge, (*tick).bulletsInRange, (*tick).dodge},
		{BehaviorShoot, (*tick).enemyInRange, (*tick).shoot},
		{BehaviorCarryHome, (*tick).carrying, (*tick).carryHome},
		{BehaviorDefendHome, (*tick).homeInDanger, (*tick).defendHome},
	}

	defenderRules = []rule{
		{BehaviorPursue, (*tick).scoutsLost, (*tick).pushEnemyFlag},
		{BehaviorHoldPerimeter, (*tick).ownFlagKnown, (*tick).guardHome},
	}

	scoutRules = []rule{
		{BehaviorPromote, (*tick).canPromote, (*tick).promote},
		{BehaviorSearch, (*tick).enemyFlagUnknown, (*tick).search},
		{BehaviorRegroup, (*tick).needRegroup, (*tick).regroup},
		{BehaviorPush, (*tick).readyToPush, (*tick).pushEnemyFlag},
		{BehaviorAmbush, (*tick).ambushWanted, (*tick).ambush},
		{BehaviorCover, (*tick).coverWanted, (*tick).cover},
	}
)

func (t *tick) evaluate(rules []rule) (Decision, bool) {
	for _, r := range rules {
		if !r.when(t) {
			continue
		}
		if d, ok := r.do(t); ok {
			if d.Behavior == BehaviorIdle {
				d.Behavior = r.behavior
			}
			return d, true
		}
	}
	return Decision{}, false
}

func (t *tick) rulesForRole() []rule {
	if t.agent.role == RoleDefender {
		return defenderRules
	}
	return scoutRules
}
