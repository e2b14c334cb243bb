// internal/game/routing.go
//
// Bonus routing decision table.
// For every incoming roll the game asks, in fixed priority order:
//
//  1. prev-spare:          does the previous frame await its spare bonus,
//                          and is this the first roll of the current frame?
//  2. prev-strike:         does the previous frame await a strike bonus?
//  3. before-last-strike:  did rule 2 fire, and does the frame before the
//                          previous one await its second strike bonus?
//  4. tenth-spare / tenth-strike: is the current frame the tenth and
//                          awaiting its own fill balls?
//
// All rules read frame state from before the roll is applied, so a single
// roll may be posted to several frames.

package game

type bonusKind int

const (
	spareBonus bonusKind = iota
	strikeBonus
)

// rule names a row of the decision table.
type rule string

const (
	rulePrevSpare        rule = "prev-spare"
	rulePrevStrike       rule = "prev-strike"
	ruleBeforeLastStrike rule = "before-last-strike"
	ruleTenthSpare       rule = "tenth-spare"
	ruleTenthStrike      rule = "tenth-strike"
)

// route is a planned bonus posting for one roll.
type route struct {
	frame int
	kind  bonusKind
	rule  rule
}

// plan evaluates the decision table against the current game state.
func (g *Game) plan() []route {
	cur := g.Frame(g.current)
	prev := g.Frame(g.current - 1)
	beforeLast := g.Frame(g.current - 2)

	var routes []route

	if prev != nil && len(cur.rolls) == 0 && prev.State() == StateAwaitingSpareBonus {
		routes = append(routes, route{frame: prev.number, kind: spareBonus, rule: rulePrevSpare})
	}

	prevStrike := prev != nil && prev.State() == StateAwaitingStrikeBonus
	if prevStrike {
		routes = append(routes, route{frame: prev.number, kind: strikeBonus, rule: rulePrevStrike})
	}

	if prevStrike && beforeLast != nil && beforeLast.IsStrike() && len(beforeLast.bonusRolls) == 1 {
		routes = append(routes, route{frame: beforeLast.number, kind: strikeBonus, rule: ruleBeforeLastStrike})
	}

	if g.current == FrameCount {
		switch cur.State() {
		case StateAwaitingSpareBonus:
			routes = append(routes, route{frame: cur.number, kind: spareBonus, rule: ruleTenthSpare})
		case StateAwaitingStrikeBonus:
			routes = append(routes, route{frame: cur.number, kind: strikeBonus, rule: ruleTenthStrike})
		}
	}
	return routes
}

// apply posts pins to the frame named by r.
func (g *Game) apply(r route, pins int) error {
	f := g.Frame(r.frame)
	var err error
	switch r.kind {
	case spareBonus:
		_, err = f.RecordSpareBonus(pins)
	case strikeBonus:
		_, err = f.RecordStrikeBonus(pins)
	}
	return err
}
