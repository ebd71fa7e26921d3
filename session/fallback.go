package session

import "github.com/playrummi/rummilink/define"

/*
 * fallback strategy resolver
 * - the fixed menu offered when automatic recovery cannot proceed
 * - availability depends on context, execution is owned by the session
 */

//one strategy offer
type Fallback struct {
	Action      string
	Description string
	Available   bool
}

//context the resolver judges availability from
type fallbackContext struct {
	state         ConnectionState
	snapshotKnown bool //durable snapshot present and unexpired
	canToggle     bool //more than one transport configured
}

//resolve the menu for the current context
func resolveFallbacks(ctx fallbackContext) []Fallback {
	return []Fallback{
		{
			Action:      define.StrategyRefreshConnection,
			Description: "force a fresh connect cycle, resetting attempt counters",
			Available:   true,
		},
		{
			Action:      define.StrategyRestoreLocalState,
			Description: "re-attempt restoration from the saved snapshot",
			Available:   ctx.snapshotKnown,
		},
		{
			Action:      define.StrategySwitchTransport,
			Description: "toggle the preferred transport ordering",
			Available:   ctx.canToggle,
		},
		{
			Action:      define.StrategyCreateNewGame,
			Description: "abandon recovery and discard preserved state",
			Available:   true,
		},
	}
}

//pick one strategy by action name
func pickFallback(menu []Fallback, action string) (Fallback, bool) {
	for _, v := range menu {
		if v.Action == action {
			return v, true
		}
	}
	return Fallback{}, false
}
