package launch

import (
	"strconv"

	"curvelaunch/core/events"
	"curvelaunch/core/types"
)

// Event types emitted by the launch engine.
const (
	EventTypeTokenLaunched        = "launch.token.launched"
	EventTypeTokenTraded          = "launch.token.traded"
	EventTypeTokenGraduated       = "launch.token.graduated"
	EventTypeTokenDelisted        = "launch.token.delisted"
	EventTypeGraduationLegSkipped = "launch.graduation.leg_skipped"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string { return e.evt.Type }

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent adapts a ledger event for the emitter interface.
func WrapEvent(evt *types.Event) events.Event {
	return eventEnvelope{evt: evt}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// TokenLaunchedEvent records the creation of a new Live token.
func TokenLaunchedEvent(id uint64, addr, creator, symbol string) *types.Event {
	return &types.Event{
		Type: EventTypeTokenLaunched,
		Attributes: map[string]string{
			"tokenId": formatID(id),
			"address": addr,
			"creator": creator,
			"symbol":  symbol,
		},
	}
}

// TokenTradedEvent records a completed buy or sell against the curve.
func TokenTradedEvent(id uint64, trader, direction, gross, fee, units, reserve string) *types.Event {
	return &types.Event{
		Type: EventTypeTokenTraded,
		Attributes: map[string]string{
			"tokenId":   formatID(id),
			"trader":    trader,
			"direction": direction,
			"gross":     gross,
			"fee":       fee,
			"units":     units,
			"reserve":   reserve,
		},
	}
}

// TokenGraduatedEvent records the Live→Graduated transition with the snapshot
// amounts the allocation was computed from.
func TokenGraduatedEvent(id uint64, reserve, burnedUnits, reward string, poolLegs int) *types.Event {
	return &types.Event{
		Type: EventTypeTokenGraduated,
		Attributes: map[string]string{
			"tokenId":     formatID(id),
			"reserve":     reserve,
			"burnedUnits": burnedUnits,
			"reward":      reward,
			"poolLegs":    strconv.Itoa(poolLegs),
		},
	}
}

// TokenDelistedEvent records an administrative delisting and the reserve
// amount flushed to the treasury.
func TokenDelistedEvent(id uint64, reason, flushed string) *types.Event {
	return &types.Event{
		Type: EventTypeTokenDelisted,
		Attributes: map[string]string{
			"tokenId": formatID(id),
			"reason":  reason,
			"flushed": flushed,
		},
	}
}

// GraduationLegSkippedEvent warns that a weighted pool leg had no configured
// collaborator, leaving its base-currency share behind in the vault.
func GraduationLegSkippedEvent(id uint64, leg, base, units string) *types.Event {
	return &types.Event{
		Type: EventTypeGraduationLegSkipped,
		Attributes: map[string]string{
			"tokenId": formatID(id),
			"leg":     leg,
			"base":    base,
			"units":   units,
		},
	}
}
