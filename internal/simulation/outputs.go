package simulation

import (
	"fmt"

	"heating_board/internal/models"
)

// ChannelCount is the number of heating outputs on the board.
const ChannelCount = 10

// OutputBank holds the energized and allowed flags of every channel plus the main relay.
// Access is advisory: a disallowed channel can still be energized here.
type OutputBank struct {
	energized [ChannelCount]bool
	allowed   [ChannelCount]bool
	relay     bool
}

func newOutputBank() OutputBank {
	var b OutputBank
	for i := range b.allowed {
		b.allowed[i] = true
	}
	// channels 1..3 come up energized, like the board after a warm reboot
	b.energized[0], b.energized[1], b.energized[2] = true, true, true
	return b
}

func checkIndex(index int) error {
	if index < 1 || index > ChannelCount {
		return fmt.Errorf("output index %d outside 1..%d: %w", index, ChannelCount, ErrInvalidRange)
	}
	return nil
}

func (b *OutputBank) set(index int, on bool)        { b.energized[index-1] = on }
func (b *OutputBank) setAllowed(index int, on bool) { b.allowed[index-1] = on }

func (b *OutputBank) allOff() {
	for i := range b.energized {
		b.energized[i] = false
	}
}

func (b *OutputBank) activeCount() int {
	n := 0
	for _, on := range b.energized {
		if on {
			n++
		}
	}
	return n
}

// ensureRunOutputs turns on the odd allowed channels when nothing is energized.
func (b *OutputBank) ensureRunOutputs() {
	if b.activeCount() > 0 {
		return
	}
	for i := range b.energized {
		if b.allowed[i] {
			b.energized[i] = (i+1)%2 == 1
		}
	}
}

func (b *OutputBank) snapshot() []models.OutputChannel {
	out := make([]models.OutputChannel, ChannelCount)
	for i := range out {
		out[i] = models.OutputChannel{Index: i + 1, Energized: b.energized[i], Allowed: b.allowed[i]}
	}
	return out
}
