package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/coder/quartz"
)

// TimestampFormat is used when rendering log entries.
const TimestampFormat = "2006-01-02 15:04:05 -07:00"

// Entry is a single buyin or add-on event.
type Entry struct {
	At     time.Time
	Amount int64
}

// Player is one participant's money state at the table.
type Player struct {
	name    string
	buyin   int64
	isHost  bool
	clockIn time.Time
	log     []Entry
	clock   quartz.Clock
}

func newPlayer(clock quartz.Clock, name string, buyin int64, isHost bool) *Player {
	now := clock.Now()
	return &Player{
		name:    name,
		buyin:   buyin,
		isHost:  isHost,
		clockIn: now,
		log:     []Entry{{At: now, Amount: buyin}},
		clock:   clock,
	}
}

// Name returns the player's ledger key
func (p *Player) Name() string { return p.name }

// Buyin returns the total money the player has put on the table
func (p *Player) Buyin() int64 { return p.buyin }

// IsHost reports whether the player is exempt from rake
func (p *Player) IsHost() bool { return p.isHost }

// ClockIn returns when the player sat down
func (p *Player) ClockIn() time.Time { return p.clockIn }

// Log returns a copy of the buyin and add-on history, oldest first.
func (p *Player) Log() []Entry {
	out := make([]Entry, len(p.log))
	copy(out, p.log)
	return out
}

// Elapsed returns how long the player has been seated.
func (p *Player) Elapsed() time.Duration {
	return p.clock.Since(p.clockIn)
}

// AddOn records additional money put on the table.
func (p *Player) AddOn(amount int64) {
	p.buyin += amount
	p.log = append(p.log, Entry{At: p.clock.Now(), Amount: amount})
}

// CalculateCashout returns the settled cashout and the rake paid for a
// final stack. Rake is charged per whole elapsed second and rounded down.
func (p *Player) CalculateCashout(stack, ratePerHour int64) (cashout, rake int64) {
	if p.isHost {
		return stack, 0
	}
	seconds := int64(p.Elapsed() / time.Second)
	rake = int64(math.Floor(float64(seconds) * float64(ratePerHour) / 3600.0))
	return stack - rake, rake
}

// String renders the player summary followed by the full log.
func (p *Player) String() string {
	var sb strings.Builder
	if p.isHost {
		sb.WriteString("(HOST) ")
	}
	elapsed := p.Elapsed()
	hours := int64(elapsed / time.Hour)
	minutes := int64(elapsed/time.Minute) % 60
	fmt.Fprintf(&sb, "NAME: %s | BUYIN: %d | PLAYING FOR: %dh %dm\n", p.name, p.buyin, hours, minutes)
	for _, e := range p.log {
		fmt.Fprintf(&sb, "(@ %s) added on for %d\n", e.At.Format(TimestampFormat), e.Amount)
	}
	return sb.String()
}
