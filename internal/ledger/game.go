package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Settlement is the outcome of cashing a player out.
type Settlement struct {
	Buyin   int64 // total money put on the table
	Cashout int64 // final stack minus rake
	Net     int64 // Cashout - Buyin
	Rake    int64
}

// SettlementRecord is a settlement kept after the player has left.
type SettlementRecord struct {
	Name   string
	IsHost bool
	At     time.Time
	Settlement
}

// Game is the table-level ledger of seated players.
type Game struct {
	smallBlind int64
	bigBlind   int64
	minBuyin   *int64
	maxBuyin   *int64
	timedRake  *int64 // dollars per hour

	players     map[string]*Player
	settlements []SettlementRecord

	clock  quartz.Clock
	logger *log.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithClock sets the clock used for clock-ins, add-ons and rake.
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) { g.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) { g.logger = logger.WithPrefix("ledger") }
}

func newGame(rules tableRules, opts ...Option) *Game {
	g := &Game{
		smallBlind: rules.smallBlind,
		bigBlind:   rules.bigBlind,
		minBuyin:   rules.minBuyin,
		maxBuyin:   rules.maxBuyin,
		timedRake:  rules.rake,
		players:    make(map[string]*Player),
		clock:      quartz.NewReal(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Blinds returns the small and big blind
func (g *Game) Blinds() (small, big int64) { return g.smallBlind, g.bigBlind }

// MinBuyin returns the minimum buyin, if one is configured
func (g *Game) MinBuyin() (int64, bool) { return optional(g.minBuyin) }

// MaxBuyin returns the maximum buyin, if one is configured
func (g *Game) MaxBuyin() (int64, bool) { return optional(g.maxBuyin) }

// TimedRake returns the hourly rake, if one is configured
func (g *Game) TimedRake() (int64, bool) { return optional(g.timedRake) }

// Now returns the current time on the game's clock.
func (g *Game) Now() time.Time { return g.clock.Now() }

// AddPlayer seats a player after checking the buyin against the table
// limits. A player already seated under the same name is replaced.
func (g *Game) AddPlayer(name string, buyin int64, isHost bool) error {
	if g.minBuyin != nil && buyin < *g.minBuyin {
		return &ValidationError{Name: name, Attempted: buyin, Limit: *g.minBuyin, Bound: MinBound}
	}
	if g.maxBuyin != nil && buyin > *g.maxBuyin {
		return &ValidationError{Name: name, Attempted: buyin, Limit: *g.maxBuyin, Bound: MaxBound}
	}

	if old, ok := g.players[name]; ok {
		g.logger.Warn("Replacing seated player", "player", name, "previous_buyin", old.Buyin())
	}
	g.players[name] = newPlayer(g.clock, name, buyin, isHost)
	g.logger.Info("Player seated", "player", name, "buyin", buyin, "host", isHost)
	return nil
}

// AddOn records an add-on for a seated player.
func (g *Game) AddOn(name string, amount int64) error {
	p, err := g.Player(name)
	if err != nil {
		return err
	}
	p.AddOn(amount)
	g.logger.Info("Player added on", "player", name, "amount", amount, "buyin", p.Buyin())
	return nil
}

// Cashout removes a player from the table and settles their final stack.
func (g *Game) Cashout(name string, stack int64) (Settlement, error) {
	p, ok := g.players[name]
	if !ok {
		return Settlement{}, &LookupError{Name: name}
	}
	delete(g.players, name)

	rate, _ := g.TimedRake()
	cashout, rake := p.CalculateCashout(stack, rate)
	s := Settlement{
		Buyin:   p.Buyin(),
		Cashout: cashout,
		Net:     cashout - p.Buyin(),
		Rake:    rake,
	}
	g.settlements = append(g.settlements, SettlementRecord{
		Name:       name,
		IsHost:     p.IsHost(),
		At:         g.clock.Now(),
		Settlement: s,
	})
	g.logger.Info("Player cashed out", "player", name, "stack", stack, "cashout", s.Cashout, "net", s.Net, "rake", s.Rake)
	return s, nil
}

// Player returns a seated player without removing them.
func (g *Game) Player(name string) (*Player, error) {
	p, ok := g.players[name]
	if !ok {
		return nil, &LookupError{Name: name}
	}
	return p, nil
}

// Players returns the seated players sorted by name.
func (g *Game) Players() []*Player {
	out := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Settlements returns every cashout so far, oldest first.
func (g *Game) Settlements() []SettlementRecord {
	out := make([]SettlementRecord, len(g.settlements))
	copy(out, g.settlements)
	return out
}

// TotalMoney is the sum of buyins of the players still seated.
func (g *Game) TotalMoney() int64 {
	var total int64
	for _, p := range g.players {
		total += p.Buyin()
	}
	return total
}

// Header renders the table rules on one line, e.g.
// "$1/$2 NLH | Min. buyin $10 | Max. buyin $500 | Timed rake $5/hr".
func (g *Game) Header() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%d/$%d NLH", g.smallBlind, g.bigBlind)
	if v, ok := g.MinBuyin(); ok {
		fmt.Fprintf(&sb, " | Min. buyin $%d", v)
	}
	if v, ok := g.MaxBuyin(); ok {
		fmt.Fprintf(&sb, " | Max. buyin $%d", v)
	}
	if v, ok := g.TimedRake(); ok {
		fmt.Fprintf(&sb, " | Timed rake $%d/hr", v)
	}
	return sb.String()
}

// String renders the full game state: rules, every seated player and
// the money on the table.
func (g *Game) String() string {
	var sb strings.Builder
	sb.WriteString(g.Header())
	players := g.Players()
	for _, p := range players {
		sb.WriteString("\n-----\n")
		sb.WriteString(p.String())
	}
	if len(players) == 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "TOTAL: $%d", g.TotalMoney())
	return sb.String()
}

func optional(v *int64) (int64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
