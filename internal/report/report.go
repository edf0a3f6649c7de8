// Package report builds and encodes the end-of-session report.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/lox/pokerledger/internal/fileutil"
	"github.com/lox/pokerledger/internal/ledger"
)

// Report is a snapshot of a session: table rules, everyone who cashed
// out and everyone still seated.
type Report struct {
	SessionID    string    `toml:"session_id"`
	GeneratedAt  time.Time `toml:"generated_at"`
	TotalOnTable int64     `toml:"total_on_table"`
	TotalRake    int64     `toml:"total_rake"`
	Table        Table     `toml:"table"`
	Settled      []Settled `toml:"settled,omitempty"`
	Seated       []Seated  `toml:"seated,omitempty"`
}

// Table holds the table rules.
type Table struct {
	SmallBlind int64  `toml:"sb"`
	BigBlind   int64  `toml:"bb"`
	MinBuyin   *int64 `toml:"min_bi,omitempty"`
	MaxBuyin   *int64 `toml:"max_bi,omitempty"`
	Rake       *int64 `toml:"rake,omitempty"`
}

// Settled is one completed cashout.
type Settled struct {
	Name    string    `toml:"name"`
	Host    bool      `toml:"host"`
	At      time.Time `toml:"at"`
	Buyin   int64     `toml:"buyin"`
	Cashout int64     `toml:"cashout"`
	Net     int64     `toml:"net"`
	Rake    int64     `toml:"rake"`
}

// Seated is a player still at the table when the report was built.
type Seated struct {
	Name    string    `toml:"name"`
	Host    bool      `toml:"host"`
	Buyin   int64     `toml:"buyin"`
	ClockIn time.Time `toml:"clock_in"`
	Minutes int64     `toml:"minutes"`
}

// Build snapshots the game.
func Build(sessionID string, g *ledger.Game) *Report {
	small, big := g.Blinds()
	r := &Report{
		SessionID:    sessionID,
		GeneratedAt:  g.Now(),
		TotalOnTable: g.TotalMoney(),
		Table: Table{
			SmallBlind: small,
			BigBlind:   big,
			MinBuyin:   ptr(g.MinBuyin()),
			MaxBuyin:   ptr(g.MaxBuyin()),
			Rake:       ptr(g.TimedRake()),
		},
	}

	for _, s := range g.Settlements() {
		r.TotalRake += s.Rake
		r.Settled = append(r.Settled, Settled{
			Name:    s.Name,
			Host:    s.IsHost,
			At:      s.At,
			Buyin:   s.Buyin,
			Cashout: s.Cashout,
			Net:     s.Net,
			Rake:    s.Rake,
		})
	}

	for _, p := range g.Players() {
		r.Seated = append(r.Seated, Seated{
			Name:    p.Name(),
			Host:    p.IsHost(),
			Buyin:   p.Buyin(),
			ClockIn: p.ClockIn(),
			Minutes: int64(p.Elapsed() / time.Minute),
		})
	}
	return r
}

// NewSessionID returns a time-ordered session identifier.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Encode writes the report as TOML.
func Encode(w io.Writer, r *Report) error {
	if r == nil {
		return fmt.Errorf("report: nil report")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(r)
}

// WriteFile encodes the report to path atomically.
func WriteFile(path string, r *Report) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, r)
	})
}

// Decode parses a report, mainly for tests and tooling.
func Decode(rd io.Reader) (*Report, error) {
	var r Report
	if _, err := toml.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return &r, nil
}

func ptr(v int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	return &v
}
