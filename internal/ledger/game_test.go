package ledger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, table map[string]any) (*Game, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	g, err := FromTable(table, WithClock(clock))
	require.NoError(t, err)
	return g, clock
}

func TestHeaderRoundTrip(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{
		"sb": int64(1), "bb": int64(2), "min_bi": int64(10), "max_bi": int64(500), "rake": int64(5),
	})

	assert.Equal(t, "$1/$2 NLH | Min. buyin $10 | Max. buyin $500 | Timed rake $5/hr", g.Header())
	assert.Contains(t, g.String(), "$1/$2 NLH | Min. buyin $10 | Max. buyin $500 | Timed rake $5/hr")
}

func TestHeaderOptionalFields(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 2, "bb": 5, "max_bi": 1000})

	assert.Equal(t, "$2/$5 NLH | Max. buyin $1000", g.Header())
	_, ok := g.MinBuyin()
	assert.False(t, ok)
	_, ok = g.TimedRake()
	assert.False(t, ok)
}

func TestAddPlayerLimits(t *testing.T) {
	tests := []struct {
		name    string
		buyin   int64
		wantErr string
	}{
		{name: "at minimum", buyin: 100},
		{name: "at maximum", buyin: 500},
		{name: "below minimum", buyin: 50, wantErr: "Bob attempted to buy in for $50 but min. buyin is $100"},
		{name: "above maximum", buyin: 501, wantErr: "Bob attempted to buy in for $501 but max. buyin is $500"},
		{name: "negative", buyin: -1, wantErr: "Bob attempted to buy in for $-1 but min. buyin is $100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "min_bi": 100, "max_bi": 500})

			err := g.AddPlayer("Bob", tt.buyin, false)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.buyin, g.TotalMoney())
				return
			}

			require.EqualError(t, err, tt.wantErr)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "Bob", verr.Name)
			assert.Equal(t, tt.buyin, verr.Attempted)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, g.Players(), "ledger must be unchanged on failure")
			assert.Zero(t, g.TotalMoney())
		})
	}
}

func TestAddPlayerWithoutLimits(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2})

	require.NoError(t, g.AddPlayer("Zed", 0, false))
	require.NoError(t, g.AddPlayer("Amy", 1_000_000, false))
	assert.Equal(t, int64(1_000_000), g.TotalMoney())
}

func TestBobBelowMinimum(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "min_bi": 100})

	err := g.AddPlayer("Bob", 50, false)
	require.Error(t, err)
	assert.Empty(t, g.Players())
	assert.Equal(t, int64(0), g.TotalMoney())
}

func TestAddPlayerOverwritesExistingSeat(t *testing.T) {
	var buf bytes.Buffer
	clock := quartz.NewMock(t)
	g, err := FromTable(map[string]any{"sb": 1, "bb": 2}, WithClock(clock), WithLogger(log.New(&buf)))
	require.NoError(t, err)

	require.NoError(t, g.AddPlayer("Alice", 100, false))
	require.NoError(t, g.AddOn("Alice", 50))
	require.NoError(t, g.AddPlayer("Alice", 30, true))

	p, err := g.Player("Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Buyin())
	assert.True(t, p.IsHost())
	assert.Len(t, p.Log(), 1)
	assert.Equal(t, int64(30), g.TotalMoney())
	assert.Contains(t, buf.String(), "Replacing seated player")
}

func TestAddOn(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "max_bi": 100})

	require.NoError(t, g.AddPlayer("Alice", 100, false))
	require.NoError(t, g.AddOn("Alice", 400), "add-ons are not bound by max buyin")

	p, err := g.Player("Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Buyin())
	assert.Equal(t, int64(500), g.TotalMoney())

	err = g.AddOn("Nobody", 10)
	require.EqualError(t, err, "player Nobody doesn't exist")
	assert.ErrorIs(t, err, ErrNotSeated)
}

func TestCashoutAliceNoRake(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "rake": 0})

	require.NoError(t, g.AddPlayer("Alice", 100, false))
	s, err := g.Cashout("Alice", 100)
	require.NoError(t, err)
	assert.Equal(t, Settlement{Buyin: 100, Cashout: 100, Net: 0, Rake: 0}, s)
}

func TestCashoutHostPaysNoRake(t *testing.T) {
	g, clock := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "rake": 10})

	require.NoError(t, g.AddPlayer("Carol", 20, true))
	clock.Advance(4 * time.Hour).MustWait(context.Background())

	s, err := g.Cashout("Carol", 20)
	require.NoError(t, err)
	assert.Equal(t, Settlement{Buyin: 20, Cashout: 20, Net: 0, Rake: 0}, s)
}

func TestCashoutWithRake(t *testing.T) {
	g, clock := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "rake": 5})

	require.NoError(t, g.AddPlayer("Dave", 100, false))
	clock.Advance(30 * time.Minute).MustWait(context.Background())
	require.NoError(t, g.AddOn("Dave", 100))
	clock.Advance(60 * time.Minute).MustWait(context.Background())

	s, err := g.Cashout("Dave", 350)
	require.NoError(t, err)
	assert.Equal(t, Settlement{Buyin: 200, Cashout: 343, Net: 143, Rake: 7}, s)
}

func TestCashoutWithoutConfiguredRake(t *testing.T) {
	g, clock := newTestGame(t, map[string]any{"sb": 1, "bb": 2})

	require.NoError(t, g.AddPlayer("Eve", 100, false))
	clock.Advance(10 * time.Hour).MustWait(context.Background())

	s, err := g.Cashout("Eve", 60)
	require.NoError(t, err)
	assert.Equal(t, Settlement{Buyin: 100, Cashout: 60, Net: -40, Rake: 0}, s)
}

func TestCashoutRemovesPlayer(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2})

	require.NoError(t, g.AddPlayer("Alice", 100, false))
	require.NoError(t, g.AddPlayer("Bob", 200, false))
	_, err := g.Cashout("Alice", 150)
	require.NoError(t, err)

	_, err = g.Player("Alice")
	var lerr *LookupError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "Alice", lerr.Name)

	_, err = g.Cashout("Alice", 150)
	assert.ErrorIs(t, err, ErrNotSeated)

	assert.Equal(t, int64(200), g.TotalMoney(), "cashed out players no longer count")
}

func TestSettlementsHistory(t *testing.T) {
	g, clock := newTestGame(t, map[string]any{"sb": 1, "bb": 2})

	require.NoError(t, g.AddPlayer("Alice", 100, false))
	require.NoError(t, g.AddPlayer("Bob", 100, true))
	_, err := g.Cashout("Bob", 10)
	require.NoError(t, err)
	clock.Advance(time.Minute).MustWait(context.Background())
	_, err = g.Cashout("Alice", 190)
	require.NoError(t, err)

	history := g.Settlements()
	require.Len(t, history, 2)
	assert.Equal(t, "Bob", history[0].Name)
	assert.True(t, history[0].IsHost)
	assert.Equal(t, int64(-90), history[0].Net)
	assert.Equal(t, "Alice", history[1].Name)
	assert.Equal(t, int64(90), history[1].Net)
	assert.True(t, history[1].At.After(history[0].At))
}

func TestPlayersSortedByName(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2})
	for _, name := range []string{"Mia", "Al", "Zoe"} {
		require.NoError(t, g.AddPlayer(name, 10, false))
	}

	var names []string
	for _, p := range g.Players() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"Al", "Mia", "Zoe"}, names)
}

func TestGameString(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2, "rake": 5})

	assert.Equal(t, "$1/$2 NLH | Timed rake $5/hr\nTOTAL: $0", g.String())

	require.NoError(t, g.AddPlayer("Bob", 100, false))
	require.NoError(t, g.AddPlayer("Alice", 50, true))
	alice, _ := g.Player("Alice")
	bob, _ := g.Player("Bob")

	want := "$1/$2 NLH | Timed rake $5/hr" +
		"\n-----\n" + alice.String() +
		"\n-----\n" + bob.String() +
		"TOTAL: $150"
	assert.Equal(t, want, g.String())
}

func TestTotalMoneyTracksSeatedPlayers(t *testing.T) {
	g, _ := newTestGame(t, map[string]any{"sb": 1, "bb": 2})

	require.NoError(t, g.AddPlayer("A", 100, false))
	require.NoError(t, g.AddPlayer("B", 200, false))
	require.NoError(t, g.AddOn("A", 25))
	assert.Equal(t, int64(325), g.TotalMoney())

	_, err := g.Cashout("B", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(125), g.TotalMoney())
}
