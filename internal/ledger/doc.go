// Package ledger implements the money ledger for a live cash game.
//
// A Game holds the table rules (blinds, buyin limits, hourly rake) and the
// players currently seated. Players are created by AddPlayer and destroyed
// by Cashout; nothing else holds on to them.
//
// # Basic Usage
//
//	g, err := ledger.FromTable(map[string]any{"sb": 1, "bb": 2, "rake": 5})
//	if err != nil {
//	    return err
//	}
//	_ = g.AddPlayer("Alice", 100, false)
//	_ = g.AddOn("Alice", 50)
//	s, _ := g.Cashout("Alice", 220)
//	// s.Buyin == 150, s.Net == s.Cashout - 150
//
// # Rake
//
// Non-host players pay rake per whole second seated, floor(seconds*rate/3600).
// Hosts never pay rake.
//
// # Deterministic Testing
//
// Inject a mock clock so elapsed time can be controlled exactly:
//
//	clock := quartz.NewMock(t)
//	g, _ := ledger.FromTable(table, ledger.WithClock(clock))
//	_ = g.AddPlayer("Bob", 100, false)
//	clock.Advance(time.Hour).MustWait(ctx)
//
// Errors are *ConfigError, *ValidationError or *LookupError and also match
// ErrConfig, ErrValidation and ErrNotSeated with errors.Is.
package ledger
