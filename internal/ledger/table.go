package ledger

import (
	"math"
	"sort"
)

// Config table keys.
const (
	KeySmallBlind = "sb"
	KeyBigBlind   = "bb"
	KeyMinBuyin   = "min_bi"
	KeyMaxBuyin   = "max_bi"
	KeyRake       = "rake"
)

type tableRules struct {
	smallBlind int64
	bigBlind   int64
	minBuyin   *int64
	maxBuyin   *int64
	rake       *int64
}

// FromTable builds a Game from a decoded config table. sb and bb are
// required; min_bi, max_bi and rake are optional. Every present value
// must be a non-negative integer.
func FromTable(table map[string]any, opts ...Option) (*Game, error) {
	var rules tableRules
	var err error

	if rules.smallBlind, err = requiredInt(table, KeySmallBlind); err != nil {
		return nil, err
	}
	if rules.bigBlind, err = requiredInt(table, KeyBigBlind); err != nil {
		return nil, err
	}
	if rules.minBuyin, err = optionalInt(table, KeyMinBuyin); err != nil {
		return nil, err
	}
	if rules.maxBuyin, err = optionalInt(table, KeyMaxBuyin); err != nil {
		return nil, err
	}
	if rules.rake, err = optionalInt(table, KeyRake); err != nil {
		return nil, err
	}

	g := newGame(rules, opts...)
	for _, key := range unknownKeys(table) {
		g.logger.Debug("Ignoring unknown config key", "key", key)
	}
	return g, nil
}

func requiredInt(table map[string]any, key string) (int64, error) {
	v, ok := table[key]
	if !ok {
		return 0, &ConfigError{Field: key, Problem: "is required"}
	}
	return toInt(key, v)
}

func optionalInt(table map[string]any, key string) (*int64, error) {
	v, ok := table[key]
	if !ok {
		return nil, nil
	}
	n, err := toInt(key, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toInt(key string, v any) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, &ConfigError{Field: key, Problem: "is out of range"}
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, &ConfigError{Field: key, Problem: "is out of range"}
		}
		n = int64(x)
	case uintptr:
		if uint64(x) > math.MaxInt64 {
			return 0, &ConfigError{Field: key, Problem: "is out of range"}
		}
		n = int64(x)
	default:
		return 0, &ConfigError{Field: key, Problem: "must be an integer"}
	}
	if n < 0 {
		return 0, &ConfigError{Field: key, Problem: "must not be negative"}
	}
	return n, nil
}

func unknownKeys(table map[string]any) []string {
	var keys []string
	for k := range table {
		switch k {
		case KeySmallBlind, KeyBigBlind, KeyMinBuyin, KeyMaxBuyin, KeyRake:
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
