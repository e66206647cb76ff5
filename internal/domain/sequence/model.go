package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a normalized transport mode.
type Mode string

const (
	ModeSea  Mode = "SEA"
	ModeAir  Mode = "AIR"
	ModeRoad Mode = "ROAD"
	ModeRail Mode = "RAIL"
)

// Trade is a normalized trade direction.
type Trade string

const (
	TradeExport     Trade = "EX"
	TradeImport     Trade = "IM"
	TradeCrossTrade Trade = "CT"
)

// Scope separates independent identifier series.
type Scope string

const (
	ScopeJob   Scope = "job"
	ScopeQuote Scope = "quote"
)

const (
	serialWidth = 5
	quotePrefix = "Q"
)

var modeAliases = map[string]Mode{
	"SEA":         ModeSea,
	"OCEAN":       ModeSea,
	"SEA FREIGHT": ModeSea,
	"FCL":         ModeSea,
	"LCL":         ModeSea,
	"AIR":         ModeAir,
	"AIR FREIGHT": ModeAir,
	"ROAD":        ModeRoad,
	"TRUCK":       ModeRoad,
	"LAND":        ModeRoad,
	"RAIL":        ModeRail,
}

var tradeAliases = map[string]Trade{
	"EX":          TradeExport,
	"EXPORT":      TradeExport,
	"IM":          TradeImport,
	"IMPORT":      TradeImport,
	"CT":          TradeCrossTrade,
	"CROSS":       TradeCrossTrade,
	"CROSS TRADE": TradeCrossTrade,
	"CROSSTRADE":  TradeCrossTrade,
}

func normalizeToken(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseMode normalizes a transport mode. Unknown modes are an error.
func ParseMode(raw string) (Mode, error) {
	if mode, ok := modeAliases[normalizeToken(raw)]; ok {
		return mode, nil
	}
	return "", ErrUnknownMode.WithDetails(map[string]string{"mode": raw})
}

// ParseTrade normalizes a trade direction. Unknown directions are an error.
func ParseTrade(raw string) (Trade, error) {
	if trade, ok := tradeAliases[normalizeToken(raw)]; ok {
		return trade, nil
	}
	return "", ErrUnknownTrade.WithDetails(map[string]string{"trade": raw})
}

// NormalizeYear accepts a two- or four-digit year and returns its last two digits.
func NormalizeYear(year int) (string, error) {
	switch {
	case year >= 0 && year <= 99:
	case year >= 2000 && year <= 2099:
		year -= 2000
	default:
		return "", ErrInvalidYear.WithDetails(map[string]int{"year": year})
	}
	return fmt.Sprintf("%02d", year), nil
}

// Key is the composite business key a counter is kept for.
type Key struct {
	Scope Scope
	Mode  Mode
	Trade Trade
	Year  string
}

// BuildKey validates and normalizes the parts of a counter key.
func BuildKey(scope Scope, mode, trade string, year int) (Key, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Key{}, err
	}
	t, err := ParseTrade(trade)
	if err != nil {
		return Key{}, err
	}
	yy, err := NormalizeYear(year)
	if err != nil {
		return Key{}, err
	}
	return Key{Scope: scope, Mode: m, Trade: t, Year: yy}, nil
}

// FullYear returns the four-digit year of the key.
func (k Key) FullYear() int {
	yy, _ := strconv.Atoi(k.Year)
	return 2000 + yy
}

// String renders the storage key, e.g. "job:SEA:EX:25".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.Scope, k.Mode, k.Trade, k.Year)
}

// Identifier is an allocated business identifier.
type Identifier struct {
	Key    Key
	Serial int64
}

// FormatSerial zero-pads a serial to five digits.
func FormatSerial(serial int64) string {
	return fmt.Sprintf("%0*d", serialWidth, serial)
}

// String renders the identifier, e.g. "SEA-EX-25-00001" or "Q-AIR-IM-25-00042".
func (id Identifier) String() string {
	base := fmt.Sprintf("%s-%s-%s-%s", id.Key.Mode, id.Key.Trade, id.Key.Year, FormatSerial(id.Serial))
	if id.Key.Scope == ScopeQuote {
		return quotePrefix + "-" + base
	}
	return base
}

// ParseIdentifier parses a rendered job or quote identifier.
func ParseIdentifier(raw string) (Identifier, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	scope := ScopeJob
	if len(parts) == 5 && parts[0] == quotePrefix {
		scope = ScopeQuote
		parts = parts[1:]
	}
	if len(parts) != 4 {
		return Identifier{}, ErrInvalidIdentifier.WithDetails(map[string]string{"identifier": raw})
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || len(parts[2]) != 2 {
		return Identifier{}, ErrInvalidIdentifier.WithDetails(map[string]string{"identifier": raw})
	}
	key, err := BuildKey(scope, parts[0], parts[1], year)
	if err != nil {
		return Identifier{}, err
	}
	serial, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || serial < 1 || len(parts[3]) < serialWidth {
		return Identifier{}, ErrInvalidIdentifier.WithDetails(map[string]string{"identifier": raw})
	}
	return Identifier{Key: key, Serial: serial}, nil
}
