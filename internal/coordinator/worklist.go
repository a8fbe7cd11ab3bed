package coordinator

import (
	"path/filepath"

	"marketfetch/internal/config"
)

// WorkList returns the symbols to fetch in configuration order. Entries without
// a symbol key are skipped; duplicates are kept.
func WorkList(assets []config.Asset) []string {
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.HasSymbol {
			symbols = append(symbols, a.Symbol)
		}
	}
	return symbols
}

// Destination returns the path the fetch for symbol writes to.
// Symbols are used verbatim.
func Destination(outputDir, symbol string) string {
	return filepath.Join(outputDir, symbol+".bin")
}
