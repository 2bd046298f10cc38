package config

// ValidTickers are the underlyings with listed same-day expirations the
// engine knows how to analyze.
var ValidTickers = map[string]bool{
	"SPY": true,
	"QQQ": true,
	"IWM": true,
	"SPX": true,
	"XSP": true,
	"NDX": true,
	"RUT": true,
}

// DefaultTickers are analyzed when the config lists none.
var DefaultTickers = []string{"SPY", "QQQ", "IWM"}

// Volatility index symbols used to read the short-dated term structure.
const (
	TermFrontSymbol = "VIX9D"
	TermBackSymbol  = "VIX"
)
