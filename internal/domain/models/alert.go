package models

// Alert is one normalized inbound signal. It is either a TextAlert or a
// StructuredAlert; callers switch on the concrete type.
type Alert interface {
	// SecretKey returns the shared secret presented by the caller.
	SecretKey() string
	isAlert()
}

// TextAlert carries a pre-formatted message, e.g. "Symbol: AAPL Action: BUY".
type TextAlert struct {
	Key     string
	Message string
}

func (a TextAlert) SecretKey() string { return a.Key }
func (TextAlert) isAlert() {}

// StructuredAlert carries discrete fields. Missing values are filled by the
// normalizer with DefaultSymbol, DefaultSignal and DefaultPrice.
type StructuredAlert struct {
	Key    string
	Symbol string
	Signal string
	Price  string
}

func (a StructuredAlert) SecretKey() string { return a.Key }
func (StructuredAlert) isAlert() {}

const (
	DefaultSymbol = "UNKNOWN"
	DefaultSignal = "SIGNAL"
	DefaultPrice  = "N/A"
)
