package usecase

import (
	"fmt"
	"strings"
	"time"

	"TVRelay/internal/domain/models"
)

// TimestampLayout renders as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	SubjectDefault = "TradingView Alert"
	SubjectBuy     = "TradingView BUY Alert"
	SubjectSell    = "TradingView SELL Alert"
)

// Side is the trade direction detected in free text.
type Side int

const (
	SideNeutral Side = iota
	SideBuy
	SideSell
)

// Classify scans text case-insensitively. BUY is checked first, so text
// mentioning both sides is a buy.
func Classify(text string) Side {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "BUY"):
		return SideBuy
	case strings.Contains(upper, "SELL"):
		return SideSell
	default:
		return SideNeutral
	}
}

// Formatter turns alerts into notifications. It has no side effects; the
// clock is the only input besides the alert.
type Formatter struct {
	now func() time.Time
}

func NewFormatter(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

func (f *Formatter) Format(alert models.Alert) models.Notification {
	ts := f.now()
	stamp := ts.Format(TimestampLayout)

	switch a := alert.(type) {
	case models.TextAlert:
		return models.Notification{
			Subject:   textSubject(a.Message),
			Body:      fmt.Sprintf("%s\n\nTime: %s", a.Message, stamp),
			Timestamp: ts,
		}
	case models.StructuredAlert:
		return models.Notification{
			Subject:   fmt.Sprintf("%s %s", a.Signal, a.Symbol),
			Body:      fmt.Sprintf("Symbol: %s\nAction: %s\nPrice: %s\nTime: %s", a.Symbol, a.Signal, a.Price, stamp),
			Timestamp: ts,
		}
	default:
		return models.Notification{
			Subject:   SubjectDefault,
			Body:      fmt.Sprintf("Time: %s", stamp),
			Timestamp: ts,
		}
	}
}

func textSubject(message string) string {
	switch Classify(message) {
	case SideBuy:
		return SubjectBuy
	case SideSell:
		return SubjectSell
	default:
		return SubjectDefault
	}
}
