package model

import "time"

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionTypeFor maps an entry direction to the option type it trades.
func OptionTypeFor(d Direction) OptionType {
	if d == BuyPut {
		return Put
	}
	return Call
}

// Greeks holds whatever greeks the chain provider supplied. A nil *Greeks on
// a candidate means the provider had none.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	IV    float64
}

// ContractCandidate is one tradable contract from the filtered chain.
type ContractCandidate struct {
	Symbol       string // OCC contract symbol
	Underlying   string
	Type         OptionType
	Strike       float64
	Expiration   time.Time
	Bid          float64
	Ask          float64
	OpenInterest int64
	Volume       int64
	Greeks       *Greeks
}

// SelectedContract is the selector's pick, ready for order placement.
// EstimatedCost may be zero when the chain had no usable quote; callers must
// reject zero-cost contracts before sizing.
type SelectedContract struct {
	Symbol        string
	Underlying    string
	Type          OptionType
	Strike        float64
	Expiration    time.Time
	EstimatedCost float64
	Bid           float64
	Ask           float64
	OpenInterest  int64
	Greeks        *Greeks
}
