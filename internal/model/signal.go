package model

// Direction is the trade direction implied by a momentum signal.
type Direction string

const (
	BuyCall Direction = "BUY_CALL"
	BuyPut  Direction = "BUY_PUT"
	NoTrade Direction = "NO_TRADE"
)

// Entry reports whether the direction calls for opening a new position.
func (d Direction) Entry() bool {
	return d == BuyCall || d == BuyPut
}

// Signal is the composite momentum verdict for one symbol in one scan.
type Signal struct {
	Symbol    string
	Direction Direction
	Score     int
	Reasons   []string
}
