package strategy

import (
	"strings"
	"testing"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

func barsFrom(closes []float64, volume float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Open: c, High: c, Low: c, Close: c, Volume: volume}
	}
	return bars
}

func TestCalculate_InsufficientData(t *testing.T) {
	e := New(DefaultParams())
	sig := e.Calculate("TSLA", barsFrom([]float64{100, 101, 102}, 1000), nil)
	if sig.Direction != model.NoTrade {
		t.Errorf("expected NO_TRADE, got %s", sig.Direction)
	}
	if sig.Score != 0 {
		t.Errorf("expected score 0, got %d", sig.Score)
	}
	if len(sig.Reasons) != 1 || sig.Reasons[0] != "Insufficient bar data" {
		t.Errorf("unexpected reasons: %v", sig.Reasons)
	}
}

func TestCalculate_PrefersFourHourBars(t *testing.T) {
	e := New(DefaultParams())
	// Daily alone would be too short; enough 4h bars must carry the scan.
	fourHour := make([]float64, 25)
	for i := range fourHour {
		fourHour[i] = 100
	}
	sig := e.Calculate("SPY", nil, barsFrom(fourHour, 1000))
	if sig.Direction != model.NoTrade {
		t.Errorf("expected NO_TRADE on flat series, got %s", sig.Direction)
	}
	for _, r := range sig.Reasons {
		if r == "Insufficient bar data" {
			t.Error("4h bars should have been used as the primary series")
		}
	}
}

func TestCalculate_VolumeAdvisoryDoesNotBlock(t *testing.T) {
	e := New(DefaultParams())
	// Uptrend long enough for EMA crossover math but with flat volume, so
	// the advisory note is appended without zeroing the signal.
	closes := make([]float64, 60)
	for i := range closes {
		if i < 40 {
			closes[i] = 100 - float64(i)*0.5
		} else {
			closes[i] = closes[39] + float64(i-39)*2
		}
	}
	sig := e.Calculate("NVDA", barsFrom(closes, 1000), nil)
	found := false
	for _, r := range sig.Reasons {
		if strings.Contains(r, "signal not blocked") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected volume advisory note, got %v", sig.Reasons)
	}
}

func TestClassifyRSI(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr float64
		score      int
		reason     string
	}{
		{"cross above oversold", 29, 31, 1, "RSI crossed above 30 (bullish)"},
		{"cross below overbought", 71, 69, -1, "RSI crossed below 70 (bearish)"},
		{"neutral zone", 45, 50, 0, ""},
		{"pinned oversold", 25, 28, 1, "RSI at oversold 28.0 (bullish)"},
		{"pinned overbought", 75, 78, -1, "RSI at overbought 78.0 (bearish)"},
		{"exactly at oversold stays bullish", 28, 30, 1, "RSI at oversold 30.0 (bullish)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := classifyRSI(tt.prev, tt.curr, 30, 70)
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
			if tt.reason == "" {
				if len(reasons) != 0 {
					t.Errorf("expected no reasons, got %v", reasons)
				}
				return
			}
			if len(reasons) != 1 || reasons[0] != tt.reason {
				t.Errorf("reasons = %v, want [%s]", reasons, tt.reason)
			}
		})
	}
}

func TestClassifyMACD(t *testing.T) {
	tests := []struct {
		name                   string
		prevM, currM           float64
		prevS, currS           float64
		score                  int
	}{
		{"bullish cross", -0.5, 0.5, 0, 0, 1},
		{"bearish cross", 0.5, -0.5, 0, 0, -1},
		{"no cross above", 1, 2, 0, 0, 0},
		{"no cross below", -1, -2, 0, 0, 0},
		{"touch without cross", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := classifyMACD(tt.prevM, tt.currM, tt.prevS, tt.currS)
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
		})
	}
}

func TestClassifyCross(t *testing.T) {
	if score, ok := classifyCross(99, 101, 100, 100); !ok || score != 1 {
		t.Errorf("expected bullish cross, got score=%d ok=%v", score, ok)
	}
	if score, ok := classifyCross(101, 99, 100, 100); !ok || score != -1 {
		t.Errorf("expected bearish cross, got score=%d ok=%v", score, ok)
	}
	if _, ok := classifyCross(101, 102, 100, 100); ok {
		t.Error("expected no cross when fast stays above slow")
	}
}

func TestVolumeConfirmed(t *testing.T) {
	e := New(DefaultParams())

	spike := make([]float64, 21)
	for i := range spike {
		spike[i] = 1000
	}
	spike[20] = 2000
	if !e.volumeConfirmed(spike) {
		t.Error("expected 2x spike over flat baseline to confirm")
	}

	flat := make([]float64, 21)
	for i := range flat {
		flat[i] = 1000
	}
	if e.volumeConfirmed(flat) {
		t.Error("expected flat volume to fail 1.5x confirmation")
	}

	zeros := make([]float64, 21)
	if !e.volumeConfirmed(zeros) {
		t.Error("expected zero baseline to count as confirmed")
	}

	if e.volumeConfirmed([]float64{1, 2, 3}) {
		t.Error("expected short series to fail confirmation")
	}
}

func TestDirectionFor(t *testing.T) {
	tests := []struct {
		score     int
		threshold int
		want      model.Direction
	}{
		{3, 2, model.BuyCall},
		{2, 2, model.BuyCall},
		{1, 2, model.NoTrade},
		{0, 2, model.NoTrade},
		{-1, 2, model.NoTrade},
		{-2, 2, model.BuyPut},
		{-3, 2, model.BuyPut},
		{1, 1, model.BuyCall},
		{-1, 1, model.BuyPut},
		{0, 1, model.NoTrade},
	}
	for _, tt := range tests {
		if got := directionFor(tt.score, tt.threshold); got != tt.want {
			t.Errorf("directionFor(%d, %d) = %s, want %s", tt.score, tt.threshold, got, tt.want)
		}
	}
}
