package marketdata

import (
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	DailyData    []model.Bar
	FourHourData []model.Bar
	SnapshotData map[string]Snapshot
	HeadlineData []string
	AccountData  *model.AccountSnapshot
	MarketOpen   bool
	Err          error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) DailyBars(_ string, lookback int) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, lookback), nil
}

func (m *MockFetcher) FourHourBars(_ string, lookback int) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.FourHourData != nil {
		return m.FourHourData, nil
	}
	return generateMockBars(m.Price, lookback), nil
}

func (m *MockFetcher) CurrentPrice(_ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) Snapshots(symbols []string) (map[string]Snapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]Snapshot, len(symbols))
	for _, sym := range symbols {
		if s, ok := m.SnapshotData[sym]; ok {
			out[sym] = s
		}
	}
	return out, nil
}

func (m *MockFetcher) Headlines(_ string, limit int) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.HeadlineData) > limit {
		return m.HeadlineData[:limit], nil
	}
	return m.HeadlineData, nil
}

func (m *MockFetcher) Account() (*model.AccountSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.AccountData != nil {
		return m.AccountData, nil
	}
	return &model.AccountSnapshot{PortfolioValue: 100000, BuyingPower: 100000, Status: "ACTIVE"}, nil
}

func (m *MockFetcher) IsMarketDay(_ time.Time) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.MarketOpen, nil
}

func generateMockBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
