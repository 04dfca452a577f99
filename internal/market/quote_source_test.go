package market

import (
	"testing"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyQuoteMapsEquityFields(t *testing.T) {
	result := &finance.Equity{
		Quote: finance.Quote{
			RegularMarketPrice:         2512.40,
			RegularMarketOpen:          2490.00,
			RegularMarketDayHigh:       2530.00,
			RegularMarketDayLow:        2481.50,
			RegularMarketVolume:        5400000,
			RegularMarketChangePercent: 1.25,
			AverageDailyVolume3Month:   4800000,
			FiftyTwoWeekHigh:           2856.00,
			FiftyTwoWeekLow:            2012.00,
		},
		EpsTrailingTwelveMonths:     98.6,
		ForwardPE:                   21.4,
		PriceToBook:                 2.3,
		MarketCap:                   1_700_000_000_000,
		TrailingAnnualDividendYield: 0.035,
	}

	var rec StockRecord
	applyQuote(&rec, result)

	require.NotNil(t, rec.CurrentPrice)
	assert.InDelta(t, 2512.40, *rec.CurrentPrice, 1e-9)
	require.NotNil(t, rec.Open)
	assert.InDelta(t, 2490.00, *rec.Open, 1e-9)
	require.NotNil(t, rec.High)
	assert.InDelta(t, 2530.00, *rec.High, 1e-9)
	require.NotNil(t, rec.Low)
	assert.InDelta(t, 2481.50, *rec.Low, 1e-9)
	require.NotNil(t, rec.Volume)
	assert.Equal(t, int64(5400000), *rec.Volume)
	require.NotNil(t, rec.AvgVolume)
	assert.Equal(t, int64(4800000), *rec.AvgVolume)
	require.NotNil(t, rec.MarketCap)
	assert.InDelta(t, 1.7e12, *rec.MarketCap, 1)
	require.NotNil(t, rec.PERatio)
	assert.InDelta(t, 21.4, *rec.PERatio, 1e-9)
	require.NotNil(t, rec.PBRatio)
	assert.InDelta(t, 2.3, *rec.PBRatio, 1e-9)
	require.NotNil(t, rec.EPS)
	assert.InDelta(t, 98.6, *rec.EPS, 1e-9)
	require.NotNil(t, rec.FiftyTwoWeekHigh)
	assert.InDelta(t, 2856.00, *rec.FiftyTwoWeekHigh, 1e-9)
	require.NotNil(t, rec.FiftyTwoWeekLow)
	assert.InDelta(t, 2012.00, *rec.FiftyTwoWeekLow, 1e-9)
	require.NotNil(t, rec.ChangePercent)
	assert.InDelta(t, 1.25, *rec.ChangePercent, 1e-9)
	require.NotNil(t, rec.Timestamp)
}

func TestApplyQuoteScalesDividendYieldToPercent(t *testing.T) {
	result := &finance.Equity{TrailingAnnualDividendYield: 0.035}

	var rec StockRecord
	applyQuote(&rec, result)

	require.NotNil(t, rec.DividendYield)
	assert.InDelta(t, 3.5, *rec.DividendYield, 1e-9)
}

func TestApplyQuoteLeavesZeroValuesAbsent(t *testing.T) {
	var rec StockRecord
	applyQuote(&rec, &finance.Equity{})

	assert.Nil(t, rec.CurrentPrice)
	assert.Nil(t, rec.Volume)
	assert.Nil(t, rec.MarketCap)
	assert.Nil(t, rec.PERatio)
	assert.Nil(t, rec.EPS)
	assert.Nil(t, rec.DividendYield)
}
