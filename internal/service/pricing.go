package service

import (
	"errors"
	"math"
	"time"
)

// Upper bounds of the NUMERIC(10,2) and NUMERIC(12,2) price columns.
const (
	MaxHourlyRate = 99999999.99
	MaxTotalPrice = 9999999999.99
)

var (
	ErrInvalidInterval = errors.New("end_time must be after start_time")
	ErrNegativeRate    = errors.New("hourly rate must not be negative")
	ErrRateTooLarge    = errors.New("hourly rate exceeds the storable maximum")
	ErrPriceTooLarge   = errors.New("total price exceeds the storable maximum")
)

// Quote is a validated booking interval and its price.
type Quote struct {
	StartTime  time.Time
	EndTime    time.Time
	HourlyRate float64
	TotalPrice float64
}

// Hours is the booked duration in (possibly fractional) hours. It is computed
// from Unix seconds because time.Duration saturates after about 292 years.
func (q Quote) Hours() float64 {
	secs := q.EndTime.Unix() - q.StartTime.Unix()
	nanos := q.EndTime.Nanosecond() - q.StartTime.Nanosecond()
	return float64(secs)/3600 + float64(nanos)/3.6e12
}

// QuoteReservation prices [start, end) at rate per hour, pro rata for partial
// hours, rounded to the cent. Times are normalized to UTC.
func QuoteReservation(start, end time.Time, rate float64) (Quote, error) {
	if !end.After(start) {
		return Quote{}, ErrInvalidInterval
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Quote{}, ErrNegativeRate
	}
	if rate > MaxHourlyRate {
		return Quote{}, ErrRateTooLarge
	}
	q := Quote{
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		HourlyRate: rate,
	}
	q.TotalPrice = roundCents(rate * q.Hours())
	if q.TotalPrice > MaxTotalPrice {
		return Quote{}, ErrPriceTooLarge
	}
	return q, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
