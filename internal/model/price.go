package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Price bounds in whatever currency the billing side assigns.
const (
	MinPrice = 5.0
	MaxPrice = 50.0
)

// Price is the amount charged for processing one task, kept in the
// inclusive range [MinPrice, MaxPrice] and rounded to two decimals.
type Price float64

// NewPrice validates and rounds the given value.
func NewPrice(value float64) (Price, error) {
	if value < MinPrice || value > MaxPrice {
		return 0, fmt.Errorf("%w: price must be between %v and %v", ErrValidation, MinPrice, MaxPrice)
	}

	return Price(math.Round(value*100) / 100), nil
}

// RandomPrice returns a price drawn uniformly from the allowed range.
// It is assigned once when a task is created.
func RandomPrice() Price {
	p, _ := NewPrice(MinPrice + rand.Float64()*(MaxPrice-MinPrice))
	return p
}

// Value returns the price as a plain float64.
func (p Price) Value() float64 {
	return float64(p)
}
