package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const MonthsPerYear = 12

// MonthNames are the row labels of every monthly table, January first.
var MonthNames = [MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Monthly holds one value per calendar month, January first.
type Monthly [MonthsPerYear]float64

func (m Monthly) Sum() float64 {
	return floats.Sum(m[:])
}

func (m Monthly) Mean() float64 {
	return stat.Mean(m[:], nil)
}

// Sub returns m - o element-wise.
func (m Monthly) Sub(o Monthly) Monthly {
	out := m
	floats.Sub(out[:], o[:])
	return out
}

func (m Monthly) Scale(f float64) Monthly {
	out := m
	floats.Scale(f, out[:])
	return out
}

// MonthlyFromSlice copies exactly twelve values.
func MonthlyFromSlice(v []float64) (Monthly, error) {
	var out Monthly
	if len(v) != MonthsPerYear {
		return out, invalid("monthly series", "must have 12 values")
	}
	copy(out[:], v)
	return out, nil
}
