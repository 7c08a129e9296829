package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

// parseNumbers splits "a,b,c" into want non-negative numbers.
func parseNumbers(flag, value string, want int) ([]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != want {
		return nil, floatkiterrors.NewValidationError(flag, fmt.Sprintf("expected %d comma-separated numbers, got %q", want, value), nil)
	}

	out := make([]float64, want)
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, floatkiterrors.NewValidationError(flag, fmt.Sprintf("invalid number %q", part), err)
		}
		if n < 0 && i >= want-2 {
			return nil, floatkiterrors.NewValidationError(flag, "sizes must not be negative", nil)
		}
		out[i] = n
	}
	return out, nil
}

// parseRect reads "x,y,w,h".
func parseRect(flag, value string) (geometry.Rect, error) {
	n, err := parseNumbers(flag, value, 4)
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, nil
}

// parseSize reads "w,h".
func parseSize(flag, value string) (float64, float64, error) {
	n, err := parseNumbers(flag, value, 2)
	if err != nil {
		return 0, 0, err
	}
	return n[0], n[1], nil
}
