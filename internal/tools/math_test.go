package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/sreevatsan/storysmith/internal/types"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		a, b     int
		expected string
	}{
		{3, 4, "7"},
		{0, 0, "0"},
		{-5, 3, "-2"},
		{1000000, 1000000, "2000000"},
	}

	tool := Add()
	for _, tt := range tests {
		result, err := tool.Call(context.Background(), map[string]any{"a": tt.a, "b": tt.b})
		if err != nil {
			t.Fatalf("add(%d, %d) returned error: %v", tt.a, tt.b, err)
		}
		if result != tt.expected {
			t.Errorf("add(%d, %d) = %q, want %q", tt.a, tt.b, result, tt.expected)
		}
	}
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		a, b     int
		expected string
	}{
		{2, 2, "4"},
		{8, 7, "56"},
		{-3, 4, "-12"},
		{0, 99, "0"},
	}

	tool := Multiply()
	for _, tt := range tests {
		result, err := tool.Call(context.Background(), map[string]any{"a": tt.a, "b": tt.b})
		if err != nil {
			t.Fatalf("multiply(%d, %d) returned error: %v", tt.a, tt.b, err)
		}
		if result != tt.expected {
			t.Errorf("multiply(%d, %d) = %q, want %q", tt.a, tt.b, result, tt.expected)
		}
	}
}

func TestDivide(t *testing.T) {
	tests := []struct {
		a, b     int
		expected string
	}{
		{14, 5, "2.8"},
		{10, 2, "5"},
		{-9, 3, "-3"},
		{1, 4, "0.25"},
	}

	tool := Divide()
	for _, tt := range tests {
		result, err := tool.Call(context.Background(), map[string]any{"a": tt.a, "b": tt.b})
		if err != nil {
			t.Fatalf("divide(%d, %d) returned error: %v", tt.a, tt.b, err)
		}
		if result != tt.expected {
			t.Errorf("divide(%d, %d) = %q, want %q", tt.a, tt.b, result, tt.expected)
		}
	}
}

func TestDivideByZero(t *testing.T) {
	tool := Divide()
	_, err := tool.Call(context.Background(), map[string]any{"a": 7, "b": 0})
	if !errors.Is(err, types.ErrDivisionByZero) {
		t.Errorf("divide(7, 0) error = %v, want ErrDivisionByZero", err)
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		key     string
		want    int
		wantErr bool
	}{
		{"int value", map[string]any{"a": 3}, "a", 3, false},
		{"whole float from JSON", map[string]any{"a": float64(4)}, "a", 4, false},
		{"fractional float", map[string]any{"a": 3.5}, "a", 0, true},
		{"missing key", map[string]any{"b": 1}, "a", 0, true},
		{"string value", map[string]any{"a": "3"}, "a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(tt.args, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("intArg(%v, %q) error = %v, wantErr %t", tt.args, tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("intArg(%v, %q) = %d, want %d", tt.args, tt.key, got, tt.want)
			}
		})
	}
}
