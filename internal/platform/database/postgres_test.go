package database

import "testing"

func TestNewPoolDefaults(t *testing.T) {
	p := newPool()
	if p.maxOpen != DefaultMaxOpenConns || p.maxIdle != DefaultMaxOpenConns/2 {
		t.Fatalf("unexpected default pool %+v", p)
	}
}

func TestWithMaxOpenConns(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		wantOpen int
		wantIdle int
	}{
		{"larger pool", 20, 20, 10},
		{"single connection", 1, 1, 1},
		{"zero keeps default", 0, DefaultMaxOpenConns, DefaultMaxOpenConns / 2},
		{"negative keeps default", -3, DefaultMaxOpenConns, DefaultMaxOpenConns / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPool(WithMaxOpenConns(tt.n))
			if p.maxOpen != tt.wantOpen || p.maxIdle != tt.wantIdle {
				t.Fatalf("expected open=%d idle=%d, got %+v", tt.wantOpen, tt.wantIdle, p)
			}
		})
	}
}
