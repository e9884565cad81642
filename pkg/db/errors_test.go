package db

import (
	"fmt"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{
			name:       "nil error",
			err:        nil,
			constraint: "idx_users_email",
			want:       false,
		},
		{
			name:       "postgres duplicate key",
			err:        fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`),
			constraint: "",
			want:       true,
		},
		{
			name:       "sqlite unique constraint",
			err:        fmt.Errorf("UNIQUE constraint failed: users.email"),
			constraint: "",
			want:       true,
		},
		{
			name:       "constraint name match",
			err:        fmt.Errorf(`constraint orders_user_art_toy_key violated`),
			constraint: "orders_user_art_toy_key",
			want:       true,
		},
		{
			name:       "different constraint name still caught by message probe",
			err:        fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_art_toys_sku" (SQLSTATE 23505)`),
			constraint: "idx_users_email",
			want:       true,
		},
		{
			name:       "unrelated error",
			err:        fmt.Errorf("connection reset by peer"),
			constraint: "idx_users_email",
			want:       false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
