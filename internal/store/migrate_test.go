package store

import "testing"

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable", false},
		{"postgresql://localhost/db", "pgx5://localhost/db", false},
		{"pgx5://localhost/db", "pgx5://localhost/db", false},
		{"mysql://localhost/db", "", true},
	}
	for _, tt := range tests {
		got, err := migrationURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("migrationURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("migrationURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
