package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: ""},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid memory config",
			config: Config{Backend: BackendMemory},
		},
		{
			name:   "valid sqlite config with custom catalog",
			config: Config{Backend: BackendSQLite, MemberTypes: []MemberType{{ID: "gold", Discount: 10, MonthPostsLimit: 500}}},
		},
		{
			name:    "blank member type id",
			config:  Config{Backend: BackendMemory, MemberTypes: []MemberType{{ID: " "}}},
			wantErr: ErrMemberTypeIDEmpty,
		},
		{
			name:    "duplicate member type id",
			config:  Config{Backend: BackendMemory, MemberTypes: []MemberType{{ID: "basic"}, {ID: "basic"}}},
			wantErr: ErrMemberTypeDuplicate,
		},
		{
			name:    "negative limits",
			config:  Config{Backend: BackendMemory, MemberTypes: []MemberType{{ID: "basic", MonthPostsLimit: -1}}},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigCatalog(t *testing.T) {
	t.Run("defaults when empty", func(t *testing.T) {
		got := Config{Backend: BackendMemory}.Catalog()
		assert.Equal(t, DefaultMemberTypes(), got)
	})

	t.Run("returns a copy of the configured catalog", func(t *testing.T) {
		cfg := Config{Backend: BackendMemory, MemberTypes: []MemberType{{ID: "gold"}}}
		got := cfg.Catalog()
		got[0].ID = "changed"
		assert.Equal(t, "gold", cfg.MemberTypes[0].ID)
	})
}
