package item

import (
	"strings"
	"testing"
)

func TestCreateParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid append",
			params:  CreateParams{Name: "milk"},
			wantErr: false,
		},
		{
			name:    "valid explicit position",
			params:  CreateParams{Name: "milk", Position: intPtr(0)},
			wantErr: false,
		},
		{
			name:    "missing name",
			params:  CreateParams{Name: ""},
			wantErr: true,
			errMsg:  "name is required",
		},
		{
			name:    "name too long",
			params:  CreateParams{Name: strings.Repeat("a", 256)},
			wantErr: true,
			errMsg:  "name must be 255 characters or less",
		},
		{
			name:    "name exactly 255 chars",
			params:  CreateParams{Name: strings.Repeat("a", 255)},
			wantErr: false,
		},
		{
			name:    "negative position",
			params:  CreateParams{Name: "milk", Position: intPtr(-1)},
			wantErr: true,
			errMsg:  "position must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("Validate() expected error, got nil")
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.errMsg)
				}
				if KindOf(err) != KindValidation {
					t.Errorf("KindOf(%v) = %v, want validation", err, KindOf(err))
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestReplaceParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  ReplaceParams
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid",
			params:  ReplaceParams{Name: "eggs", Position: intPtr(2)},
			wantErr: false,
		},
		{
			name:    "empty name",
			params:  ReplaceParams{Name: "", Position: intPtr(0)},
			wantErr: true,
			errMsg:  "name cannot be empty",
		},
		{
			name:    "negative position",
			params:  ReplaceParams{Name: "eggs", Position: intPtr(-3)},
			wantErr: true,
			errMsg:  "position must be non-negative",
		},
		{
			name:    "missing position",
			params:  ReplaceParams{Name: "eggs"},
			wantErr: false,
		},
		{
			name:    "name too long",
			params:  ReplaceParams{Name: strings.Repeat("b", 300)},
			wantErr: true,
			errMsg:  "name must be 255 characters or less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("Validate() expected error, got nil")
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestCheckDense(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		wantErr   bool
	}{
		{"empty list", nil, false},
		{"single item", []int{0}, false},
		{"dense unordered", []int{2, 0, 1}, false},
		{"gap", []int{0, 2}, true},
		{"duplicate", []int{0, 1, 1}, true},
		{"starts at one", []int{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]*Item, 0, len(tt.positions))
			for i, pos := range tt.positions {
				items = append(items, &Item{ID: int64(i + 1), Position: pos})
			}

			err := CheckDense(items)
			if tt.wantErr && err == nil {
				t.Errorf("CheckDense(%v) expected error, got nil", tt.positions)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckDense(%v) unexpected error: %v", tt.positions, err)
			}
		})
	}
}

func intPtr(i int) *int { return &i }
