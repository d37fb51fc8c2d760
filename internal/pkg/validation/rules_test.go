package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Role     string `validate:"omitempty,role"`
	Status   string `validate:"omitempty,jobstatus"`
	App      string `validate:"omitempty,appstatus"`
	Type     string `validate:"omitempty,eventtype"`
	Deadline string `validate:"omitempty,datestr"`
	Salary   string `validate:"omitempty,amount"`
}

func TestRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"empty", sample{}, true},
		{"known values", sample{Role: "alumni", Status: "closed", App: "accepted", Type: "reunion", Deadline: "2026-12-31", Salary: "10,000,000"}, true},
		{"unknown role", sample{Role: "root"}, false},
		{"unknown job status", sample{Status: "archived"}, false},
		{"unknown application status", sample{App: "maybe"}, false},
		{"unknown event type", sample{Type: "party"}, false},
		{"bad date", sample{Deadline: "31-12-2026"}, false},
		{"negative amount", sample{Salary: "-5"}, false},
		{"decimal amount", sample{Salary: "1.5"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
