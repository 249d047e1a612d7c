package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	BaseURL  string `validate:"required,url"`
	Token    string `validate:"required"`
	Assignee string `validate:"required,username"`
}

func TestValidateStruct(t *testing.T) {
	testCases := []struct {
		name             string
		input            TestStruct
		expectError      bool
		expectedErrorMsg string
	}{
		{
			name: "Success: All fields are valid",
			input: TestStruct{
				BaseURL:  "https://gitlab.example.com",
				Token:    "glpat-abc",
				Assignee: "alice.smith-1",
			},
			expectError: false,
		},
		{
			name: "Failure: Username with spaces",
			input: TestStruct{
				BaseURL:  "https://gitlab.example.com",
				Token:    "glpat-abc",
				Assignee: "alice smith",
			},
			expectError:      true,
			expectedErrorMsg: "field 'Assignee' must contain only letters, numbers, dots, hyphens, and underscores",
		},
		{
			name:             "Failure: Missing required field",
			input:            TestStruct{BaseURL: "https://gitlab.example.com", Assignee: "alice"},
			expectError:      true,
			expectedErrorMsg: "field 'Token' is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.input)

			if !tc.expectError {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErrorMsg)
		})
	}
}

func TestValidateStruct_CollectsAllErrorsAtOnce(t *testing.T) {
	err := ValidateStruct(TestStruct{})

	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)

	// Every missing field is reported in one pass.
	assert.Len(t, validationErr.Errors, 3)
	assert.Contains(t, err.Error(), "field 'BaseURL' is required")
	assert.Contains(t, err.Error(), "field 'Token' is required")
	assert.Contains(t, err.Error(), "field 'Assignee' is required")
}
