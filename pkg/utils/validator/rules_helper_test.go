package validator

import "testing"

type validationTestCase struct {
	name    string
	value   string
	wantErr bool
}

// runValidationTests drives a single-tag table through ValidateVar.
func runValidationTests(t *testing.T, tag string, tests []validationTestCase) {
	t.Helper()
	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateVar(tt.value, tag)
			if (err != nil) != tt.wantErr {
				t.Errorf("%s(%q): error = %v, wantErr %v", tag, tt.value, err, tt.wantErr)
			}
		})
	}
}
