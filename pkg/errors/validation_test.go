package errors

import "testing"

func TestValidateWorkflowID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"wf-123", false},
		{"3f2c7a1e-8b9d-4c6a-9e2f-1a2b3c4d5e6f", false},
		{"", true},
		{"../etc/passwd", true},
		{"a/b", true},
		{"a b", true},
		{"a\x00b", true},
		{"q?x=1", true},
		{string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		err := ValidateWorkflowID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateWorkflowID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidWorkflowID) {
			t.Errorf("ValidateWorkflowID(%q) code = %v", tt.id, GetCode(err))
		}
	}
}

func TestValidateEventID(t *testing.T) {
	if err := ValidateEventID(42); err != nil {
		t.Errorf("ValidateEventID(42) = %v", err)
	}
	if err := ValidateEventID(0); err == nil {
		t.Error("ValidateEventID(0) should fail")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:8000", false},
		{"https://api.example.com/base", false},
		{"", true},
		{"ftp://example.com", true},
		{"localhost:8000", true},
		{"http://", true},
	}
	for _, tt := range tests {
		if err := ValidateURL(tt.url); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"out/diagram.svg", false},
		{"/tmp/diagram.svg", false},
		{"", true},
		{"../secret", true},
		{"a\x01b", true},
	}
	for _, tt := range tests {
		if err := ValidatePath(tt.path); (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidWorkflowID, ErrCodeInvalidFormat,
		ErrCodeInvalidDiagram, ErrCodeInvalidDirection, ErrCodeInvalidConfig,
		ErrCodeNotFound, ErrCodeWorkflowNotFound, ErrCodeFileNotFound,
		ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited, ErrCodeUpstream,
		ErrCodeLayoutUnavailable, ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}

func TestValidateTaskID(t *testing.T) {
	if err := ValidateTaskID("task-1"); err != nil {
		t.Errorf("ValidateTaskID(task-1) = %v", err)
	}
	err := ValidateTaskID("")
	if !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateTaskID(\"\") code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
	}
	if UserMessage(err) != "task id cannot be empty" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}
