package utils

import "testing"

type nestedInfo struct {
	Name string `validate:"required"`
}

type sampleRequest struct {
	Email    string     `validate:"required,email"`
	Password string     `validate:"required,pwdmin"`
	Amount   float64    `validate:"required"`
	Info     nestedInfo `validate:"required"`
}

func validSample() sampleRequest {
	return sampleRequest{
		Email:    "jane@school.edu",
		Password: "secret123",
		Amount:   100,
		Info:     nestedInfo{Name: "Jane"},
	}
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	s := validSample()
	if err := ValidateStruct(&s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*sampleRequest)
	}{
		{"missing email", func(s *sampleRequest) { s.Email = "" }},
		{"bad email shape", func(s *sampleRequest) { s.Email = "not-an-email" }},
		{"short password", func(s *sampleRequest) { s.Password = "abc" }},
		{"zero amount", func(s *sampleRequest) { s.Amount = 0 }},
		{"missing nested field", func(s *sampleRequest) { s.Info.Name = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSample()
			tc.mutate(&s)
			if err := ValidateStruct(&s); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}
