package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	// Test valid user creation
	validEmail := "test@example.com"
	validName := "Test User"
	validPassword := "Password123"

	user, err := NewUser(validEmail, validName, validPassword)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Email != validEmail {
		t.Errorf("Expected email %s, got %s", validEmail, user.Email)
	}

	if user.Name != validName {
		t.Errorf("Expected name %s, got %s", validName, user.Name)
	}

	if user.Password != validPassword {
		t.Errorf("Expected password %s, got %s", validPassword, user.Password)
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}

	// Test invalid email
	_, err = NewUser("", validName, validPassword)
	if !errors.Is(err, ErrEmptyEmail) {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	_, err = NewUser("invalidemail", validName, validPassword)
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	// Test invalid name
	_, err = NewUser(validEmail, "", validPassword)
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected error %v, got %v", ErrEmptyName, err)
	}

	_, err = NewUser(validEmail, strings.Repeat("n", MaxNameLength+1), validPassword)
	if !errors.Is(err, ErrNameTooLong) {
		t.Errorf("Expected error %v, got %v", ErrNameTooLong, err)
	}

	// Name length counts characters, not bytes. A 60-character Cyrillic
	// name is 120 bytes and must be accepted.
	_, err = NewUser(validEmail, strings.Repeat("ж", 60), validPassword)
	if err != nil {
		t.Errorf("Expected multibyte name to be accepted, got %v", err)
	}

	_, err = NewUser(validEmail, strings.Repeat("ж", MaxNameLength+1), validPassword)
	if !errors.Is(err, ErrNameTooLong) {
		t.Errorf("Expected error %v, got %v", ErrNameTooLong, err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Password123", nil},
		{"minimum length", "Aa345678", nil},
		{"empty", "", ErrEmptyPassword},
		{"too short", "Aa34567", ErrPasswordTooShort},
		{"no uppercase", "password123", ErrPasswordTooWeak},
		{"no lowercase", "PASSWORD123", ErrPasswordTooWeak},
		{"no digit", "PasswordOnly", ErrPasswordTooWeak},
		{"exactly at byte cap", "Aa1" + strings.Repeat("x", MaxPasswordBytes-3), nil},
		{"one byte over cap", "Aa1" + strings.Repeat("x", MaxPasswordBytes-2), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidatePassword_MultibyteLength(t *testing.T) {
	// The minimum counts runes, so eight multibyte characters pass as long
	// as complexity rules are met, while the maximum counts bytes.
	password := "Pässw0rd"
	if err := ValidatePassword(password); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 71 bytes in 37 runes: over the byte cap despite being short in runes.
	long := "Aa1" + strings.Repeat("é", 34)
	if err := ValidatePassword(long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}
}

func TestUserValidate(t *testing.T) {
	validUser := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		Name:           "Test User",
		HashedPassword: "$2a$10$somehashedpassword",
	}

	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected valid user, got error %v", err)
	}

	// Test empty ID
	invalidUser := validUser
	invalidUser.ID = uuid.Nil
	if err := invalidUser.Validate(); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	// Test missing credentials entirely
	invalidUser = validUser
	invalidUser.HashedPassword = ""
	if err := invalidUser.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	// A plaintext password takes precedence over the hash and must meet
	// the complexity rules.
	invalidUser = validUser
	invalidUser.Password = "weak"
	if err := invalidUser.Validate(); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}
}
