package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carelink-api/internal/config"
	"carelink-api/internal/domain"
	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/patient"
	"carelink-api/internal/repository/memory"
	"carelink-api/pkg/auth"
)

func ptr[T any](v T) *T { return &v }

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "service-test-secret-0123456789abcd",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "carelink-test",
	})
}

// seedUser creates an account directly in the store and returns the claims a
// request authenticated as that account would carry.
func seedUser(t *testing.T, store *memory.Store, name, email string) domain.Claims {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "unused",
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return domain.Claims{UserID: u.ID, Email: u.Email, Name: u.Name}
}

func seedPatient(t *testing.T, store *memory.Store, owner domain.Claims) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		FirstName:   "Jane",
		LastName:    "Roe",
		DateOfBirth: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:      patient.GenderFemale,
		Phone:       "9876543210",
		CreatedBy:   owner.UserID,
	}
	require.NoError(t, store.Patients().Create(context.Background(), p))
	return p
}

func seedDoctor(t *testing.T, store *memory.Store) *doctor.Doctor {
	t.Helper()
	d := &doctor.Doctor{
		FirstName:         "Gregory",
		LastName:          "House",
		Specialization:    "Diagnostics",
		Phone:             "5551234567",
		Email:             "house@clinic.test",
		YearsOfExperience: 20,
	}
	require.NoError(t, store.Doctors().Create(context.Background(), d))
	return d
}

func nopLogger() *zap.Logger { return zap.NewNop() }
