package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenText(t *testing.T) {
	cases := []struct {
		text, reason string
	}{
		{"Jane Doe", ""},
		{"Cassandra Glass", ""},
		{"", ""},
		{"total BITCH", ReasonLanguage},
		{"visit www.example.com now", ReasonURL},
		{"mail me: kid@example.com", ReasonContactInfo},
		{"call 555-123-4567", ReasonContactInfo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.reason, ScreenText(tc.text), tc.text)
	}
}

func TestRegisterRejectsScreenedName(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "see https://spam.example", Email: "a@b.com", Password: "s3cretpass"})
	var rejected *RejectedContentError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "name", rejected.Field)
	assert.Equal(t, ReasonURL, rejected.Reason)

	var n int64
	require.NoError(t, db.Table("users").Count(&n).Error)
	assert.Zero(t, n)
}
