package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damilareoj/student-portal-backend/internal/auth"
	"github.com/damilareoj/student-portal-backend/internal/config"
	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/damilareoj/student-portal-backend/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiry:    7 * 24 * time.Hour,
		OTPExpiry:    10 * time.Minute,
		ResetExpiry:  15 * time.Minute,
		ResetURLBase: "http://localhost:5173/reset-password",
	}
}

func newTestService() (*AccountService, *testutils.MemUserStore, *testutils.RecordingNotifier) {
	users := testutils.NewMemUserStore()
	notifier := &testutils.RecordingNotifier{}
	return NewAccountService(users, notifier, testConfig()), users, notifier
}

func signupReq() *dto.SignupRequest {
	return &dto.SignupRequest{
		Name:     "Ada Obi",
		Email:    "ada@example.com",
		Matric:   "COS/21/01/0001",
		Password: "Pw123!",
	}
}

// otpFromMail pulls the code out of the notification body.
func otpFromMail(t *testing.T, m *testutils.Mail) string {
	t.Helper()
	require.NotNil(t, m)
	otp := strings.TrimPrefix(m.Body, "Your OTP code is: ")
	require.Len(t, otp, 6)
	return otp
}

func TestSignupCreatesPendingOTP(t *testing.T) {
	svc, users, notifier := newTestService()

	created, err := svc.Signup(signupReq())
	require.NoError(t, err)
	assert.True(t, created)

	user := users.Snapshot("ada@example.com")
	require.NotNil(t, user)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "COS/21/01/0001", user.MatricNumber)
	require.True(t, user.OTPPending())
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *user.OTPExpiresAt, 5*time.Second)

	otp := otpFromMail(t, notifier.Last())
	assert.Equal(t, "ada@example.com", notifier.Last().To)
	// Stored hashed, never plaintext.
	assert.NotEqual(t, otp, *user.OTPHash)
	assert.True(t, auth.CheckSecret(otp, *user.OTPHash))
	// Password stored hashed too.
	assert.True(t, auth.CheckSecret("Pw123!", user.Password))
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.SignupRequest)
		wantErr error
	}{
		{
			name:    "missing name",
			mutate:  func(r *dto.SignupRequest) { r.Name = "" },
			wantErr: ErrFieldsRequired,
		},
		{
			name:    "missing email",
			mutate:  func(r *dto.SignupRequest) { r.Email = "" },
			wantErr: ErrFieldsRequired,
		},
		{
			name:    "missing matric",
			mutate:  func(r *dto.SignupRequest) { r.Matric = "" },
			wantErr: ErrFieldsRequired,
		},
		{
			name:    "missing password",
			mutate:  func(r *dto.SignupRequest) { r.Password = "" },
			wantErr: ErrFieldsRequired,
		},
		{
			name:    "unknown department code",
			mutate:  func(r *dto.SignupRequest) { r.Matric = "XYZ/21/01/0001" },
			wantErr: ErrInvalidMatric,
		},
		{
			name:    "one-digit year",
			mutate:  func(r *dto.SignupRequest) { r.Matric = "COS/1/01/0001" },
			wantErr: ErrInvalidMatric,
		},
		{
			name:    "sequence too short",
			mutate:  func(r *dto.SignupRequest) { r.Matric = "COS/21/01/001" },
			wantErr: ErrInvalidMatric,
		},
		{
			name:    "sequence too long",
			mutate:  func(r *dto.SignupRequest) { r.Matric = "COS/21/01/0000001" },
			wantErr: ErrInvalidMatric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _ := newTestService()
			req := signupReq()
			tt.mutate(req)

			_, err := svc.Signup(req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, users.Count())
		})
	}
}

func TestSignupResendBeforeVerification(t *testing.T) {
	svc, users, notifier := newTestService()

	created, err := svc.Signup(signupReq())
	require.NoError(t, err)
	require.True(t, created)
	firstHash := *users.Snapshot("ada@example.com").OTPHash

	// Same email again before verifying: fresh code, not a conflict.
	created, err = svc.Signup(signupReq())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, users.Count())
	assert.Len(t, notifier.Sent(), 2)

	user := users.Snapshot("ada@example.com")
	require.True(t, user.OTPPending())
	assert.NotEqual(t, firstHash, *user.OTPHash)

	// Only the latest code verifies.
	otp := otpFromMail(t, notifier.Last())
	assert.True(t, auth.CheckSecret(otp, *user.OTPHash))
}

func TestSignupConflicts(t *testing.T) {
	svc, _, notifier := newTestService()

	_, err := svc.Signup(signupReq())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyOTP(&dto.VerifyOTPRequest{
		Email: "ada@example.com",
		OTP:   otpFromMail(t, notifier.Last()),
	}))

	// Verified email: conflict, not resend.
	_, err = svc.Signup(signupReq())
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Same matric under a new email conflicts regardless of case.
	req := signupReq()
	req.Email = "other@example.com"
	req.Matric = "cos/21/01/0001"
	_, err = svc.Signup(req)
	assert.ErrorIs(t, err, ErrMatricTaken)
}

func TestSignupNotifierFailureKeepsRecord(t *testing.T) {
	svc, users, notifier := newTestService()
	notifier.Err = errors.New("smtp unreachable")

	_, err := svc.Signup(signupReq())
	require.Error(t, err)

	// Record persisted with a pending OTP; signup can simply be retried.
	user := users.Snapshot("ada@example.com")
	require.NotNil(t, user)
	assert.True(t, user.OTPPending())

	notifier.Err = nil
	created, err := svc.Signup(signupReq())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestVerifyOTP(t *testing.T) {
	svc, users, notifier := newTestService()
	_, err := svc.Signup(signupReq())
	require.NoError(t, err)
	otp := otpFromMail(t, notifier.Last())

	t.Run("unknown email", func(t *testing.T) {
		err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "nobody@example.com", OTP: otp})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "ada@example.com"})
		assert.ErrorIs(t, err, ErrFieldsRequired)
	})

	t.Run("wrong code", func(t *testing.T) {
		err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "ada@example.com", OTP: "000000"})
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("correct code verifies once", func(t *testing.T) {
		err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "ada@example.com", OTP: otp})
		require.NoError(t, err)

		user := users.Snapshot("ada@example.com")
		assert.True(t, user.IsVerified)
		assert.False(t, user.OTPPending())

		// Second identical call: the pending state is gone.
		err = svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "ada@example.com", OTP: otp})
		assert.ErrorIs(t, err, ErrNoPendingOTP)
	})
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, users, notifier := newTestService()
	_, err := svc.Signup(signupReq())
	require.NoError(t, err)
	otp := otpFromMail(t, notifier.Last())

	user := users.Snapshot("ada@example.com")
	past := time.Now().Add(-time.Minute)
	user.OTPExpiresAt = &past
	require.NoError(t, users.Save(user))

	err = svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "ada@example.com", OTP: otp})
	assert.ErrorIs(t, err, ErrOTPExpired)
}

// verifiedUser runs the full signup+verify flow and returns the notifier.
func verifiedUser(t *testing.T, svc *AccountService, notifier *testutils.RecordingNotifier) {
	t.Helper()
	_, err := svc.Signup(signupReq())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyOTP(&dto.VerifyOTPRequest{
		Email: "ada@example.com",
		OTP:   otpFromMail(t, notifier.Last()),
	}))
}

func TestLogin(t *testing.T) {
	svc, _, notifier := newTestService()
	verifiedUser(t, svc, notifier)

	t.Run("by email", func(t *testing.T) {
		resp, err := svc.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "Pw123!"})
		require.NoError(t, err)
		assert.Equal(t, MsgLoginSuccess, resp.Message)
		assert.Equal(t, "Ada Obi", resp.User.Name)
		assert.Equal(t, models.RoleStudent, resp.User.Role)
		require.NotNil(t, resp.User.Matric)
		assert.Equal(t, "COS/21/01/0001", *resp.User.Matric)

		claims, err := auth.ParseToken("test-secret", resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, models.RoleStudent, claims.Role)
	})

	t.Run("by matric case-insensitive", func(t *testing.T) {
		resp, err := svc.Login(&dto.LoginRequest{Matric: "cos/21/01/0001", Password: "Pw123!"})
		require.NoError(t, err)
		assert.Equal(t, MsgLoginSuccess, resp.Message)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := svc.Login(&dto.LoginRequest{Password: "Pw123!"})
		assert.ErrorIs(t, err, ErrFieldsRequired)

		_, err = svc.Login(&dto.LoginRequest{Email: "ada@example.com"})
		assert.ErrorIs(t, err, ErrFieldsRequired)
	})

	t.Run("no account enumeration", func(t *testing.T) {
		_, unknownErr := svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "Pw123!"})
		_, wrongPwErr := svc.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongPwErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongPwErr.Error())
	})

	t.Run("email takes precedence over matric", func(t *testing.T) {
		// Known matric with an unknown email still fails: matric is only
		// consulted when email is absent.
		_, err := svc.Login(&dto.LoginRequest{
			Email:    "nobody@example.com",
			Matric:   "COS/21/01/0001",
			Password: "Pw123!",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginVerificationGate(t *testing.T) {
	svc, users, _ := newTestService()
	_, err := svc.Signup(signupReq())
	require.NoError(t, err)

	// Unverified student is rejected.
	_, err = svc.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "Pw123!"})
	assert.ErrorIs(t, err, ErrNotVerified)

	// Admins bypass the verification flag.
	adminPw, err := auth.HashSecret("Password123")
	require.NoError(t, err)
	require.NoError(t, users.Create(&models.User{
		Name:         "Super Admin",
		Email:        "admin@portal.com",
		MatricNumber: "ADMIN",
		Password:     adminPw,
		Role:         models.RoleAdmin,
		IsVerified:   false,
	}))

	resp, err := svc.Login(&dto.LoginRequest{Email: "admin@portal.com", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestRequestPasswordReset(t *testing.T) {
	svc, users, notifier := newTestService()
	verifiedUser(t, svc, notifier)
	mailsBefore := len(notifier.Sent())

	t.Run("unknown email succeeds without side effects", func(t *testing.T) {
		err := svc.RequestPasswordReset(&dto.ForgotPasswordRequest{Email: "nobody@example.com"})
		require.NoError(t, err)
		assert.Len(t, notifier.Sent(), mailsBefore)
		assert.Equal(t, 1, users.Count())
	})

	t.Run("known email stores token and mails link", func(t *testing.T) {
		err := svc.RequestPasswordReset(&dto.ForgotPasswordRequest{Email: "ada@example.com"})
		require.NoError(t, err)

		user := users.Snapshot("ada@example.com")
		require.NotNil(t, user.ResetToken)
		assert.Len(t, *user.ResetToken, 64)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), *user.ResetTokenExpires, 5*time.Second)

		mail := notifier.Last()
		require.NotNil(t, mail)
		assert.Contains(t, mail.Body, "http://localhost:5173/reset-password/"+*user.ResetToken)
	})
}

func TestCompletePasswordReset(t *testing.T) {
	svc, users, notifier := newTestService()
	verifiedUser(t, svc, notifier)
	require.NoError(t, svc.RequestPasswordReset(&dto.ForgotPasswordRequest{Email: "ada@example.com"}))
	token := *users.Snapshot("ada@example.com").ResetToken

	t.Run("unknown token", func(t *testing.T) {
		err := svc.CompletePasswordReset("deadbeef", "NewPw456!")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("valid token replaces password once", func(t *testing.T) {
		require.NoError(t, svc.CompletePasswordReset(token, "NewPw456!"))

		user := users.Snapshot("ada@example.com")
		assert.Nil(t, user.ResetToken)
		assert.Nil(t, user.ResetTokenExpires)
		assert.True(t, auth.CheckSecret("NewPw456!", user.Password))
		assert.False(t, auth.CheckSecret("Pw123!", user.Password))

		// Old password no longer logs in, new one does.
		_, err := svc.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "Pw123!"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "NewPw456!"})
		require.NoError(t, err)

		// Tokens are single-use.
		err = svc.CompletePasswordReset(token, "Another789!")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestCompletePasswordResetExpired(t *testing.T) {
	svc, users, notifier := newTestService()
	verifiedUser(t, svc, notifier)
	require.NoError(t, svc.RequestPasswordReset(&dto.ForgotPasswordRequest{Email: "ada@example.com"}))

	user := users.Snapshot("ada@example.com")
	token := *user.ResetToken
	past := time.Now().Add(-time.Minute)
	user.ResetTokenExpires = &past
	require.NoError(t, users.Save(user))

	// Same error as an unknown token.
	err := svc.CompletePasswordReset(token, "NewPw456!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestNormalizeMatric(t *testing.T) {
	assert.Equal(t, "COS/21/01/0001", NormalizeMatric("cos/21/01/0001"))
	// Idempotent.
	assert.Equal(t, "COS/21/01/0001", NormalizeMatric(NormalizeMatric("Cos/21/01/0001")))
}
