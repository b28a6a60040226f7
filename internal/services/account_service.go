package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/damilareoj/student-portal-backend/internal/auth"
	"github.com/damilareoj/student-portal-backend/internal/config"
	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/mailer"
	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/damilareoj/student-portal-backend/internal/store"
)

var (
	ErrFieldsRequired = errors.New("all fields are required")
	ErrInvalidMatric  = errors.New("invalid matric number")
	ErrEmailTaken     = errors.New("email already registered")
	ErrMatricTaken    = errors.New("matric number already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrNoPendingOTP   = errors.New("no OTP pending verification")
	ErrOTPExpired     = errors.New("OTP expired")
	ErrInvalidOTP     = errors.New("invalid OTP")
	// ErrInvalidCredentials covers both unknown user and wrong password so
	// responses never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	// ErrInvalidResetToken covers both unknown and expired tokens.
	ErrInvalidResetToken = errors.New("invalid or expired token")
)

// Response message constants shared with the frontend.
const (
	MsgOTPSent         = "OTP_SENT"
	MsgOTPResent       = "OTP_RESENT"
	MsgAccountVerified = "ACCOUNT_VERIFIED"
	MsgLoginSuccess    = "LOGIN_SUCCESS"
	MsgResetLinkSent   = "RESET_LINK_SENT"
	MsgPasswordReset   = "PASSWORD_RESET_SUCCESS"
)

var matricRegex = regexp.MustCompile(`^(FOS|COS|FNG|FOL|FOE|FOA|PHC|BMS)/\d{2}/\d{2}/\d{4,6}$`)

// AccountService orchestrates the identity and credential lifecycle:
// signup with OTP email verification, login, and password reset.
type AccountService struct {
	users    store.UserStore
	notifier mailer.Notifier
	cfg      *config.Config
}

func NewAccountService(users store.UserStore, notifier mailer.Notifier, cfg *config.Config) *AccountService {
	return &AccountService{users: users, notifier: notifier, cfg: cfg}
}

// NormalizeMatric uppercases a matric number; matric comparison and storage
// are always in this form.
func NormalizeMatric(matric string) string {
	return strings.ToUpper(matric)
}

// Signup registers a new student or re-issues the OTP for an existing
// unverified account. It returns true when a new account was created. The
// user record is persisted before the mail goes out, so a failed send can
// be retried by signing up again.
func (s *AccountService) Signup(req *dto.SignupRequest) (bool, error) {
	if req.Name == "" || req.Email == "" || req.Matric == "" || req.Password == "" {
		return false, ErrFieldsRequired
	}

	matric := NormalizeMatric(req.Matric)
	if !matricRegex.MatchString(matric) {
		return false, ErrInvalidMatric
	}

	existing, err := s.users.ByEmail(req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		if existing.IsVerified {
			return false, ErrEmailTaken
		}
		if err := s.issueOTP(existing); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.users.ByMatric(matric); err == nil {
		return false, ErrMatricTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up matric: %w", err)
	}

	passwordHash, err := auth.HashSecret(req.Password)
	if err != nil {
		return false, err
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return false, err
	}
	otpHash, err := auth.HashSecret(otp)
	if err != nil {
		return false, err
	}

	expiry := time.Now().Add(s.cfg.OTPExpiry)
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		MatricNumber: matric,
		Password:     passwordHash,
		Role:         models.RoleStudent,
		OTPHash:      &otpHash,
		OTPExpiresAt: &expiry,
	}

	if err := s.users.Create(&user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent signup won the insert; report whichever unique
			// field it claimed.
			if _, merr := s.users.ByMatric(matric); merr == nil {
				return false, ErrMatricTaken
			}
			return false, ErrEmailTaken
		}
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendOTPMail(user.Email, otp); err != nil {
		return false, err
	}
	return true, nil
}

// issueOTP replaces the pending code on an unverified account and mails it.
func (s *AccountService) issueOTP(user *models.User) error {
	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	otpHash, err := auth.HashSecret(otp)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.cfg.OTPExpiry)
	user.OTPHash = &otpHash
	user.OTPExpiresAt = &expiry

	if err := s.users.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return s.sendOTPMail(user.Email, otp)
}

// VerifyOTP confirms email ownership. Verification is single-shot: success
// clears the pending code, so repeating the call fails.
func (s *AccountService) VerifyOTP(req *dto.VerifyOTPRequest) error {
	if req.Email == "" || req.OTP == "" {
		return ErrFieldsRequired
	}

	user, err := s.users.ByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if !user.OTPPending() {
		return ErrNoPendingOTP
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if !auth.CheckSecret(req.OTP, *user.OTPHash) {
		return ErrInvalidOTP
	}

	user.IsVerified = true
	user.ClearOTP()

	if err := s.users.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Login authenticates by email or matric number. Email takes precedence
// when both are supplied; matric is only consulted when email is absent.
func (s *AccountService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Password == "" || (req.Email == "" && req.Matric == "") {
		return nil, ErrFieldsRequired
	}

	var (
		user *models.User
		err  error
	)
	if req.Email != "" {
		user, err = s.users.ByEmail(req.Email)
	} else {
		user, err = s.users.ByMatric(NormalizeMatric(req.Matric))
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Only students must verify their email; admins are seeded verified.
	if user.Role != models.RoleAdmin && !user.IsVerified {
		return nil, ErrNotVerified
	}

	if !auth.CheckSecret(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.JWTExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	var matric *string
	if user.MatricNumber != "" {
		m := user.MatricNumber
		matric = &m
	}

	return &dto.LoginResponse{
		Message: MsgLoginSuccess,
		Token:   token,
		User: dto.UserSummary{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Matric: matric,
			Role:   user.Role,
		},
	}, nil
}

// RequestPasswordReset issues a single-use reset token and mails the link.
// Unknown emails succeed with no side effects so responses never reveal
// whether an account exists.
func (s *AccountService) RequestPasswordReset(req *dto.ForgotPasswordRequest) error {
	user, err := s.users.ByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.cfg.ResetExpiry)
	user.ResetToken = &token
	user.ResetTokenExpires = &expiry

	if err := s.users.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	link := s.cfg.ResetURLBase + "/" + token
	body := "Click this link to reset your password:\n" + link
	return s.notifier.Send(user.Email, "Student Portal Password Reset", body)
}

// CompletePasswordReset consumes a reset token and replaces the password.
func (s *AccountService) CompletePasswordReset(token, password string) error {
	if token == "" || password == "" {
		return ErrFieldsRequired
	}

	user, err := s.users.ByResetToken(token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	passwordHash, err := auth.HashSecret(password)
	if err != nil {
		return err
	}

	user.Password = passwordHash
	user.ClearResetToken()

	if err := s.users.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *AccountService) sendOTPMail(to, otp string) error {
	body := "Your OTP code is: " + otp
	return s.notifier.Send(to, "Student Portal Verification Code", body)
}
