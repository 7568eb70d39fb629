package identity

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"fuel-express-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// OTPValidity is how long a verification code stays usable.
const OTPValidity = 10 * time.Minute

const tokenValidity = 72 * time.Hour

// Notifier delivers best-effort account mail (OTP codes). Failures are
// logged, never surfaced to the registration transaction.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceInterface defines the contract for the identity service.
type ServiceInterface interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Verify(ctx context.Context, req models.VerifyRequest) error
	ResendOTP(ctx context.Context, req models.ResendOTPRequest) error
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// Service implements registration, verification and login.
type Service struct {
	repo      RepositoryInterface
	notifier  Notifier
	jwtSecret []byte
	now       func() time.Time
}

// NewService creates a new identity service.
func NewService(repo RepositoryInterface, notifier Notifier, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// Register creates an unverified account and mails the verification code.
// The mail is fire-and-forget: a transport failure never undoes the account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok || role == models.RoleAdmin {
		return nil, models.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Register: %w", err)
	}

	otp := generateOTP()
	expiry := s.now().Add(OTPValidity)
	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   false,
		OTPCode:      &otp,
		OTPExpiry:    &expiry,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service.Register: %w", err)
	}

	s.sendOTPMail(*created, otp)

	return created, nil
}

// sendOTPMail delivers the verification code asynchronously. A transport
// failure is logged; the account itself is untouched.
func (s *Service) sendOTPMail(u models.User, code string) {
	if s.notifier == nil {
		return
	}
	go func() {
		body := fmt.Sprintf(
			"Hello %s,\n\nYour OTP is: %s\nIt expires in 10 minutes.\n\nThank you,\nFuelExpress Team",
			u.Username, code,
		)
		if err := s.notifier.Send(context.Background(), u.Email, "Verify Your Account - FuelExpress", body); err != nil {
			log.Printf("identity: send OTP to %s: %v", u.Email, err)
		}
	}()
}

// Verify checks the OTP and marks the account verified.
func (s *Service) Verify(ctx context.Context, req models.VerifyRequest) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return fmt.Errorf("service.Verify: %w", err)
	}
	if user.IsVerified {
		return nil
	}
	if user.OTPCode == nil || user.OTPExpiry == nil {
		return models.ErrInvalidToken
	}
	if *user.OTPCode != req.OTP || s.now().After(*user.OTPExpiry) {
		return models.ErrInvalidToken
	}
	return s.repo.MarkVerified(ctx, user.ID)
}

// ResendOTP issues a fresh verification code for an unverified account,
// replacing any previous one.
func (s *Service) ResendOTP(ctx context.Context, req models.ResendOTPRequest) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return fmt.Errorf("service.ResendOTP: %w", err)
	}
	if user.IsVerified {
		return models.ErrConflict
	}

	otp := generateOTP()
	if err := s.repo.SetOTP(ctx, user.ID, otp, s.now().Add(OTPValidity)); err != nil {
		return fmt.Errorf("service.ResendOTP: %w", err)
	}

	s.sendOTPMail(*user, otp)

	return nil
}

// Login checks credentials and issues a signed token carrying the user's
// role.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, models.ErrAccountNotVerified
	}
	if !user.IsActive {
		return nil, models.ErrForbidden
	}

	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(tokenValidity)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("service.Login: %w", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Profile returns the account behind an authenticated session.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func generateOTP() string {
	return fmt.Sprintf("%06d", rand.IntN(1000000))
}
