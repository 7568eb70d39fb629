package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fuel-express-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type fakeUserRepo struct {
	nextID  int
	byID    map[string]*models.User
	byEmail map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (f *fakeUserRepo) Insert(_ context.Context, u *models.User) (*models.User, error) {
	if _, taken := f.byEmail[u.Email]; taken {
		return nil, models.ErrConflict
	}
	f.nextID++
	stored := *u
	stored.ID = fmt.Sprintf("user-%d", f.nextID)
	stored.IsActive = true
	f.byID[stored.ID] = &stored
	f.byEmail[stored.Email] = stored.ID
	out := stored
	return &out, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *f.byID[id]
	return &out, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, userID string) error {
	u, ok := f.byID[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsVerified = true
	u.OTPCode = nil
	u.OTPExpiry = nil
	return nil
}

func (f *fakeUserRepo) SetOTP(_ context.Context, userID, code string, expiry time.Time) error {
	u, ok := f.byID[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.OTPCode = &code
	u.OTPExpiry = &expiry
	return nil
}

const testSecret = "test-secret"

func newTestIdentity(repo *fakeUserRepo) *Service {
	svc := NewService(repo, nil, testSecret)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username: "asha",
		Email:    "Asha@Example.com",
		Phone:    "9876543210",
		Password: "s3cret-pass",
		Role:     "customer",
	}
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentity(repo)

	user, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "asha@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.IsVerified {
		t.Error("new account already verified")
	}
	if user.PasswordHash == "s3cret-pass" || user.PasswordHash == "" {
		t.Error("password stored unhashed")
	}
	if user.OTPCode == nil || len(*user.OTPCode) != 6 {
		t.Errorf("otp = %v, want 6 digits", user.OTPCode)
	}
	if user.OTPExpiry == nil || !user.OTPExpiry.Equal(svc.now().Add(OTPValidity)) {
		t.Errorf("otp expiry = %v", user.OTPExpiry)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newTestIdentity(newFakeUserRepo())

	req := validRegisterRequest()
	req.Role = "admin"
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Register admin = %v, want ErrValidation", err)
	}

	req.Role = "superuser"
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Register unknown role = %v, want ErrValidation", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestIdentity(newFakeUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, validRegisterRequest()); !errors.Is(err, models.ErrConflict) {
		t.Errorf("second Register = %v, want ErrConflict", err)
	}
}

func TestVerify(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentity(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	otp := *user.OTPCode

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == otp {
			wrong = "000001"
		}
		err := svc.Verify(ctx, models.VerifyRequest{Email: user.Email, OTP: wrong})
		if !errors.Is(err, models.ErrInvalidToken) {
			t.Errorf("Verify = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		svc.now = func() time.Time {
			return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC).Add(OTPValidity + time.Minute)
		}
		defer func() {
			svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
		}()
		err := svc.Verify(ctx, models.VerifyRequest{Email: user.Email, OTP: otp})
		if !errors.Is(err, models.ErrInvalidToken) {
			t.Errorf("Verify expired = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("correct code", func(t *testing.T) {
		if err := svc.Verify(ctx, models.VerifyRequest{Email: user.Email, OTP: otp}); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		stored, _ := repo.FindByEmail(ctx, user.Email)
		if !stored.IsVerified || stored.OTPCode != nil {
			t.Errorf("user after verify = %+v", stored)
		}
	})

	t.Run("verify again is a no-op", func(t *testing.T) {
		if err := svc.Verify(ctx, models.VerifyRequest{Email: user.Email, OTP: "999999"}); err != nil {
			t.Errorf("repeat Verify = %v, want nil", err)
		}
	})
}

func TestResendOTP(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentity(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ResendOTP(ctx, models.ResendOTPRequest{Email: user.Email}); err != nil {
		t.Fatalf("ResendOTP: %v", err)
	}

	stored, _ := repo.FindByEmail(ctx, user.Email)
	if stored.OTPCode == nil {
		t.Fatal("no OTP after resend")
	}
	if err := svc.Verify(ctx, models.VerifyRequest{Email: user.Email, OTP: *stored.OTPCode}); err != nil {
		t.Fatalf("Verify with resent OTP: %v", err)
	}

	if err := svc.ResendOTP(ctx, models.ResendOTPRequest{Email: user.Email}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("ResendOTP for verified account = %v, want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentity(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	login := models.LoginRequest{Email: "asha@example.com", Password: "s3cret-pass"}

	t.Run("unverified account", func(t *testing.T) {
		_, err := svc.Login(ctx, login)
		if !errors.Is(err, models.ErrAccountNotVerified) {
			t.Errorf("Login = %v, want ErrAccountNotVerified", err)
		}
	})

	if err := repo.MarkVerified(ctx, user.ID); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{Email: login.Email, Password: "wrong-pass"})
		if !errors.Is(err, models.ErrInvalidCredentials) {
			t.Errorf("Login = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email does not leak existence", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		if !errors.Is(err, models.ErrInvalidCredentials) {
			t.Errorf("Login = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("success issues a signed token", func(t *testing.T) {
		auth, err := svc.Login(ctx, login)
		if err != nil {
			t.Fatalf("Login: %v", err)
		}

		parsed, err := jwt.ParseWithClaims(auth.Token, &Claims{}, func(*jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		}, jwt.WithTimeFunc(svc.now))
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		claims := parsed.Claims.(*Claims)
		if claims.UserID != user.ID || claims.Role != "customer" {
			t.Errorf("claims = %+v", claims)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		repo.byID[user.ID].IsActive = false
		defer func() { repo.byID[user.ID].IsActive = true }()
		_, err := svc.Login(ctx, login)
		if !errors.Is(err, models.ErrForbidden) {
			t.Errorf("Login disabled = %v, want ErrForbidden", err)
		}
	})
}
