package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/email"
	"legal-companion/internal/metrics"
	"legal-companion/internal/repository"
)

// OTPPolicy agrupa los limites del flujo de verificacion.
type OTPPolicy struct {
	TTL        time.Duration
	MaxPerHour int
	TicketTTL  time.Duration
}

func (p OTPPolicy) withDefaults() OTPPolicy {
	if p.TTL <= 0 {
		p.TTL = 10 * time.Minute
	}
	if p.MaxPerHour <= 0 {
		p.MaxPerHour = 5
	}
	if p.TicketTTL <= 0 {
		p.TicketTTL = 30 * time.Minute
	}
	return p
}

const rateWindow = time.Hour

// RegistrationService implementa el registro en dos pasos: OTP por email y
// alta de la cuenta con el ticket obtenido al verificar.
type RegistrationService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	otps    repository.OTPRepository
	sender  email.Sender
	tickets TicketStore
	policy  OTPPolicy
	now     func() time.Time
}

func NewRegistrationService(
	logger *zap.Logger,
	users repository.UserRepository,
	otps repository.OTPRepository,
	sender email.Sender,
	tickets TicketStore,
	policy OTPPolicy,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tickets == nil {
		tickets = NewMemoryTicketStore()
	}
	return &RegistrationService{
		logger:  logger,
		users:   users,
		otps:    otps,
		sender:  sender,
		tickets: tickets,
		policy:  policy.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OTPIssued describe un codigo recien emitido. Code solo viene cargado
// cuando el codigo no se pudo entregar por email.
type OTPIssued struct {
	Email     string
	ExpiresAt time.Time
	TTL       time.Duration
	Delivered bool
	Code      string
}

// VerifiedEmail es el resultado de un VerifyOTP exitoso.
type VerifiedEmail struct {
	Email     string
	Ticket    string
	ExpiresAt time.Time
	TTL       time.Duration
}

type RegisterInput struct {
	Username           string
	Email              string
	Password           string
	VerificationTicket string
}

type EmailAvailability struct {
	Available bool
	Message   string
}

// RequestOTP emite un codigo nuevo e intenta enviarlo. Un fallo de envio no
// es fatal: el codigo se devuelve al llamador.
func (s *RegistrationService) RequestOTP(ctx context.Context, emailAddr string) (OTPIssued, error) {
	if s.users == nil || s.otps == nil {
		return OTPIssued{}, ErrServiceUnavailable
	}
	emailAddr = normalizeEmail(emailAddr)
	now := s.now()

	recent, err := s.otps.CountCreatedSince(ctx, emailAddr, now.Add(-rateWindow))
	if err != nil {
		return OTPIssued{}, err
	}
	if recent >= int64(s.policy.MaxPerHour) {
		return OTPIssued{}, ErrRateLimited
	}
	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		return OTPIssued{}, err
	}

	s.sweep(ctx, now)
	record, err := s.issue(ctx, emailAddr, now)
	if err != nil {
		return OTPIssued{}, err
	}

	issued := OTPIssued{Email: emailAddr, ExpiresAt: record.ExpiresAt, TTL: s.policy.TTL}
	if s.deliver(ctx, record) {
		issued.Delivered = true
		metrics.OTPIssuedTotal.WithLabelValues("email").Inc()
		s.logger.Info("otp email sent", zap.String("email", emailAddr))
		return issued, nil
	}
	issued.Code = record.Code
	metrics.OTPIssuedTotal.WithLabelValues("fallback").Inc()
	s.logger.Warn("otp email failed, returning code in response", zap.String("email", emailAddr))
	return issued, nil
}

// ResendOTP reemplaza los codigos sin usar por uno nuevo. No envia email ni
// consulta el limite por hora; el codigo siempre se devuelve.
func (s *RegistrationService) ResendOTP(ctx context.Context, emailAddr string) (OTPIssued, error) {
	if s.users == nil || s.otps == nil {
		return OTPIssued{}, ErrServiceUnavailable
	}
	emailAddr = normalizeEmail(emailAddr)
	now := s.now()

	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		return OTPIssued{}, err
	}
	s.sweep(ctx, now)
	if _, err := s.otps.DeleteUnused(ctx, emailAddr); err != nil {
		return OTPIssued{}, err
	}
	record, err := s.issue(ctx, emailAddr, now)
	if err != nil {
		return OTPIssued{}, err
	}
	metrics.OTPIssuedTotal.WithLabelValues("resend").Inc()
	s.logger.Info("otp resent", zap.String("email", emailAddr))
	return OTPIssued{
		Email:     emailAddr,
		ExpiresAt: record.ExpiresAt,
		TTL:       s.policy.TTL,
		Code:      record.Code,
	}, nil
}

// VerifyOTP consume el codigo y emite un ticket ligado al email y al registro.
func (s *RegistrationService) VerifyOTP(ctx context.Context, emailAddr, code string) (VerifiedEmail, error) {
	if s.otps == nil {
		return VerifiedEmail{}, ErrServiceUnavailable
	}
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	now := s.now()

	record, err := s.otps.FindUnused(ctx, emailAddr, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return VerifiedEmail{}, ErrOTPInvalid
		}
		return VerifiedEmail{}, err
	}
	if record.ExpiredAt(now) {
		return VerifiedEmail{}, ErrOTPExpired
	}
	token, err := generateTicketToken()
	if err != nil {
		return VerifiedEmail{}, err
	}
	ticket := domain.VerificationTicket{
		Token:     token,
		Email:     emailAddr,
		OTPID:     record.ID,
		ExpiresAt: now.Add(s.policy.TicketTTL),
	}
	// El ticket se guarda antes de consumir el codigo: si el store falla el
	// codigo sigue valido para reintentar.
	if err := s.tickets.Store(ctx, ticket); err != nil {
		return VerifiedEmail{}, err
	}
	if err := s.otps.MarkUsed(ctx, record.ID); err != nil {
		s.revokeTicket(ctx, token)
		if errors.Is(err, repository.ErrNotFound) {
			// Otro request consumio el codigo primero.
			return VerifiedEmail{}, ErrOTPInvalid
		}
		return VerifiedEmail{}, err
	}

	return VerifiedEmail{
		Email:     emailAddr,
		Ticket:    token,
		ExpiresAt: ticket.ExpiresAt,
		TTL:       s.policy.TicketTTL,
	}, nil
}

// CompleteRegistration crea la cuenta verificada. El ticket y el registro OTP
// se limpian despues del alta sin revertirla si fallan.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, in RegisterInput) (domain.User, error) {
	if s.users == nil || s.otps == nil {
		return domain.User{}, ErrServiceUnavailable
	}
	username := strings.TrimSpace(in.Username)
	emailAddr := normalizeEmail(in.Email)

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}
	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		return domain.User{}, err
	}

	ticket, err := s.tickets.Lookup(ctx, strings.TrimSpace(in.VerificationTicket))
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return domain.User{}, ErrEmailNotVerified
		}
		return domain.User{}, err
	}
	if ticket.Email != emailAddr {
		return domain.User{}, ErrEmailNotVerified
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		IsVerified:   true,
		IsAdmin:      false,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}

	s.revokeTicket(ctx, ticket.Token)
	if err := s.otps.Delete(ctx, ticket.OTPID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("delete used otp failed", zap.Error(err), zap.String("otp_id", ticket.OTPID))
	}
	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("email", user.Email))
	return user, nil
}

func (s *RegistrationService) revokeTicket(ctx context.Context, token string) {
	if err := s.tickets.Revoke(ctx, token); err != nil {
		s.logger.Warn("revoke verification ticket failed", zap.Error(err))
	}
}

// CheckEmail reporta si el email puede iniciar un registro.
func (s *RegistrationService) CheckEmail(ctx context.Context, emailAddr string) (EmailAvailability, error) {
	if s.users == nil || s.otps == nil {
		return EmailAvailability{}, ErrServiceUnavailable
	}
	emailAddr = normalizeEmail(emailAddr)
	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return EmailAvailability{Available: false, Message: "Email already registered"}, nil
		}
		return EmailAvailability{}, err
	}
	pending, err := s.otps.HasPending(ctx, emailAddr, s.now())
	if err != nil {
		return EmailAvailability{}, err
	}
	if pending {
		return EmailAvailability{Available: false, Message: "Email verification in progress"}, nil
	}
	return EmailAvailability{Available: true, Message: "Email available for registration"}, nil
}

// SweepExpired borra todos los OTP vencidos, usados o no.
func (s *RegistrationService) SweepExpired(ctx context.Context) (int64, error) {
	if s.otps == nil {
		return 0, ErrServiceUnavailable
	}
	n, err := s.otps.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired otps removed", zap.Int64("count", n))
	}
	return n, nil
}

func (s *RegistrationService) sweep(ctx context.Context, now time.Time) {
	n, err := s.otps.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Warn("otp sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired otps removed", zap.Int64("count", n))
	}
}

func (s *RegistrationService) ensureEmailFree(ctx context.Context, emailAddr string) error {
	_, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return ErrEmailTaken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *RegistrationService) issue(ctx context.Context, emailAddr string, now time.Time) (domain.OTP, error) {
	code, err := generateOTPCode()
	if err != nil {
		return domain.OTP{}, err
	}
	return s.otps.Create(ctx, domain.OTP{
		Email:     emailAddr,
		Code:      code,
		IsUsed:    false,
		ExpiresAt: now.Add(s.policy.TTL),
		CreatedAt: now,
	})
}

func (s *RegistrationService) deliver(ctx context.Context, record domain.OTP) bool {
	if s.sender == nil {
		metrics.EmailFailuresTotal.Inc()
		return false
	}
	if err := s.sender.SendVerificationOTP(ctx, record.Email, record.Code, record.ExpiresAt); err != nil {
		metrics.EmailFailuresTotal.Inc()
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", record.Email))
		return false
	}
	return true
}
