package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/metrics"
	"github.com/credverse/credential-portal/shared/logging"
)

// SessionDisconnector is the slice of the chain session the identity layer
// needs: logout tears the wallet session down alongside the identity.
type SessionDisconnector interface {
	Disconnect()
}

// IdentityService keeps the persisted identity record consistent with the
// observed wallet state and serves the account operations. All writes go
// through the store as full-record overwrites.
type IdentityService struct {
	store    domain.IdentityStore
	notifier domain.Notifier
	logger   *logging.Logger

	session SessionDisconnector
}

// NewIdentityService creates the identity service.
func NewIdentityService(store domain.IdentityStore, notifier domain.Notifier, logger *logging.Logger) *IdentityService {
	return &IdentityService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// AttachSession registers the chain session for logout teardown. Set once
// during wiring.
func (s *IdentityService) AttachSession(session SessionDisconnector) {
	s.session = session
}

// Current returns the active identity or domain.ErrIdentityNotFound.
func (s *IdentityService) Current(ctx context.Context) (*domain.UserIdentity, error) {
	return s.store.Get(ctx)
}

// Register creates a fresh identity from a sign-up payload and makes it
// the active one, overwriting whatever was stored before.
func (s *IdentityService) Register(ctx context.Context, registration domain.Registration) (*domain.UserIdentity, error) {
	now := time.Now()

	var identity *domain.UserIdentity
	switch r := registration.(type) {
	case domain.EmailRegistration:
		if r.Email == "" || r.Password == "" {
			return nil, fmt.Errorf("email and password are required")
		}
		if !domain.ValidAccountType(r.AccountType) {
			return nil, domain.ErrInvalidAccountType
		}
		identity = &domain.UserIdentity{
			ID:          uuid.New().String(),
			Name:        r.Name,
			Email:       strings.ToLower(r.Email),
			AccountType: r.AccountType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	case domain.WalletRegistration:
		if r.WalletAddress == "" {
			return nil, fmt.Errorf("%w: wallet address required", domain.ErrConnection)
		}
		if !domain.ValidAccountType(r.AccountType) {
			return nil, domain.ErrInvalidAccountType
		}
		address := strings.ToLower(r.WalletAddress)
		identity = &domain.UserIdentity{
			ID:            "wallet-" + address,
			Name:          r.Name,
			AccountType:   r.AccountType,
			WalletAddress: address,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	default:
		return nil, fmt.Errorf("unsupported registration payload %T", registration)
	}

	if err := s.store.Put(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityOperations.WithLabelValues("register").Inc()
	if err := s.notifier.IdentityCreated(ctx, identity); err != nil {
		s.logger.WithError(err).Warn("failed to publish identity creation")
	}
	s.logger.WithField("identity_id", identity.ID).Info("identity registered")
	return identity, nil
}

// Login establishes an identity from portal credentials. There is no
// credential backend yet, so the identity is synthesized from the email
// alone; the password is only checked for presence.
//
// TODO: replace with a real credential check once the account backend
// service exposes one.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.UserIdentity, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	email = strings.ToLower(email)
	now := time.Now()
	// Stable across repeated logins so the slot keeps one identity per email.
	identity := &domain.UserIdentity{
		ID:          "email-" + email,
		Name:        nameFromEmail(email),
		Email:       email,
		AccountType: s.AccountTypeForEmail(email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Put(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityOperations.WithLabelValues("login").Inc()
	if err := s.notifier.IdentityCreated(ctx, identity); err != nil {
		s.logger.WithError(err).Warn("failed to publish identity creation")
	}
	s.logger.WithField("identity_id", identity.ID).Info("identity logged in")
	return identity, nil
}

// AccountTypeForEmail classifies an email into an account kind. Emails
// containing "institution" become institution accounts, everything else a
// student.
func (s *IdentityService) AccountTypeForEmail(email string) domain.AccountType {
	if strings.Contains(strings.ToLower(email), "institution") {
		return domain.AccountTypeInstitution
	}
	return domain.AccountTypeStudent
}

// Logout clears the stored identity. The wallet session is torn down only
// when the identity carried a linked wallet; an email-only identity leaves
// an independently connected wallet alone. Clearing an already-empty slot
// is a no-op success.
func (s *IdentityService) Logout(ctx context.Context) error {
	identity, err := s.store.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return err
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	if s.session != nil && identity != nil && identity.WalletAddress != "" {
		s.session.Disconnect()
	}

	metrics.IdentityOperations.WithLabelValues("logout").Inc()
	if identity != nil {
		if err := s.notifier.IdentityCleared(ctx, identity.ID); err != nil {
			s.logger.WithError(err).Warn("failed to publish identity clear")
		}
	}
	s.logger.Info("identity logged out")
	return nil
}

// Link attaches a wallet address to the active identity, overwriting any
// previously linked address. The link is an identity-level fact; it does
// not require the session to currently hold that address.
func (s *IdentityService) Link(ctx context.Context, address domain.Address) (*domain.UserIdentity, error) {
	identity, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}

	identity.WalletAddress = strings.ToLower(address)
	identity.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityOperations.WithLabelValues("link").Inc()
	if err := s.notifier.IdentityLinked(ctx, identity); err != nil {
		s.logger.WithError(err).Warn("failed to publish wallet link")
	}
	return identity, nil
}

// Unlink detaches the wallet address from the active identity. The wallet
// session is untouched; linking and connecting are independent facts.
func (s *IdentityService) Unlink(ctx context.Context) (*domain.UserIdentity, error) {
	identity, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}

	identity.WalletAddress = ""
	identity.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityOperations.WithLabelValues("unlink").Inc()
	if err := s.notifier.IdentityUnlinked(ctx, identity); err != nil {
		s.logger.WithError(err).Warn("failed to publish wallet unlink")
	}
	return identity, nil
}

// UpdateAccountType changes the account kind of the active identity.
func (s *IdentityService) UpdateAccountType(ctx context.Context, accountType domain.AccountType) (*domain.UserIdentity, error) {
	if !domain.ValidAccountType(accountType) {
		return nil, domain.ErrInvalidAccountType
	}

	identity, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}

	identity.AccountType = accountType
	identity.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityOperations.WithLabelValues("update_account_type").Inc()
	return identity, nil
}

// SyncWallet reconciles the stored identity with a freshly adopted wallet
// address. Three states are possible and each resolves by overwriting the
// slot with the complete reconciled record:
//
//   - no identity stored: synthesize a wallet-derived student identity
//   - identity without a wallet: link the address
//   - identity linked to a different wallet: overwrite with the new one
//
// A matching address is a no-op.
func (s *IdentityService) SyncWallet(ctx context.Context, address domain.Address) error {
	address = strings.ToLower(address)

	identity, err := s.store.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrIdentityNotFound):
		now := time.Now()
		identity = &domain.UserIdentity{
			ID:            "wallet-" + address,
			Name:          walletDisplayName(address),
			AccountType:   domain.AccountTypeStudent,
			WalletAddress: address,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.Put(ctx, identity); err != nil {
			return fmt.Errorf("persist identity: %w", err)
		}
		metrics.IdentityOperations.WithLabelValues("synthesize").Inc()
		if err := s.notifier.IdentityCreated(ctx, identity); err != nil {
			s.logger.WithError(err).Warn("failed to publish identity creation")
		}
		s.logger.WithField("identity_id", identity.ID).Info("synthesized identity from wallet")
		return nil

	case err != nil:
		return err

	case identity.WalletAddress == address:
		return nil

	default:
		identity.WalletAddress = address
		identity.UpdatedAt = time.Now()
		if err := s.store.Put(ctx, identity); err != nil {
			return fmt.Errorf("persist identity: %w", err)
		}
		metrics.IdentityOperations.WithLabelValues("link").Inc()
		if err := s.notifier.IdentityLinked(ctx, identity); err != nil {
			s.logger.WithError(err).Warn("failed to publish wallet link")
		}
		return nil
	}
}

// walletDisplayName derives a short display name from an address, keeping
// the 0x prefix and the first eight hex characters.
func walletDisplayName(address domain.Address) string {
	short := address
	if len(short) > 10 {
		short = short[:10]
	}
	return "Wallet " + short
}

func nameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
