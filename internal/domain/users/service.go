package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plataforma-eventos/server/internal/audit"
	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/rs/zerolog"
)

var (
	ErrEmailTaken = errors.New("email is already registered")
	ErrNotFound   = errors.New("user not found")
	// ErrAlreadyApproved is returned when approving a user twice.
	ErrAlreadyApproved = errors.New("user is already approved")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval is returned when an unapproved account logs in.
	ErrPendingApproval = errors.New("account is pending approval")
)

type Service struct {
	store    *store.Store
	sessions *auth.SessionManager
	recorder *audit.Recorder
	logger   zerolog.Logger
}

func NewService(st *store.Store, sessions *auth.SessionManager, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		store:    st,
		sessions: sessions,
		recorder: recorder,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

type RegisterParams struct {
	Nombre   string
	Apellido string
	Email    string
	Celular  string
	Sector   string
	Password string
}

// Register creates a new collaborator account. Registrations always start
// unapproved with role colaborador regardless of what the caller sends.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*store.User, error) {
	existing, err := s.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(store.User{
		Nombre:   strings.TrimSpace(params.Nombre),
		Apellido: strings.TrimSpace(params.Apellido),
		Email:    strings.TrimSpace(params.Email),
		Celular:  strings.TrimSpace(params.Celular),
		Sector:   strings.TrimSpace(params.Sector),
		Rol:      string(auth.RoleColaborador),
		Password: hash,
		Aprobado: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.recorder.Record(user.Email, audit.ActionRegistrarUsuario, user.ID, map[string]string{
		"emailUsuario": user.Email,
	})

	scrubbed := scrub(*user)
	return &scrubbed, nil
}

// Login verifies credentials and issues a session token. The error for an
// unknown email and a wrong password is deliberately the same.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.SessionUser, string, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.Aprobado {
		return nil, "", ErrPendingApproval
	}

	token, err := s.sessions.Issue(*user)
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}

	return &auth.SessionUser{
		ID:       user.ID,
		Nombre:   user.Nombre,
		Apellido: user.Apellido,
		Email:    user.Email,
		Rol:      user.Rol,
		Aprobado: user.Aprobado,
	}, token, nil
}

// Approve flips a pending account to approved. One-way: there is no
// rejected or disabled state.
func (s *Service) Approve(ctx context.Context, id, approvedBy string) (*store.User, error) {
	users, err := s.store.Users()
	if err != nil {
		return nil, err
	}

	var target *store.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if target.Aprobado {
		return nil, ErrAlreadyApproved
	}

	approved := true
	updated, err := s.store.UpdateUser(id, store.UserPatch{Aprobado: &approved})
	if err != nil {
		return nil, fmt.Errorf("approve user: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.recorder.Record(approvedBy, audit.ActionAprobarUsuario, updated.ID, map[string]string{
		"emailUsuario": updated.Email,
	})

	scrubbed := scrub(*updated)
	return &scrubbed, nil
}

// List returns every account without password hashes.
func (s *Service) List(ctx context.Context) ([]store.User, error) {
	users, err := s.store.Users()
	if err != nil {
		return nil, err
	}
	out := make([]store.User, len(users))
	for i, u := range users {
		out[i] = scrub(u)
	}
	return out, nil
}

// ListApproved returns approved accounts only, for assignment pickers.
func (s *Service) ListApproved(ctx context.Context) ([]store.User, error) {
	users, err := s.store.Users()
	if err != nil {
		return nil, err
	}
	out := make([]store.User, 0, len(users))
	for _, u := range users {
		if u.Aprobado {
			out = append(out, scrub(u))
		}
	}
	return out, nil
}

// FindByEmail scans for a user by email, nil when absent. The returned
// record includes the password hash; callers outside this package should
// prefer List.
func (s *Service) FindByEmail(ctx context.Context, email string) (*store.User, error) {
	users, err := s.store.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, strings.TrimSpace(email)) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// EnsureAdmin creates an approved admin account if the email is not taken.
// Used by the serve command's bootstrap and by the seed command.
func (s *Service) EnsureAdmin(ctx context.Context, nombre, apellido, email, password string) error {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user, err := s.store.CreateUser(store.User{
		Nombre:   nombre,
		Apellido: apellido,
		Email:    email,
		Sector:   "Servicios",
		Rol:      string(auth.RoleAdmin),
		Password: hash,
		Aprobado: true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Msg("bootstrapped admin user")
	return nil
}

func scrub(u store.User) store.User {
	u.Password = ""
	return u
}
