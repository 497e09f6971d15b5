package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Account is a configured staff login sharing one bcrypt password hash.
type Account struct {
	Username     string
	Role         user.Role
	PasswordHash string
}

// DefaultPassword is used for staff accounts when no hash is configured.
const DefaultPassword = "1234"

// StaffAccounts builds the configured ADMIN and MANAGER logins. An empty hash
// falls back to a bcrypt hash of DefaultPassword.
func StaffAccounts(admins, managers []string, passwordHash string) ([]Account, error) {
	if passwordHash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash default password: %w", err)
		}
		passwordHash = string(hashed)
	} else if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	accounts := make([]Account, 0, len(admins)+len(managers))
	for _, name := range admins {
		accounts = append(accounts, Account{Username: name, Role: user.RoleAdmin, PasswordHash: passwordHash})
	}
	for _, name := range managers {
		accounts = append(accounts, Account{Username: name, Role: user.RoleManager, PasswordHash: passwordHash})
	}
	return accounts, nil
}

type AuthServiceImpl struct {
	jwtService         jwt.Service
	employeeRepository employee.EmployeeRepository
	accounts           []Account
}

func NewAuthService(jwtService jwt.Service, employeeRepository employee.EmployeeRepository, accounts []Account) auth.AuthService {
	return &AuthServiceImpl{
		jwtService:         jwtService,
		employeeRepository: employeeRepository,
		accounts:           accounts,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	principal, err := a.authenticate(ctx, req)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(principal)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("login", "username", principal.Username, "role", string(principal.Role))
	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		Username:             principal.Username,
		Role:                 string(principal.Role),
		EmployeeID:           principal.EmployeeID,
	}, nil
}

func (a *AuthServiceImpl) authenticate(ctx context.Context, req auth.LoginRequest) (user.Principal, error) {
	upperUser := strings.ToUpper(req.Username)
	for _, acc := range a.accounts {
		if strings.ToUpper(acc.Username) != upperUser {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
			return user.Principal{}, auth.ErrInvalidCredentials
		}
		return user.Principal{Username: upperUser, Role: acc.Role}, nil
	}

	employees, err := a.employeeRepository.List(ctx)
	if err != nil {
		return user.Principal{}, fmt.Errorf("failed to list employees: %w", err)
	}

	code := strings.ToUpper(strings.TrimSpace(req.Password))
	for _, emp := range employees {
		if emp.MatchesName(req.Username) && emp.ID == code {
			return user.Principal{Username: emp.Name, Role: user.RoleEmployee, EmployeeID: emp.ID}, nil
		}
	}
	return user.Principal{}, auth.ErrInvalidCredentials
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	a.jwtService.RevokeToken(token)
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	p, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, auth.ErrInvalidToken
	}
	return auth.MeResponse{Username: p.Username, Role: string(p.Role), EmployeeID: p.EmployeeID}, nil
}
