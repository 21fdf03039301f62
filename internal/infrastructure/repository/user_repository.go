// Package repository maps domain aggregates onto rows of a ports.DataStore.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

// UserRepository stores accounts in the users table of a DataStore.
type UserRepository struct {
	store ports.DataStore
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(store ports.DataStore) *UserRepository {
	return &UserRepository{store: store}
}

// userRow is the stored shape of a user. The hash lives in "password" and is
// never serialised back to clients.
type userRow struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (r userRow) toDomain() *domain.User {
	role, ok := domain.ParseRole(r.Role)
	if !ok {
		role = domain.RoleCustomer
	}
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.Password,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Role:         role,
		IsActive:     r.IsActive,
		LastLoginAt:  r.LastLoginAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func decodeUser(rec ports.Record) (*domain.User, error) {
	var row userRow
	if err := ports.DecodeRecord(rec, &row); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	res, err := r.store.FindMany(ctx, domain.TableUsers, ports.QueryOptions{
		Where: map[string]any{"email": normalizeEmail(email)},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(res.Records) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return decodeUser(res.Records[0])
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	rec, err := r.store.FindUnique(ctx, domain.TableUsers, id, ports.QueryOptions{})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return decodeUser(rec)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := ports.Record{
		"email":     normalizeEmail(user.Email),
		"password":  user.PasswordHash,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      string(user.Role),
		"isActive":  user.IsActive,
	}
	if user.ID != "" {
		rec["id"] = user.ID
	}
	if user.Phone != "" {
		rec["phone"] = user.Phone
	}

	created, err := r.store.Create(ctx, domain.TableUsers, rec)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return decodeUser(created)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.store.Update(ctx, domain.TableUsers, id, ports.Record{"password": passwordHash})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.store.Update(ctx, domain.TableUsers, id, ports.Record{"lastLoginAt": at.UTC()})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
