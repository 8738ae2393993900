package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned by user CRUD operations for unknown ids. It is
// distinct from the auth package errors — directory management responses may
// say "not found", login responses may not.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when a create or update collides with an existing
// email. Handlers match it explicitly; every other failure stays a generic
// server fault.
var ErrEmailTaken = errors.New("email already registered")

// UserService is the user directory: CRUD, status changes, and bulk import.
type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkImport(ctx context.Context, csvData []byte) (*dto.BulkImportResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.Hasher
}

func NewUserService(repo repository.UserRepository, hasher *auth.Hasher) UserService {
	return &userService{repo: repo, hasher: hasher}
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.StatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error) {
	var users []model.User
	var err error
	if includeInactive {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.repo.ChangeStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// BulkImport parses "name,email,role,password" rows (header optional) and
// inserts all valid rows in one transaction. Invalid rows are reported with
// the line number they occupy in the uploaded file (header included), so the
// operator can jump straight to the offending row. A duplicate email inside
// the store or the file rejects that row, not the whole import.
func (s *userService) BulkImport(ctx context.Context, csvData []byte) (*dto.BulkImportResponse, error) {
	reader := csv.NewReader(bytes.NewReader(csvData))
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	result := &dto.BulkImportResponse{}
	seen := make(map[string]bool)
	var users []model.User

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.BulkImportErr{Line: line, Reason: "malformed row"})
			continue
		}
		if line == 1 && strings.EqualFold(record[0], "name") {
			continue // header row — counted, never imported
		}

		name, email, role, password := record[0], record[1], record[2], record[3]
		if reason := validateImportRow(name, email, role, password); reason != "" {
			result.Skipped++
			result.Errors = append(result.Errors, dto.BulkImportErr{Line: line, Reason: reason})
			continue
		}
		if seen[email] {
			result.Skipped++
			result.Errors = append(result.Errors, dto.BulkImportErr{Line: line, Reason: "duplicate email in file"})
			continue
		}
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.BulkImportErr{Line: line, Reason: "email already registered"})
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		seen[email] = true

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		users = append(users, model.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Status:       model.StatusActive,
		})
	}

	if len(users) > 0 {
		if err := s.repo.BulkCreate(ctx, users); err != nil {
			return nil, fmt.Errorf("bulk import: %w", err)
		}
	}
	result.Imported = len(users)
	return result, nil
}

func validateImportRow(name, email, role, password string) string {
	switch {
	case name == "":
		return "missing name"
	case email == "" || !strings.Contains(email, "@"):
		return "invalid email"
	case role != model.RoleAdmin && role != model.RoleManager && role != model.RoleTeller:
		return "unknown role"
	case len(password) < 8:
		return "password too short"
	}
	return ""
}
