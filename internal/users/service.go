package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/angelmondragon/gudang-backend/pkg/config"
	pkgdb "github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"github.com/angelmondragon/gudang-backend/pkg/security"
	"gorm.io/gorm"
)

const tempPasswordLength = 12

// Service manages warehouse user accounts.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uint64) (*UserDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Update(ctx context.Context, actorID, id uint64, input UpdateInput) (*UserDTO, error)
}

type CreateInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     string
	JobType  string
}

// CreateResult carries the generated password when the caller supplied none.
// It is shown once and never stored in clear.
type CreateResult struct {
	User         *UserDTO `json:"user"`
	TempPassword string   `json:"tempPassword,omitempty"`
}

type ListInput struct {
	Search     string
	Role       string
	Pagination pagination.Params
}

// UpdateInput changes role, activation and job type. Nil fields are left alone.
type UpdateInput struct {
	Role     *string
	IsActive *bool
	JobType  *string
	FullName *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// sessionRevoker ends a user's live sessions so role and activation changes
// apply before the current access token expires.
type sessionRevoker interface {
	RevokeUser(ctx context.Context, userID uint64) error
}

type service struct {
	repo        *Repository
	tx          txRunner
	sessions    sessionRevoker
	passwordCfg config.PasswordConfig
}

// NewService builds the user service. sessions may be nil, in which case role
// changes take effect on the next token refresh.
func NewService(repo *Repository, tx txRunner, sessions sessionRevoker, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, sessions: sessions, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	if username == "" || email == "" || fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username, email and fullName are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}

	role := enums.UserRoleStaff
	if input.Role != "" {
		parsed, err := enums.ParseUserRole(strings.ToLower(strings.TrimSpace(input.Role)))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		role = parsed
	}

	password := input.Password
	var temp string
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password, temp = generated, generated
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		taken, err := repo.Taken(ctx, username, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user uniqueness")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "username or email already registered")
		}
		user, err := repo.Create(ctx, CreateUserDTO{
			Username:     username,
			Email:        email,
			FullName:     fullName,
			PasswordHash: hash,
			Role:         role,
			JobType:      strings.TrimSpace(input.JobType),
		})
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username or email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		created = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{User: created, TempPassword: temp}, nil
}

func (s *service) Get(ctx context.Context, id uint64) (*UserDTO, error) {
	user, err := findUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	q := listQuery{
		search: strings.TrimSpace(input.Search),
		limit:  pagination.LimitWithBuffer(input.Pagination.Limit),
	}
	if input.Role != "" {
		role, err := enums.ParseUserRole(strings.ToLower(input.Role))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
		q.role = role
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q.cursorID = cursor.ID
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	page, next := pagination.Trim(rows, input.Pagination.Limit, func(u models.User) uint64 { return u.ID })
	out := make([]UserDTO, 0, len(page))
	for i := range page {
		out = append(out, *FromModel(&page[i]))
	}
	return &ListResult{Items: out, Cursor: next}, nil
}

// Update applies role, activation and job type changes. The last active admin
// cannot be demoted or deactivated, and admins cannot lock themselves out.
func (s *service) Update(ctx context.Context, actorID, id uint64, input UpdateInput) (*UserDTO, error) {
	fields := map[string]any{}
	var newRole enums.UserRole
	if input.Role != nil {
		role, err := enums.ParseUserRole(strings.ToLower(strings.TrimSpace(*input.Role)))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		newRole = role
		fields["role"] = role
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if input.JobType != nil {
		fields["job_type"] = strings.TrimSpace(*input.JobType)
	}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName cannot be empty")
		}
		fields["full_name"] = name
	}

	var (
		updated   *UserDTO
		revokeAll bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := findUser(ctx, repo, id)
		if err != nil {
			return err
		}
		revokeAll = (newRole != "" && newRole != user.Role) || (input.IsActive != nil && !*input.IsActive && user.IsActive)

		losesAdmin := user.Role == enums.UserRoleAdmin && user.IsActive &&
			((newRole != "" && newRole != enums.UserRoleAdmin) || (input.IsActive != nil && !*input.IsActive))
		if losesAdmin {
			if actorID == id {
				return pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot demote or deactivate themselves")
			}
			others, err := repo.CountActiveAdmins(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
			}
			if others == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "at least one active admin is required")
			}
		}

		if len(fields) > 0 {
			if err := repo.Update(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
			}
		}
		reloaded, err := findUser(ctx, repo, id)
		if err != nil {
			return err
		}
		updated = FromModel(reloaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if revokeAll && s.sessions != nil {
		// the change is committed; a stale session still dies at refresh
		_ = s.sessions.RevokeUser(ctx, id)
	}
	return updated, nil
}

func findUser(ctx context.Context, repo *Repository, id uint64) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
