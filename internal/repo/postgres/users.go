package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// prom may be nil (tests); lookups by key are left unobserved on purpose,
// the interesting latencies are the multi-statement ops.
func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	SchoolID     string
	RoleID       *string // optional role link, created in the same tx
}

type UpdateUserParams struct {
	Name     *string
	Phone    *string
	SchoolID *string
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, where string, arg any) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, name, phone, school_id, created_at, updated_at
         FROM users
         WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.SchoolID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	u.Roles, err = r.rolesFor(ctx, u.ID)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) rolesFor(ctx context.Context, userID string) ([]user.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, userID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	roles := make([]user.Role, 0, 2)

	for rows.Next() {
		var role user.Role

		err = rows.Scan(&role.ID, &role.Name)

		if err != nil {
			return nil, err
		}

		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var users []user.User

	err := r.observe("users.list", func() error {
		var err error
		users, err = r.list(ctx)
		return err
	})

	return users, err
}

func (r *UsersRepo) list(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, password_hash, name, phone, school_id, created_at, updated_at
		FROM users
		ORDER BY created_at ASC, id ASC
	`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users := make([]user.User, 0)
	index := make(map[string]int)

	for rows.Next() {
		var u user.User

		err = rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.SchoolID, &u.CreatedAt, &u.UpdatedAt)

		if err != nil {
			return nil, err
		}

		u.Roles = make([]user.Role, 0, 2)
		index[u.ID] = len(users)
		users = append(users, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	// one pass over the join table instead of a query per user
	roleRows, err := r.pool.Query(ctx, `
		SELECT ur.user_id, r.id, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		ORDER BY r.name
	`)

	if err != nil {
		return nil, err
	}

	defer roleRows.Close()

	for roleRows.Next() {
		var userID string
		var role user.Role

		err = roleRows.Scan(&userID, &role.ID, &role.Name)

		if err != nil {
			return nil, err
		}

		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}

	return users, roleRows.Err()
}

// Create inserts the user and its optional role link in a single tx, so a
// user never persists without its initial role. The unique index on email is
// the final arbiter under concurrent creates; a 23505 from the insert maps to
// the same conflict the pre-check would have raised.
func (r *UsersRepo) Create(ctx context.Context, params CreateUserParams) (user.User, error) {
	var created user.User

	err := r.observe("users.create", func() error {
		var err error
		created, err = r.create(ctx, params)
		return err
	})

	return created, err
}

func (r *UsersRepo) create(ctx context.Context, params CreateUserParams) (user.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return user.User{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, phone, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		`,
		params.ID, params.Email, params.PasswordHash, params.Name, params.Phone, params.SchoolID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	if params.RoleID != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
			params.ID, *params.RoleID,
		)

		if err != nil {
			return user.User{}, err
		}
	}

	err = tx.Commit(ctx)

	if err != nil {
		return user.User{}, err
	}

	return r.GetByID(ctx, params.ID)
}

func (r *UsersRepo) Update(ctx context.Context, id string, params UpdateUserParams) (user.User, error) {
	var tag pgconn.CommandTag

	err := r.observe("users.update", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET name = COALESCE($2, name),
			    phone = COALESCE($3, phone),
			    school_id = COALESCE($4, school_id),
			    updated_at = NOW()
			WHERE id = $1
		`, id, params.Name, params.Phone, params.SchoolID)
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	if tag.RowsAffected() == 0 {
		return user.User{}, ErrUserNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
