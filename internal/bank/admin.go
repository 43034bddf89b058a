package bank

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

const adminFieldCount = 7

// Admin is a back-office principal identified by a unique username. The
// password is encrypted at rest; Permissions is the capability bitmask
// consulted by CheckAccess.
type Admin struct {
	Person
	Username    string
	Password    string
	Permissions Permission

	mode    Mode
	deleted bool
	repo    *AdminRepo
}

func (a *Admin) Key() string       { return a.Username }
func (a *Admin) Deleted() bool     { return a.deleted }
func (a *Admin) SetDeleted(d bool) { a.deleted = d }

func (a *Admin) IsEmpty() bool { return a.mode == ModeEmpty }
func (a *Admin) Mode() Mode    { return a.mode }

// CheckAccess reports whether this admin holds every capability in
// required. Callers consult it before each privileged operation.
func (a *Admin) CheckAccess(required Permission) bool {
	return a.Permissions.Grants(required)
}

// Save persists the admin according to its lifecycle mode: New records are
// appended after a key-collision check, Existing records overwrite their
// stored line, Empty sentinels are rejected.
func (a *Admin) Save(ctx context.Context) error {
	switch a.mode {
	case ModeNew:
		exists, err := a.repo.Exists(ctx, a.Username)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("admin %q: %w", a.Username, ErrKeyExists)
		}
		if err := a.repo.file.AppendOne(ctx, a); err != nil {
			return err
		}
		a.mode = ModeExisting
		return nil
	case ModeExisting:
		return a.repo.file.Update(ctx, a)
	default:
		return ErrEmptyObject
	}
}

// Delete tombstones the stored record and resets the receiver to the Empty
// sentinel.
func (a *Admin) Delete(ctx context.Context) error {
	if a.mode != ModeExisting {
		return ErrEmptyObject
	}
	if err := a.repo.file.Delete(ctx, a.Username); err != nil {
		return err
	}
	repo := a.repo
	*a = Admin{repo: repo}
	return nil
}

// AdminRepo owns Admins.text.
type AdminRepo struct {
	file   *store.File[*Admin]
	cipher secret.Cipher
}

func NewAdminRepo(path string, cipher secret.Cipher, logger *slog.Logger) *AdminRepo {
	r := &AdminRepo{cipher: cipher}
	r.file = store.NewFile(path, store.Codec[*Admin]{
		Marshal:   r.marshalLine,
		Unmarshal: r.unmarshalLine,
	}, logger)
	return r
}

func (r *AdminRepo) marshalLine(a *Admin) (string, error) {
	return store.JoinFields([]string{
		a.FirstName,
		a.LastName,
		a.Email,
		a.Phone,
		a.Username,
		r.cipher.Encrypt(a.Password),
		strconv.Itoa(int(a.Permissions)),
	}, store.FieldSep), nil
}

func (r *AdminRepo) unmarshalLine(line string) (*Admin, error) {
	fields := store.SplitFields(line, store.FieldSep)
	if len(fields) != adminFieldCount {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, adminFieldCount, len(fields))
	}
	password, err := r.cipher.Decrypt(fields[5])
	if err != nil {
		return nil, fmt.Errorf("admin %q password: %w", fields[4], err)
	}
	permissions, err := strconv.Atoi(fields[6])
	if err != nil {
		return nil, fmt.Errorf("admin %q permissions: %w", fields[4], err)
	}
	return &Admin{
		Person: Person{
			FirstName: fields[0],
			LastName:  fields[1],
			Email:     fields[2],
			Phone:     fields[3],
		},
		Username:    fields[4],
		Password:    password,
		Permissions: Permission(permissions),
		mode:        ModeExisting,
		repo:        r,
	}, nil
}

// Empty returns the sentinel returned by find misses.
func (r *AdminRepo) Empty() *Admin {
	return &Admin{repo: r}
}

// New returns an admin in New mode with the chosen username and every
// other field blank, ready to be filled in and saved.
func (r *AdminRepo) New(username string) *Admin {
	return &Admin{Username: username, mode: ModeNew, repo: r}
}

// Find looks an admin up by username. A miss returns the Empty sentinel,
// never an error.
func (r *AdminRepo) Find(ctx context.Context, username string) (*Admin, error) {
	admin, ok, err := r.file.Find(ctx, func(a *Admin) bool {
		return a.Username == username
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return admin, nil
}

// FindWithPassword is the login lookup: both username and password must
// match.
func (r *AdminRepo) FindWithPassword(ctx context.Context, username, password string) (*Admin, error) {
	admin, ok, err := r.file.Find(ctx, func(a *Admin) bool {
		return a.Username == username && a.Password == password
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return admin, nil
}

func (r *AdminRepo) Exists(ctx context.Context, username string) (bool, error) {
	admin, err := r.Find(ctx, username)
	if err != nil {
		return false, err
	}
	return !admin.IsEmpty(), nil
}

func (r *AdminRepo) List(ctx context.Context) ([]*Admin, error) {
	return r.file.LoadAll(ctx)
}
