package bank_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/google/uuid"
)

func setupAdminRepo(t *testing.T) *bank.AdminRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Admins.text")
	return bank.NewAdminRepo(path, secret.NewCaesar(secret.DefaultCaesarShift), nil)
}

func newTestAdmin(repo *bank.AdminRepo, username string) *bank.Admin {
	admin := repo.New(username)
	admin.FirstName = "Ada"
	admin.LastName = "Lovelace"
	admin.Email = "ada@example.com"
	admin.Phone = "555-0100"
	admin.Password = "hunter2"
	admin.Permissions = bank.PermAll
	return admin
}

func TestAdminLifecycle(t *testing.T) {
	testCases := []struct {
		name     string
		testFunc func(t *testing.T, repo *bank.AdminRepo)
	}{
		{
			name: "save new admin then find it back",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				username := uuid.NewString()
				admin := newTestAdmin(repo, username)

				if err := admin.Save(context.Background()); err != nil {
					t.Fatal(err)
				}
				if admin.Mode() != bank.ModeExisting {
					t.Fatalf("expected ModeExisting after save, got %v", admin.Mode())
				}

				found, err := repo.Find(context.Background(), username)
				if err != nil {
					t.Fatal(err)
				}
				if found.IsEmpty() {
					t.Fatal("expected a hit")
				}
				if found.Password != "hunter2" {
					t.Fatalf("password did not round trip: %q", found.Password)
				}
				if found.Permissions != bank.PermAll {
					t.Fatalf("permissions did not round trip: %d", found.Permissions)
				}
			},
		},
		{
			name: "save refuses a taken username and leaves the store unchanged",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				username := uuid.NewString()

				if err := newTestAdmin(repo, username).Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				err := newTestAdmin(repo, username).Save(context.Background())
				if !errors.Is(err, bank.ErrKeyExists) {
					t.Fatalf("expected ErrKeyExists, got %v", err)
				}

				admins, err := repo.List(context.Background())
				if err != nil {
					t.Fatal(err)
				}
				if len(admins) != 1 {
					t.Fatalf("expected 1 admin, got %d", len(admins))
				}
			},
		},
		{
			name: "save rejects the empty sentinel",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				err := repo.Empty().Save(context.Background())
				if !errors.Is(err, bank.ErrEmptyObject) {
					t.Fatalf("expected ErrEmptyObject, got %v", err)
				}
			},
		},
		{
			name: "update overwrites the stored record",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				username := uuid.NewString()
				admin := newTestAdmin(repo, username)

				if err := admin.Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				admin.Permissions = bank.PermListClients | bank.PermFindClient
				if err := admin.Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				found, err := repo.Find(context.Background(), username)
				if err != nil {
					t.Fatal(err)
				}
				if found.Permissions != bank.PermListClients|bank.PermFindClient {
					t.Fatalf("unexpected permissions: %d", found.Permissions)
				}
			},
		},
		{
			name: "delete frees the username and resets the object",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				username := uuid.NewString()
				admin := newTestAdmin(repo, username)

				if err := admin.Save(context.Background()); err != nil {
					t.Fatal(err)
				}
				if err := admin.Delete(context.Background()); err != nil {
					t.Fatal(err)
				}
				if !admin.IsEmpty() {
					t.Fatal("expected the object to reset to the empty sentinel")
				}

				exists, err := repo.Exists(context.Background(), username)
				if err != nil {
					t.Fatal(err)
				}
				if exists {
					t.Fatal("expected the username to be free again")
				}

				// the freed username is reusable
				if err := newTestAdmin(repo, username).Save(context.Background()); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "find miss returns the empty sentinel without error",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				found, err := repo.Find(context.Background(), "nobody")
				if err != nil {
					t.Fatal(err)
				}
				if !found.IsEmpty() {
					t.Fatal("expected the empty sentinel")
				}
			},
		},
		{
			name: "login lookup needs both username and password",
			testFunc: func(t *testing.T, repo *bank.AdminRepo) {
				username := uuid.NewString()

				if err := newTestAdmin(repo, username).Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				hit, err := repo.FindWithPassword(context.Background(), username, "hunter2")
				if err != nil {
					t.Fatal(err)
				}
				if hit.IsEmpty() {
					t.Fatal("expected a hit with the right password")
				}

				miss, err := repo.FindWithPassword(context.Background(), username, "wrong")
				if err != nil {
					t.Fatal(err)
				}
				if !miss.IsEmpty() {
					t.Fatal("expected a miss with the wrong password")
				}
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.testFunc(t, setupAdminRepo(t))
		})
	}
}

func TestAdminPasswordIsEncryptedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Admins.text")
	repo := bank.NewAdminRepo(path, secret.NewCaesar(secret.DefaultCaesarShift), nil)
	username := uuid.NewString()

	if err := newTestAdmin(repo, username).Save(context.Background()); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "hunter2") {
		t.Fatal("password stored in the clear")
	}
	// shift 2 turns hunter2 into jwpvgt4
	if !strings.Contains(string(raw), "jwpvgt4") {
		t.Fatalf("unexpected on-disk password encoding: %q", string(raw))
	}
}
