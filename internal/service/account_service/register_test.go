package account_service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/account_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)

	logrus.Info("initializing service")
	service.InitializeServices()

	os.Exit(m.Run())
}

func newAccountService(t *testing.T) *account_service.AccountService {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("cannot create file store: %v", err)
	}
	return &account_service.AccountService{Store: store}
}

func TestRegisterJudgeCapacity(t *testing.T) {
	as := newAccountService(t)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		_, err := as.RegisterJudge(ctx, account_service.AccountRegistration{
			Name:     fmt.Sprintf("Judge %d", i),
			Email:    fmt.Sprintf("judge%d@college.edu", i),
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("judge %d registration failed: %v", i, err)
		}
	}

	_, err := as.RegisterJudge(ctx, account_service.AccountRegistration{
		Name:     "Judge 3",
		Email:    "judge3@college.edu",
		Password: "secret123",
	})
	if !errors.Is(err, adzap_errors.ErrCapacityFull) {
		t.Errorf("expected capacity error for third judge, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "only 2 judge accounts") {
		t.Errorf("capacity message should name the limit, got %q", err.Error())
	}
}

func TestRegisterAdminDuplicate(t *testing.T) {
	as := newAccountService(t)
	ctx := context.Background()

	registration := account_service.AccountRegistration{
		Name:     "Organizer",
		Email:    "Org@College.edu",
		Password: "secret123",
	}
	account, err := as.RegisterAdmin(ctx, registration)
	if err != nil {
		t.Fatalf("admin registration failed: %v", err)
	}
	if account.PasswordHash != "" || account.EmailKey != "" {
		t.Errorf("registration response leaks credentials: %+v", account)
	}

	registration.Email = " org@college.EDU "
	_, err = as.RegisterAdmin(ctx, registration)
	if !errors.Is(err, adzap_errors.ErrDuplicateEmail) {
		t.Errorf("expected duplicate email error, got %v", err)
	}

	// duplicates are scoped to the kind, the same email can be a judge
	if _, err := as.RegisterJudge(ctx, registration); err != nil {
		t.Errorf("judge registration with an admin email should pass: %v", err)
	}
}

func TestRegisterAccountValidation(t *testing.T) {
	as := newAccountService(t)

	_, err := as.RegisterAdmin(context.Background(), account_service.AccountRegistration{
		Name:  "No Password",
		Email: "np@college.edu",
	})
	if !errors.Is(err, adzap_errors.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
