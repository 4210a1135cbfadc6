package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gastobot/internal/models"
)

type fakeUserStore struct {
	users       map[string]*models.User
	nextID      int64
	forceExists bool
	existsErr   error
	getErr      error
	createErr   error
	creates     int
}

func newFakeUserStore(registered ...string) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, id := range registered {
		s.nextID++
		s.users[id] = &models.User{ID: s.nextID, TelegramID: id, CreatedAt: time.Now()}
	}
	return s
}

func (s *fakeUserStore) Exists(_ context.Context, telegramID string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.forceExists {
		return true, nil
	}
	_, ok := s.users[telegramID]
	return ok, nil
}

func (s *fakeUserStore) GetByTelegramID(_ context.Context, telegramID string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.users[telegramID], nil
}

func (s *fakeUserStore) Create(_ context.Context, telegramID string) (*models.User, error) {
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	user := &models.User{ID: s.nextID, TelegramID: telegramID, CreatedAt: time.Now()}
	s.users[telegramID] = user
	return user, nil
}

type fakeExpenseStore struct {
	created   []*models.Expense
	list      []models.Expense
	createErr error
	listErr   error
}

func (s *fakeExpenseStore) Create(_ context.Context, expense *models.Expense) error {
	if s.createErr != nil {
		return s.createErr
	}
	expense.ID = int64(len(s.created) + 1)
	s.created = append(s.created, expense)
	return nil
}

func (s *fakeExpenseStore) ListSince(_ context.Context, _ int64, _ time.Time) ([]models.Expense, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list, nil
}

type fakeExtractor struct {
	candidate *models.ExpenseCandidate
	calls     int
}

func (e *fakeExtractor) Extract(_ context.Context, _ string) *models.ExpenseCandidate {
	e.calls++
	return e.candidate
}

func TestProcessInputValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing telegram id", req: Request{Message: "hello"}},
		{name: "missing message", req: Request{TelegramID: "123"}},
		{name: "whitespace message", req: Request{TelegramID: "123", Message: "   "}},
		{name: "empty request", req: Request{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(newFakeUserStore(), &fakeExpenseStore{}, &fakeExtractor{})
			resp := p.Process(context.Background(), tt.req)

			require.False(t, resp.Success)
			require.Equal(t, ErrorMissingInput, resp.ErrorKind)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestProcessHelpCommand(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{}
	p := New(newFakeUserStore("123"), &fakeExpenseStore{}, extractor)

	resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "/help"})

	require.True(t, resp.Success)
	require.True(t, resp.ShouldRespond)
	require.Equal(t, HelpMessage, resp.ResponseText)
	require.Zero(t, extractor.calls)
}

func TestProcessReportCommand(t *testing.T) {
	t.Parallel()

	t.Run("unregistered user gets onboarding text", func(t *testing.T) {
		t.Parallel()

		p := New(newFakeUserStore(), &fakeExpenseStore{}, &fakeExtractor{})
		resp := p.Process(context.Background(), Request{TelegramID: "999", Message: "/report"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.False(t, resp.UserWhitelisted)
		require.Equal(t, OnboardingMessage, resp.ResponseText)
	})

	t.Run("registered user gets trailing-24h report", func(t *testing.T) {
		t.Parallel()

		expenses := &fakeExpenseStore{list: []models.Expense{
			{Description: "Lunch", Amount: decimal.NewFromFloat(10.50), Category: "Food", AddedAt: time.Now()},
			{Description: "Bus", Amount: decimal.NewFromFloat(5.00), Category: "Transportation", AddedAt: time.Now()},
		}}
		extractor := &fakeExtractor{}
		p := New(newFakeUserStore("123"), expenses, extractor)

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "/report"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.Contains(t, resp.ResponseText, "Lunch")
		require.Contains(t, resp.ResponseText, "Bus")
		require.Contains(t, resp.ResponseText, "Total: $15.50")
		require.Zero(t, extractor.calls)
	})

	t.Run("empty window yields fixed message", func(t *testing.T) {
		t.Parallel()

		p := New(newFakeUserStore("123"), &fakeExpenseStore{}, &fakeExtractor{})
		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "/report"})

		require.True(t, resp.Success)
		require.Equal(t, NoExpensesMessage, resp.ResponseText)
	})

	t.Run("user lookup failure is a server error", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore("123")
		users.getErr = errors.New("db down")
		p := New(users, &fakeExpenseStore{}, &fakeExtractor{})

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "/report"})

		require.False(t, resp.Success)
		require.Equal(t, ErrorPersistence, resp.ErrorKind)
	})

	t.Run("expense query failure is a server error", func(t *testing.T) {
		t.Parallel()

		expenses := &fakeExpenseStore{listErr: errors.New("db down")}
		p := New(newFakeUserStore("123"), expenses, &fakeExtractor{})

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "/report"})

		require.False(t, resp.Success)
		require.Equal(t, ErrorPersistence, resp.ErrorKind)
	})
}

func TestProcessRegistration(t *testing.T) {
	t.Parallel()

	t.Run("first registration creates user and welcomes", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore()
		p := New(users, &fakeExpenseStore{}, &fakeExtractor{})

		resp := p.Process(context.Background(), Request{TelegramID: "42", Message: "Quiero registrarme a la aplicacion"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.Equal(t, WelcomeMessage, resp.ResponseText)
		require.Equal(t, 1, users.creates)
	})

	t.Run("repeat registration is idempotent", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore()
		p := New(users, &fakeExpenseStore{}, &fakeExtractor{})
		req := Request{TelegramID: "42", Message: "quiero registrarme a la aplicacion"}

		first := p.Process(context.Background(), req)
		second := p.Process(context.Background(), req)

		require.Equal(t, WelcomeMessage, first.ResponseText)
		require.Equal(t, AlreadyRegisteredMessage, second.ResponseText)
		require.True(t, second.ShouldRespond)
		require.Equal(t, 1, users.creates)
	})

	t.Run("store rejection surfaces as registration error", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore()
		users.createErr = errors.New("unique violation")
		p := New(users, &fakeExpenseStore{}, &fakeExtractor{})

		resp := p.Process(context.Background(), Request{TelegramID: "42", Message: "quiero registrarme a la aplicacion"})

		require.False(t, resp.Success)
		require.Equal(t, ErrorRegistration, resp.ErrorKind)
	})
}

func TestProcessUnregisteredUser(t *testing.T) {
	t.Parallel()

	t.Run("loose register mention creates the user", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore()
		p := New(users, &fakeExpenseStore{}, &fakeExtractor{})

		resp := p.Process(context.Background(), Request{TelegramID: "7", Message: "how do I register?"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.Equal(t, WelcomeMessage, resp.ResponseText)
		require.Equal(t, 1, users.creates)
	})

	t.Run("other messages get onboarding text, never the extractor", func(t *testing.T) {
		t.Parallel()

		extractor := &fakeExtractor{candidate: &models.ExpenseCandidate{IsExpense: true}}
		expenses := &fakeExpenseStore{}
		p := New(newFakeUserStore(), expenses, extractor)

		resp := p.Process(context.Background(), Request{TelegramID: "7", Message: "Taxi $20"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.False(t, resp.UserWhitelisted)
		require.Equal(t, OnboardingMessage, resp.ResponseText)
		require.Zero(t, extractor.calls)
		require.Empty(t, expenses.created)
	})
}

func TestProcessFreeText(t *testing.T) {
	t.Parallel()

	t.Run("expense message is persisted and confirmed", func(t *testing.T) {
		t.Parallel()

		extractor := &fakeExtractor{candidate: &models.ExpenseCandidate{
			IsExpense:   true,
			Description: "Taxi",
			Amount:      decimal.NewFromInt(20),
			Category:    "Transportation",
		}}
		expenses := &fakeExpenseStore{}
		p := New(newFakeUserStore("123"), expenses, extractor)

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "Taxi $20"})

		require.True(t, resp.Success)
		require.True(t, resp.ShouldRespond)
		require.True(t, resp.ExpenseCreated)
		require.Equal(t, "Transportation expense added ✅", resp.ResponseText)
		require.NotNil(t, resp.ExpenseData)
		require.Equal(t, "Taxi", resp.ExpenseData.Description)

		require.Len(t, expenses.created, 1)
		created := expenses.created[0]
		require.Equal(t, int64(1), created.UserID)
		require.Equal(t, "Taxi", created.Description)
		require.True(t, created.Amount.Equal(decimal.NewFromInt(20)))
		require.Equal(t, "Transportation", created.Category)
		require.False(t, created.AddedAt.IsZero())
	})

	t.Run("non-expense message yields silent success", func(t *testing.T) {
		t.Parallel()

		expenses := &fakeExpenseStore{}
		p := New(newFakeUserStore("123"), expenses, &fakeExtractor{candidate: nil})

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "hello"})

		require.True(t, resp.Success)
		require.False(t, resp.ShouldRespond)
		require.False(t, resp.ExpenseCreated)
		require.Empty(t, resp.ResponseText)
		require.Empty(t, expenses.created)
	})

	t.Run("vanished user is a not-found error", func(t *testing.T) {
		t.Parallel()

		// The user passes the registration check but disappears before the
		// id lookup.
		users := newFakeUserStore("123")
		users.forceExists = true
		delete(users.users, "123")

		extractor := &fakeExtractor{candidate: &models.ExpenseCandidate{IsExpense: true, Category: "Other"}}
		p := New(users, &fakeExpenseStore{}, extractor)

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "Taxi $20"})

		require.False(t, resp.Success)
		require.Equal(t, ErrorUserNotFound, resp.ErrorKind)
	})

	t.Run("persistence failure is a server error", func(t *testing.T) {
		t.Parallel()

		extractor := &fakeExtractor{candidate: &models.ExpenseCandidate{IsExpense: true, Category: "Food"}}
		expenses := &fakeExpenseStore{createErr: errors.New("insert failed")}
		p := New(newFakeUserStore("123"), expenses, extractor)

		resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "Lunch 10"})

		require.False(t, resp.Success)
		require.Equal(t, ErrorPersistence, resp.ErrorKind)
	})
}

func TestProcessStoreFailure(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	users.existsErr = errors.New("connection refused")
	p := New(users, &fakeExpenseStore{}, &fakeExtractor{})

	resp := p.Process(context.Background(), Request{TelegramID: "123", Message: "anything"})

	require.False(t, resp.Success)
	require.Equal(t, ErrorPersistence, resp.ErrorKind)
}
