// Package processor implements the message-classification pipeline that
// turns an inbound chat message into a command response, a registration,
// or a persisted expense.
package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gastobot/internal/logger"
	"gastobot/internal/models"
)

// Canned response texts. Registration and onboarding texts are
// Spanish-facing, matching the bot's user base.
const (
	WelcomeMessage           = "Usted se ha registrado con éxito. Ya puede comenzar a utilizar el bot."
	AlreadyRegisteredMessage = "Usted ya está registrado en la aplicación."
	OnboardingMessage        = "Para utilizar el bot, primero debe registrarse enviando el mensaje 'Quiero registrarme a la aplicacion'"

	HelpMessage = `🤖 Expense bot commands:

/help - Show this message
/report - List your expenses from the last 24 hours

To record an expense, just describe it in a message, e.g. "Taxi $20" or "Groceries 50".
To register, send: "Quiero registrarme a la aplicacion"`
)

// ErrorKind classifies a failed request so the transport layer can map it
// to a status code.
type ErrorKind int

// Error classes, per failure taxonomy.
const (
	ErrorNone ErrorKind = iota
	ErrorMissingInput
	ErrorUserNotFound
	ErrorRegistration
	ErrorPersistence
)

// UserStore is the external user registry consumed by the pipeline.
type UserStore interface {
	Exists(ctx context.Context, telegramID string) (bool, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	Create(ctx context.Context, telegramID string) (*models.User, error)
}

// ExpenseStore is the external expense persistence consumed by the pipeline.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Expense, error)
}

// Extractor runs a message through the completion service and returns a
// structured candidate, or nil when the message is not an expense.
type Extractor interface {
	Extract(ctx context.Context, message string) *models.ExpenseCandidate
}

// Request is the logical inbound message from the connector service.
type Request struct {
	TelegramID string `json:"telegram_id"`
	Message    string `json:"message"`
}

// Response is the stable result contract serialized by the HTTP boundary.
type Response struct {
	Success         bool                     `json:"success"`
	TelegramID      string                   `json:"telegram_id,omitempty"`
	Message         string                   `json:"message,omitempty"`
	UserWhitelisted bool                     `json:"user_whitelisted"`
	ShouldRespond   bool                     `json:"should_respond"`
	ResponseText    string                   `json:"response_message,omitempty"`
	ExpenseCreated  bool                     `json:"expense_created"`
	ExpenseData     *models.ExpenseCandidate `json:"expense_data,omitempty"`
	Error           string                   `json:"error,omitempty"`
	ErrorKind       ErrorKind                `json:"-"`
}

// Processor is the top-level decision pipeline. It holds no cross-request
// state: every request resolves independently against the injected stores.
type Processor struct {
	users     UserStore
	expenses  ExpenseStore
	extractor Extractor
}

// New creates a Processor with its collaborators.
func New(users UserStore, expenses ExpenseStore, extractor Extractor) *Processor {
	return &Processor{
		users:     users,
		expenses:  expenses,
		extractor: extractor,
	}
}

// Process runs one message through the pipeline. States are terminal on
// first match: input validation, help, report, exact registration phrase,
// unregistered fallback, then free-text expense extraction.
func (p *Processor) Process(ctx context.Context, req Request) Response {
	if req.TelegramID == "" || strings.TrimSpace(req.Message) == "" {
		logger.Log.Warn().Msg("Rejecting request with missing telegram_id or message")
		return p.errorResponse(req, ErrorMissingInput, "Missing required data")
	}

	registered, err := p.users.Exists(ctx, req.TelegramID)
	if err != nil {
		logger.Log.Error().Err(err).Str("telegram_id", req.TelegramID).Msg("User lookup failed")
		return p.errorResponse(req, ErrorPersistence, "Error checking user registration")
	}

	logger.Log.Debug().
		Str("telegram_id", req.TelegramID).
		Bool("registered", registered).
		Msg("Processing message")

	switch cmd := ClassifyCommand(req.Message); cmd {
	case CommandHelp:
		return p.respond(req, registered, HelpMessage)
	case CommandReport:
		return p.handleReport(ctx, req, registered)
	case CommandRegister:
		return p.handleRegistration(ctx, req, registered)
	}

	if !registered {
		if IsRegistrationAttempt(req.Message) {
			return p.register(ctx, req)
		}
		logger.Log.Info().Str("telegram_id", req.TelegramID).Msg("Unregistered user, sending onboarding message")
		return p.respond(req, false, OnboardingMessage)
	}

	return p.handleExpense(ctx, req)
}

// handleReport renders the trailing-24h expense report for a registered
// user; unregistered users get the onboarding text instead.
func (p *Processor) handleReport(ctx context.Context, req Request, registered bool) Response {
	if !registered {
		return p.respond(req, false, OnboardingMessage)
	}

	user, err := p.users.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		logger.Log.Error().Err(err).Str("telegram_id", req.TelegramID).Msg("User lookup failed for report")
		return p.errorResponse(req, ErrorPersistence, "Error fetching user")
	}
	if user == nil {
		return p.errorResponse(req, ErrorUserNotFound, "User not found")
	}

	since := time.Now().Add(-ReportWindowHours * time.Hour)
	expenses, err := p.expenses.ListSince(ctx, user.ID, since)
	if err != nil {
		logger.Log.Error().Err(err).Int64("user_id", user.ID).Msg("Expense query failed for report")
		return p.errorResponse(req, ErrorPersistence, "Error fetching expenses")
	}

	logger.Log.Debug().Int64("user_id", user.ID).Int("count", len(expenses)).Msg("Generating expense report")
	return p.respond(req, true, FormatReport(expenses))
}

// handleRegistration handles the exact registration phrase. Registration is
// idempotent at this level: a second attempt yields "already registered"
// without touching the store.
func (p *Processor) handleRegistration(ctx context.Context, req Request, registered bool) Response {
	if registered {
		logger.Log.Debug().Str("telegram_id", req.TelegramID).Msg("User already registered")
		return p.respond(req, true, AlreadyRegisteredMessage)
	}
	return p.register(ctx, req)
}

// register creates the user record and welcomes them. Duplicate
// registrations racing each other are left to the store's uniqueness
// constraint; the loser surfaces as a registration error.
func (p *Processor) register(ctx context.Context, req Request) Response {
	if _, err := p.users.Create(ctx, req.TelegramID); err != nil {
		logger.Log.Error().Err(err).Str("telegram_id", req.TelegramID).Msg("Failed to register user")
		return p.errorResponse(req, ErrorRegistration, "Error al registrar el usuario")
	}

	logger.Log.Info().Str("telegram_id", req.TelegramID).Msg("User registered")
	return p.respond(req, true, WelcomeMessage)
}

// handleExpense runs free text from a registered user through the extractor
// and persists the result. A nil extraction means the message is not an
// expense: the request succeeds with no response and no store write.
func (p *Processor) handleExpense(ctx context.Context, req Request) Response {
	candidate := p.extractor.Extract(ctx, req.Message)
	if candidate == nil {
		return Response{
			Success:         true,
			TelegramID:      req.TelegramID,
			Message:         req.Message,
			UserWhitelisted: true,
			ShouldRespond:   false,
			ExpenseCreated:  false,
		}
	}

	user, err := p.users.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		logger.Log.Error().Err(err).Str("telegram_id", req.TelegramID).Msg("User lookup failed for expense")
		return p.errorResponse(req, ErrorPersistence, "Error fetching user")
	}
	if user == nil {
		logger.Log.Error().Str("telegram_id", req.TelegramID).Msg("Registered user vanished before expense creation")
		return p.errorResponse(req, ErrorUserNotFound, "User not found")
	}

	expense := &models.Expense{
		UserID:      user.ID,
		Description: candidate.Description,
		Amount:      candidate.Amount,
		Category:    candidate.Category,
		AddedAt:     time.Now(),
	}
	if err := p.expenses.Create(ctx, expense); err != nil {
		logger.Log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to persist expense")
		return p.errorResponse(req, ErrorPersistence, "Error creating expense")
	}

	logger.Log.Info().
		Int64("user_id", user.ID).
		Str("category", expense.Category).
		Str("amount", expense.Amount.String()).
		Msg("Expense created")

	resp := p.respond(req, true, fmt.Sprintf("%s expense added ✅", candidate.Category))
	resp.ExpenseCreated = true
	resp.ExpenseData = candidate
	return resp
}

func (p *Processor) respond(req Request, whitelisted bool, text string) Response {
	return Response{
		Success:         true,
		TelegramID:      req.TelegramID,
		Message:         req.Message,
		UserWhitelisted: whitelisted,
		ShouldRespond:   true,
		ResponseText:    text,
	}
}

func (p *Processor) errorResponse(req Request, kind ErrorKind, msg string) Response {
	return Response{
		Success:    false,
		TelegramID: req.TelegramID,
		Message:    req.Message,
		Error:      msg,
		ErrorKind:  kind,
	}
}
