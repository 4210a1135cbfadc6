package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"gastobot/internal/logger"
	"gastobot/internal/models"
	"gastobot/internal/processor"
)

// MaxMessageLength is the maximum user message length embedded in the prompt.
const MaxMessageLength = 500

// Extract runs a chat message through the expense-extraction prompt and
// returns the structured candidate, or nil when the message does not
// describe an expense. All failure paths converge to nil: a completion
// call failure, an unparseable response, or an is_expense:false verdict
// are indistinguishable to the caller.
func (c *Client) Extract(ctx context.Context, message string) *models.ExpenseCandidate {
	msgHash := hashMessage(message)

	if c.generator == nil {
		logger.Log.Error().Str("message_hash", msgHash).Msg("Extract: gemini client not initialized")
		return nil
	}

	prompt := buildExpensePrompt(sanitizeMessage(message))

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
	}

	resp, err := c.generator.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		logger.Log.Warn().Err(err).Str("message_hash", msgHash).Msg("Extract: completion call failed, treating as non-expense")
		return nil
	}

	if resp == nil {
		logger.Log.Warn().Str("message_hash", msgHash).Msg("Extract: nil response from Gemini")
		return nil
	}

	fullText := resp.Text()
	if fullText == "" {
		logger.Log.Warn().Str("message_hash", msgHash).Msg("Extract: empty response from Gemini")
		return nil
	}

	candidate, err := parseExtractionResponse(fullText)
	if err != nil {
		logger.Log.Warn().Err(err).Str("message_hash", msgHash).Msg("Extract: unparseable response, treating as non-expense")
		return nil
	}

	if candidate == nil {
		logger.Log.Debug().Str("message_hash", msgHash).Msg("Extract: message is not an expense")
		return nil
	}

	logger.Log.Debug().
		Str("message_hash", msgHash).
		Str("category", candidate.Category).
		Str("amount", candidate.Amount.String()).
		Msg("Extract: expense candidate extracted")

	return candidate
}

// extractionResponse is the JSON structure the prompt asks the model for.
// Amount is raw because the model may emit a bare number or a
// currency-decorated string despite the instructions.
type extractionResponse struct {
	IsExpense   *bool           `json:"is_expense"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
}

// parseExtractionResponse isolates and decodes the JSON payload from the raw
// model text. The payload may be wrapped in a fenced code block (with or
// without a language tag) or be bare JSON. A nil candidate with nil error
// means the model decided the message is not an expense.
func parseExtractionResponse(response string) (*models.ExpenseCandidate, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var er extractionResponse
	if err := json.Unmarshal([]byte(response), &er); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	if er.IsExpense == nil {
		return nil, fmt.Errorf("extraction response missing is_expense field")
	}

	if !*er.IsExpense {
		return nil, nil
	}

	candidate := &models.ExpenseCandidate{
		IsExpense:   true,
		Description: strings.TrimSpace(er.Description),
		Amount:      decodeAmount(er.Amount),
		Category:    models.NormalizeCategory(er.Category),
	}
	if candidate.Description == "" {
		candidate.Description = models.DefaultDescription
	}

	return candidate, nil
}

// decodeAmount converts the raw JSON amount into a decimal. It accepts a
// bare number, a quoted number, or a currency-decorated string like
// "$1,234.50". Everything funnels through the shared normalizer, so
// anything unparseable becomes zero.
func decodeAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
	}

	return processor.NormalizeAmount(s)
}

// buildExpensePrompt creates the instruction prompt for expense analysis.
func buildExpensePrompt(message string) string {
	categoryList := strings.Join(models.Categories, ", ")

	return fmt.Sprintf(`You are an expense analyzer. Your task is to analyze a message and determine if it contains information about an expense.

IMPORTANT: The following examples should ALL be considered expenses:
- "Groceries $50"
- "Paid $30 for gas"
- "Heladera 300 pesos"
- "Bought a new phone for 500 euros"
- "Taxi 20"
- "Coffee 5 dollars"

If the message contains an expense, extract the following information:
- Description: What was purchased or what the expense is for
- Amount: The monetary value of the expense (convert to numeric value only)
- Category: The category of the expense (%s)

If the message does not contain an expense, return is_expense false.

The message might be in any format and any language. Try to extract the information as best as you can.
Recognize various currency formats including:
- Dollar amounts: $50, 50 dollars, USD 50
- Peso amounts: 300 pesos, ARS 300
- Euro amounts: €50, 50 euros, EUR 50
- Any other currency mentioned or implied

For any currency, extract only the numeric value for the amount field.

IMPORTANT: Any message that mentions a product or service with a numeric value should be considered an expense, even if it doesn't explicitly use words like "bought", "paid", or "spent".

Return your analysis as a JSON object with the following structure:
{
  "is_expense": true,
  "description": "description of the expense",
  "amount": numeric_value,
  "category": "category of the expense"
}

If it's not an expense, return:
{
  "is_expense": false
}

Message: %s`, categoryList, message)
}

// sanitizeMessage sanitizes user input to prevent prompt injection attacks.
// It removes characters that could break prompt structure, collapses
// whitespace, and truncates to MaxMessageLength.
func sanitizeMessage(message string) string {
	message = strings.ReplaceAll(message, "`", "'")
	message = strings.ReplaceAll(message, "\x00", "")

	message = strings.Join(strings.Fields(message), " ")

	if len(message) > MaxMessageLength {
		message = strings.TrimSpace(message[:MaxMessageLength])
	}

	return message
}

// hashMessage creates a SHA256 hash of the message for privacy-safe logging.
func hashMessage(message string) string {
	hash := sha256.Sum256([]byte(message))
	return hex.EncodeToString(hash[:8])
}
