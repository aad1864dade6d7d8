package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/pkg/config"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

const extractionPromptFmt = `You are given a photo of a school class roster for the grade level %q. Extract every student row.
Reply with ONLY a JSON object of the form:
{"grade_level": %q, "students": [{"full_name": "...", "national_school_id": "...", "class_section": "..."}]}
Names may be in Arabic. Leave unknown fields as empty strings. Do not add commentary.`

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractionService turns roster photos into staged candidate students by
// calling a vision-capable chat completion endpoint.
type ExtractionService struct {
	cfg       config.ExtractionConfig
	client    *http.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExtractionService constructs an ExtractionService.
func NewExtractionService(cfg config.ExtractionConfig, validate *validator.Validate, logger *zap.Logger) *ExtractionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		validator: validate,
		logger:    logger,
	}
}

// ExtractFromImage sends the image to the upstream model and stages the
// parsed candidates. Nothing is written to the database; the caller confirms
// candidates through the student import flow.
func (s *ExtractionService) ExtractFromImage(ctx context.Context, image []byte, mimeType, gradeLevel string) (*models.ExtractionResult, error) {
	if len(image) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image payload is empty")
	}
	gradeLevel = strings.TrimSpace(gradeLevel)
	if gradeLevel == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level is required")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	payload := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: fmt.Sprintf(extractionPromptFmt, gradeLevel, gradeLevel)},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		MaxTokens: 2048,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode extraction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build extraction request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, appErrors.Clone(appErrors.ErrExtractionRateLimited, "")
	case http.StatusPaymentRequired:
		return nil, appErrors.Clone(appErrors.ErrExtractionQuota, "")
	default:
		s.logger.Warn("extraction upstream error",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(respBody)))
		return nil, appErrors.Clone(appErrors.ErrExtractionFailed, "")
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil || len(chat.Choices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrExtractionParse, "")
	}

	result, err := s.parseReply(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	// The caller's target grade wins over whatever the model read off the photo.
	result.GradeLevel = gradeLevel
	s.logger.Info("extraction completed",
		zap.String("grade_level", result.GradeLevel),
		zap.Int("students", len(result.Students)))
	return result, nil
}

// parseReply tolerates models that wrap the JSON in prose or code fences: the
// outermost balanced object is cut out of the text, then parsed strictly.
func (s *ExtractionService) parseReply(content string) (*models.ExtractionResult, error) {
	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrExtractionParse, "")
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	var result models.ExtractionResult
	if err := decoder.Decode(&result); err != nil {
		return nil, appErrors.Clone(appErrors.ErrExtractionParse, "")
	}
	if len(result.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrExtractionParse, "extraction reply listed no students")
	}
	for i := range result.Students {
		result.Students[i].FullName = strings.TrimSpace(result.Students[i].FullName)
		result.Students[i].NationalSchoolID = strings.TrimSpace(result.Students[i].NationalSchoolID)
		result.Students[i].ClassSection = strings.TrimSpace(result.Students[i].ClassSection)
		if err := s.validator.Struct(result.Students[i]); err != nil {
			return nil, appErrors.Clone(appErrors.ErrExtractionParse, "extraction reply contained an unnamed student")
		}
	}
	return &result, nil
}

// extractJSONObject returns the first balanced top-level JSON object in text.
// Braces inside strings are skipped.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
