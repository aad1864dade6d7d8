package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/pkg/config"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

func extractionTestService(endpoint string) *ExtractionService {
	return NewExtractionService(config.ExtractionConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "test-model",
		Timeout:  5 * time.Second,
	}, validator.New(), zap.NewNop())
}

func chatReply(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

func TestExtractFromImageParsesProseWrappedJSON(t *testing.T) {
	reply := "Here is the roster I found:\n```json\n" +
		`{"grade_level":"الصف الثالث","students":[{"full_name":"سارة أحمد","national_school_id":"SCH-1001","class_section":"أ"},{"full_name":" عمر خالد ","national_school_id":"","class_section":""}]}` +
		"\n```\nLet me know if anything is wrong."

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(chatReply(reply))
	}))
	defer server.Close()

	svc := extractionTestService(server.URL)
	result, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/png", "الصف الثالث")
	require.NoError(t, err)
	assert.Equal(t, "الصف الثالث", result.GradeLevel)
	require.Len(t, result.Students, 2)
	assert.Equal(t, "عمر خالد", result.Students[1].FullName)
}

func TestExtractFromImageCarriesTargetGrade(t *testing.T) {
	reply := `{"grade_level":"الصف الأول","students":[{"full_name":"سارة أحمد","national_school_id":"SCH-1001","class_section":""}]}`

	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[0].Content[0].Text
		json.NewEncoder(w).Encode(chatReply(reply))
	}))
	defer server.Close()

	svc := extractionTestService(server.URL)
	result, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/png", "الصف الرابع")
	require.NoError(t, err)
	assert.Contains(t, prompt, "الصف الرابع")
	assert.Equal(t, "الصف الرابع", result.GradeLevel)
}

func TestExtractFromImageMissingGrade(t *testing.T) {
	svc := extractionTestService("http://127.0.0.1:0")
	_, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/jpeg", "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtractFromImageRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := extractionTestService(server.URL)
	_, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/jpeg", "الصف الثالث")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionRateLimited.Code, appErrors.FromError(err).Code)
}

func TestExtractFromImageQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	svc := extractionTestService(server.URL)
	_, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/jpeg", "الصف الثالث")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionQuota.Code, appErrors.FromError(err).Code)
}

func TestExtractFromImageUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := extractionTestService(server.URL)
	_, err := svc.ExtractFromImage(context.Background(), []byte("image-bytes"), "image/jpeg", "الصف الثالث")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionFailed.Code, appErrors.FromError(err).Code)
}

func TestExtractFromImageEmptyPayload(t *testing.T) {
	svc := extractionTestService("http://127.0.0.1:0")
	_, err := svc.ExtractFromImage(context.Background(), nil, "image/jpeg", "الصف الأول")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestParseReplyNoStudents(t *testing.T) {
	svc := extractionTestService("unused")

	_, err := svc.parseReply(`{"grade_level":"الصف الأول","students":[]}`)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionParse.Code, appErrors.FromError(err).Code)
}

func TestParseReplyUnnamedStudent(t *testing.T) {
	svc := extractionTestService("unused")

	_, err := svc.parseReply(`{"students":[{"full_name":"  "}]}`)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionParse.Code, appErrors.FromError(err).Code)
}

func TestParseReplyNoJSON(t *testing.T) {
	svc := extractionTestService("unused")

	_, err := svc.parseReply("sorry, I could not read the image")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExtractionParse.Code, appErrors.FromError(err).Code)
}

func TestExtractJSONObjectSkipsBracesInStrings(t *testing.T) {
	raw, ok := extractJSONObject(`prefix {"a":"{not a brace}","b":1} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a":"{not a brace}","b":1}`, raw)
}
