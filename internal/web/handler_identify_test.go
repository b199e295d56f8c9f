package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsnap/internal/nutrition"
	"mealsnap/internal/web/static"
	"mealsnap/internal/web/templates"
)

// fakeAnalyzer records calls and plays back a scripted result or error.
type fakeAnalyzer struct {
	identifyCalls int
	followUpCalls int
	lastImage     []byte
	lastMime      string
	lastContext   string
	lastQuestion  string
	result        string
	err           error
}

func (f *fakeAnalyzer) IdentifyMeal(_ context.Context, image []byte, mimeType string) (string, error) {
	f.identifyCalls++
	f.lastImage = image
	f.lastMime = mimeType
	return f.result, f.err
}

func (f *fakeAnalyzer) AnswerFollowUp(_ context.Context, mealContext, question string) (string, error) {
	f.followUpCalls++
	f.lastContext = mealContext
	f.lastQuestion = question
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(analyzer nutrition.Analyzer) *Server {
	return NewServer(analyzer, templates.FS, static.FS, testLogger())
}

func postIdentify(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/identify-meal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func jpegDataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestIdentifyMealInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "question without context", body: `{"followUpQuestion":"Is this healthy?"}`},
		{name: "context without question", body: `{"mealContext":"Grilled chicken"}`},
		{name: "both shapes present", body: `{"image":"data:image/jpeg;base64,AAAA","followUpQuestion":"q","mealContext":"c"}`},
		{name: "not json", body: `not json at all`},
		{name: "image not a data URL", body: `{"image":"AAAA"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: "should never be returned"}
			rec := postIdentify(t, newTestServer(analyzer), tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp struct {
				Error string `json:"error"`
				Stack string `json:"stack"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.Stack)

			// The external model is never invoked on an invalid body.
			assert.Zero(t, analyzer.identifyCalls)
			assert.Zero(t, analyzer.followUpCalls)
		})
	}
}

func TestIdentifyMealImage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: "Grilled chicken, 400 kcal"}
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	body, err := json.Marshal(map[string]string{"image": jpegDataURL(imageBytes)})
	require.NoError(t, err)

	rec := postIdentify(t, newTestServer(analyzer), string(body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The result is the model's text verbatim; formatting happens later.
	assert.Equal(t, "Grilled chicken, 400 kcal", resp.Result)

	assert.Equal(t, 1, analyzer.identifyCalls)
	assert.Zero(t, analyzer.followUpCalls)
	assert.Equal(t, imageBytes, analyzer.lastImage)
	assert.Equal(t, "image/jpeg", analyzer.lastMime)
}

func TestIdentifyMealFollowUp(t *testing.T) {
	analyzer := &fakeAnalyzer{result: "Reasonably healthy in moderation."}

	rec := postIdentify(t, newTestServer(analyzer),
		`{"followUpQuestion":"Is this healthy?","mealContext":"Grilled chicken, 400 kcal"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, analyzer.followUpCalls)
	assert.Zero(t, analyzer.identifyCalls)
	assert.Equal(t, "Grilled chicken, 400 kcal", analyzer.lastContext)
	assert.Equal(t, "Is this healthy?", analyzer.lastQuestion)
}

func TestIdentifyMealExternalError(t *testing.T) {
	analyzer := &fakeAnalyzer{
		err: nutrition.NewError(nutrition.ErrorExternal, "gemini_identify", errors.New("upstream timeout")),
	}

	body, err := json.Marshal(map[string]string{"image": jpegDataURL([]byte{0xFF, 0xD8})})
	require.NoError(t, err)

	rec := postIdentify(t, newTestServer(analyzer), string(body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Stack string `json:"stack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "upstream timeout")
	assert.NotEmpty(t, resp.Stack)

	// One attempt, no retries.
	assert.Equal(t, 1, analyzer.identifyCalls)
}

func TestIdentifyMealMissingAPIKey(t *testing.T) {
	server := newTestServer(nutrition.Unconfigured{})

	body, err := json.Marshal(map[string]string{"image": jpegDataURL([]byte{0xFF, 0xD8})})
	require.NoError(t, err)

	rec := postIdentify(t, server, string(body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "GEMINI_API_KEY")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		req     identifyRequest
		want    any
		wantErr bool
	}{
		{
			name: "image only",
			req:  identifyRequest{Image: "data:image/jpeg;base64,AAAA"},
			want: identifyCall{dataURL: "data:image/jpeg;base64,AAAA"},
		},
		{
			name: "follow-up",
			req:  identifyRequest{FollowUpQuestion: "q", MealContext: "c"},
			want: followUpCall{question: "q", mealContext: "c"},
		},
		{name: "empty", req: identifyRequest{}, wantErr: true},
		{name: "question only", req: identifyRequest{FollowUpQuestion: "q"}, wantErr: true},
		{name: "context only", req: identifyRequest{MealContext: "c"}, wantErr: true},
		{
			name:    "image plus follow-up",
			req:     identifyRequest{Image: "x", FollowUpQuestion: "q", MealContext: "c"},
			wantErr: true,
		},
		{
			name:    "image plus context",
			req:     identifyRequest{Image: "x", MealContext: "c"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classify(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				var nerr *nutrition.Error
				require.ErrorAs(t, err, &nerr)
				assert.Equal(t, nutrition.ErrorInvalidRequest, nerr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyMealOversizedBody(t *testing.T) {
	analyzer := &fakeAnalyzer{result: "x"}

	rec := postIdentify(t, newTestServer(analyzer), `{"image":"`+strings.Repeat("a", maxBodySize)+`"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, analyzer.identifyCalls)
}
