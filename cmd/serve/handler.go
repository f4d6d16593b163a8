package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spetersoncode/headshot"
	"github.com/spetersoncode/headshot/internal/auth"
	"github.com/spetersoncode/headshot/internal/credits"
	"github.com/spetersoncode/headshot/internal/metrics"
	"github.com/spetersoncode/headshot/internal/storage"
)

// maxBodyBytes bounds a generation request body.
const maxBodyBytes = 8 << 20

// generateFunc is one of the client's generation entry points.
type generateFunc func(ctx context.Context, prompt string, opts ...headshot.ImageOption) (*headshot.ImageResponse, error)

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// CreditLedger checks and charges user credits.
type CreditLedger interface {
	HasCredits(ctx context.Context, userID string) (bool, error)
	Deduct(ctx context.Context, userID string, amount int64) (int64, error)
}

// Deps are the collaborators shared by the image routes.
// Credits, Store and Metrics may be nil.
type Deps struct {
	Auth    Authenticator
	Credits CreditLedger
	Store   storage.Store
	Metrics *metrics.Collector
	Timeout time.Duration
}

// ImageHandler serves one generation route.
type ImageHandler struct {
	route    string
	generate generateFunc
	deps     Deps
}

// NewImageHandler creates a handler for route that generates with fn.
func NewImageHandler(route string, fn generateFunc, deps Deps) *ImageHandler {
	return &ImageHandler{route: route, generate: fn, deps: deps}
}

// generateResponse is the success body.
type generateResponse struct {
	ImageBase64 string `json:"imageBase64"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// errorResponse is the failure body.
type errorResponse struct {
	Error       string `json:"error"`
	Suggestion  string `json:"suggestion,omitempty"`
	IsRetryable bool   `json:"isRetryable"`
}

// ServeHTTP handles POST requests to generate one image.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.serve(w, r)
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordHTTPRequest(h.route, status, time.Since(start))
	}
}

func (h *ImageHandler) serve(w http.ResponseWriter, r *http.Request) int {
	start := time.Now()

	// Only accept POST
	if r.Method != http.MethodPost {
		slog.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return http.StatusMethodNotAllowed
	}

	userID, err := h.deps.Auth.Authenticate(r)
	if err != nil {
		slog.Warn("unauthenticated request", "path", r.URL.Path, "error", err)
		return writeError(w, headshot.NewAuthError())
	}

	r = r.WithContext(auth.WithUserID(r.Context(), userID))

	// Create request-scoped logger
	log := slog.With("route", h.route, "user", userID)

	// Parse request body
	var req headshot.GenerationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(w, headshot.NewTooLargeError("The request body is too large."))
		}
		return writeError(w, headshot.NewValidationError("The request body is not valid JSON."))
	}
	if err := req.Validate(); err != nil {
		log.Warn("invalid request", "error", err)
		return writeError(w, err)
	}

	if h.deps.Credits != nil {
		ok, err := h.deps.Credits.HasCredits(r.Context(), userID)
		if err != nil {
			log.Error("credit check failed", "error", err)
			return writeError(w, errCreditsUnavailable(err))
		}
		if !ok {
			log.Info("insufficient credits")
			return writeError(w, headshot.NewInsufficientCreditsError())
		}
	}

	log.Info("request started", "reference_images", len(req.ReferenceImages), "provider", req.Provider)

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	resp, err := h.generate(ctx, req.Prompt, req.Options()...)
	if err != nil {
		fe := headshot.AsFriendly(err)
		log.Error("generation failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"provider", fe.Provider,
			"kind", fe.Kind,
			"retryable", fe.Retryable,
			"error", err,
		)
		return writeError(w, fe)
	}

	body := generateResponse{ImageBase64: resp.Base64, Provider: string(resp.Provider)}

	if h.deps.Store != nil {
		url, err := h.store(r.Context(), userID, resp)
		if err != nil {
			log.Error("failed to store image", "error", err)
			if h.deps.Metrics != nil {
				h.deps.Metrics.RecordStorageFailure()
			}
			return writeError(w, errStorageFailed(err))
		}
		body.ImageURL = url
	}

	if h.deps.Credits != nil {
		// The image is already paid for by the provider; a failed deduction
		// is reported but does not fail the request.
		balance, err := h.deps.Credits.Deduct(context.WithoutCancel(r.Context()), userID, credits.CostPerImage)
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordCreditDeduction(err)
		}
		if err != nil {
			log.Error("credit deduction failed", "error", err)
		} else {
			log.Debug("credit deducted", "balance", balance)
		}
	}

	log.Info("request completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"provider", resp.Provider,
		"model", resp.Model,
	)
	writeJSON(w, http.StatusOK, body)
	return http.StatusOK
}

// store persists the generated image under the user's prefix.
func (h *ImageHandler) store(ctx context.Context, userID string, resp *headshot.ImageResponse) (string, error) {
	data, err := base64.StdEncoding.DecodeString(resp.Base64)
	if err != nil {
		return "", &headshot.ImageError{Op: "decode", URL: "base64", Err: err}
	}
	key := storage.ObjectKey(userID, storage.ExtensionFor(resp.MimeType))
	return h.deps.Store.Put(ctx, key, data, resp.MimeType)
}

func errCreditsUnavailable(cause error) *headshot.FriendlyError {
	return &headshot.FriendlyError{
		Kind:       headshot.KindServer,
		Message:    "We couldn't check your credits right now.",
		Suggestion: "Please try again in a moment.",
		Retryable:  true,
		Cause:      cause,
	}
}

func errStorageFailed(cause error) *headshot.FriendlyError {
	return &headshot.FriendlyError{
		Kind:       headshot.KindServer,
		Message:    "Your image was generated but could not be saved.",
		Suggestion: "Please try again. You have not been charged.",
		Retryable:  true,
		Cause:      cause,
	}
}

// statusFor maps an error kind to an HTTP status. Provider failures are
// 500 whether or not they are retryable.
func statusFor(kind headshot.ErrorKind) int {
	switch kind {
	case headshot.KindAuth:
		return http.StatusUnauthorized
	case headshot.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case headshot.KindValidation:
		return http.StatusBadRequest
	case headshot.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the error envelope and returns the status used.
func writeError(w http.ResponseWriter, err error) int {
	fe := headshot.AsFriendly(err)
	status := statusFor(fe.Kind)
	writeJSON(w, status, errorResponse{
		Error:       fe.Message,
		Suggestion:  fe.Suggestion,
		IsRetryable: fe.Retryable,
	})
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
