package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"emailsummary/internal/domain/digest"
	"emailsummary/internal/shared/auth"
	"emailsummary/internal/shared/messages"
)

// DigestDispatcher is what the sendmail endpoint needs from the digest domain.
type DigestDispatcher interface {
	Authenticate(ctx context.Context, bearer, sessionToken string) (digest.Caller, error)
	Dispatch(ctx context.Context, caller digest.Caller, req digest.Request) (*digest.Result, error)
}

// DigestHandler serves POST /api/sendmail
type DigestHandler struct {
	dispatcher DigestDispatcher
	cookieName string
}

// NewDigestHandler creates a new digest handler
func NewDigestHandler(dispatcher DigestDispatcher, cookieName string) *DigestHandler {
	return &DigestHandler{dispatcher: dispatcher, cookieName: cookieName}
}

// SendMailRequest is the sendmail request body
type SendMailRequest struct {
	Period     string `json:"period"`
	DateString string `json:"dateString,omitempty"`
}

// HandleSendMail authenticates the caller, then runs one digest.
func (h *DigestHandler) HandleSendMail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var sessionToken string
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		sessionToken = cookie.Value
	}
	bearer := auth.BearerToken(r.Header.Get("Authorization"))

	caller, err := h.dispatcher.Authenticate(r.Context(), bearer, sessionToken)
	if err != nil {
		writeError(w, "sendmail", err)
		return
	}

	var req SendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding sendmail request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), caller, digest.Request{
		Period:     req.Period,
		DateString: req.DateString,
	})
	if err != nil {
		writeError(w, "sendmail", err)
		return
	}

	if result.Failed() {
		for _, f := range result.Failures {
			log.Printf("sendmail: digest for %s failed: %v", f.Email, f.Err)
		}
		http.Error(w, messages.InternalServerError, http.StatusInternalServerError)
		return
	}

	writeText(w, http.StatusOK, messages.OK)
}
