package agent

import "strings"

// Endpoint paths exposed by the assistant backend
const (
	PathStatus    = "/api/status"
	PathLogin     = "/auth/login"
	PathLogout    = "/auth/logout"
	PathEmails    = "/api/emails"
	PathAgent     = "/api/agent"
	PathGeminiKey = "/api/settings/gemini"
)

// Response types reported by the agent endpoint
const (
	ResponseTypeOK    = "response"
	ResponseTypeError = "error"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email"`
	HasGeminiKey  bool   `json:"has_gemini_key"`
}

// LoginRequest carries the mailbox credentials (an app password, not the account password)
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailSummary is one row of the inbox listing
type EmailSummary struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Subject     string `json:"subject"`
	BodySnippet string `json:"body_snippet"`
	Date        string `json:"date,omitempty"`
	IsUnread    bool   `json:"is_unread,omitempty"`
}

// EmailsResponse is the body of GET /api/emails
type EmailsResponse struct {
	Emails []EmailSummary `json:"emails"`
}

// CommandRequest is a natural-language command for the agent
type CommandRequest struct {
	Command   string `json:"command"`
	Model     string `json:"model,omitempty"`
	GeminiKey string `json:"gemini_key,omitempty"`
}

// CommandResponse is the agent reply. Type is "error" for failures the
// backend reports inside a successful HTTP response.
type CommandResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// IsError reports whether the backend flagged the reply as a failure
func (r *CommandResponse) IsError() bool {
	return r != nil && strings.EqualFold(strings.TrimSpace(r.Type), ResponseTypeError)
}

type geminiKeyRequest struct {
	Key string `json:"key"`
}

type errorBody struct {
	Detail any `json:"detail"`
}
