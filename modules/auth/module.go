// Package auth is the core login module. It offers two flows:
//
//   - OTP login: an email challenge (request → verify) issuing a
//     bearer token for the matching user record.
//   - QR login: a signed-in device approves a pending session that
//     another device registered and polls.
//
// User records live in the shared users collection.
package auth

import (
	"errors"
	"net/http"

	"github.com/lifeforge/forge"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/otp"
	"github.com/lifeforge/forge/pkg/query"
	"github.com/lifeforge/forge/pkg/schema"
	"github.com/lifeforge/forge/pkg/session"
)

const moduleID = "auth"

// Module implements the login flows.
type Module struct {
	tokens   *jwt.Service
	sessions session.Store
}

// New creates the module. sessions backs the QR-login flow; the OTP
// service is taken from the request context (app-level option).
func New(tokens *jwt.Service, sessions session.Store) *Module {
	return &Module{tokens: tokens, sessions: sessions}
}

// Manifest describes the module to the federation layer.
func (m *Module) Manifest() federation.Manifest {
	return federation.Manifest{
		Name:        moduleID,
		DisplayName: "Auth",
		Version:     "1.0.0",
		Description: "OTP and QR-code login.",
		Icon:        "tabler:lock",
		Category:    "system",
		IsInternal:  true,
	}
}

// Collections returns nil: the module reads the shared users
// collection, which is not module-owned.
func (m *Module) Collections() []schema.Collection {
	return nil
}

// Routes returns the module's controller tree.
func (m *Module) Routes() map[string]any {
	return map[string]any{
		"otp": forge.Tree{
			"request": forge.NewForge(moduleID).Mutation().
				NoAuth().
				Description("Send a one-time login code to the given email.").
				Input(forge.Input{Body: schema.Shape{
					"email": {Type: schema.FieldTypeEmail, Required: true},
				}}).
				Callback(m.otpRequest),
			"verify": forge.NewForge(moduleID).Mutation().
				NoAuth().
				Description("Exchange a one-time code for a bearer token.").
				Input(forge.Input{Body: schema.Shape{
					"email": {Type: schema.FieldTypeEmail, Required: true},
					"code":  {Type: schema.FieldTypeText, Required: true},
				}}).
				Callback(m.otpVerify),
		},
		"qr": forge.Tree{
			"register": forge.NewForge(moduleID).Mutation().
				NoAuth().
				Description("Register a pending QR-login session for this device.").
				Callback(m.qrRegister),
			"approve": forge.NewForge(moduleID).Mutation().
				Description("Approve a pending QR-login session as the signed-in user.").
				Input(forge.Input{Body: schema.Shape{
					"id": {Type: schema.FieldTypeText, Required: true},
				}}).
				Callback(m.qrApprove),
			"poll": forge.NewForge(moduleID).Query().
				NoAuth().
				Description("Poll a pending QR-login session for approval.").
				Input(forge.Input{Query: schema.Shape{
					"id": {Type: schema.FieldTypeText, Required: true},
				}}).
				Callback(m.qrPoll),
		},
	}
}

func (m *Module) otpRequest(c forge.Context) (any, error) {
	svc, err := c.OTP()
	if err != nil {
		return nil, c.Error(http.StatusServiceUnavailable, "login by code is not available")
	}
	if err := svc.Send(c, c.BodyString("email")); err != nil {
		if errors.Is(err, otp.ErrNotConfigured) {
			return nil, c.Error(http.StatusServiceUnavailable, "login by code is not available")
		}
		c.LogError("failed to send login code", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to send login code")
	}
	return map[string]any{"status": "sent"}, nil
}

func (m *Module) otpVerify(c forge.Context) (any, error) {
	svc, err := c.OTP()
	if err != nil {
		return nil, c.Error(http.StatusServiceUnavailable, "login by code is not available")
	}

	email := c.BodyString("email")
	ok, err := svc.Verify(c, email, c.BodyString("code"))
	if err != nil {
		c.LogError("failed to verify login code", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to verify login code")
	}
	if !ok {
		return nil, c.Error(http.StatusUnauthorized, "invalid email or code")
	}

	user, err := c.Store().Collection("users").
		GetFirstListItem().
		Filter(query.Where{Field: "email", Op: "=", Value: email}).
		Execute(c)
	if err != nil {
		// A valid code for an unknown email reveals nothing extra.
		return nil, c.Error(http.StatusUnauthorized, "invalid email or code")
	}

	token, err := m.tokens.Generate(user.ID())
	if err != nil {
		c.LogError("failed to sign token", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to sign token")
	}
	return map[string]any{"token": token, "userId": user.ID()}, nil
}

func (m *Module) qrRegister(c forge.Context) (any, error) {
	pending, err := m.sessions.Register(c, c.Header("User-Agent"), c.Request().RemoteAddr)
	if err != nil {
		c.LogError("failed to register pending session", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to register login session")
	}
	return map[string]any{
		"id":        pending.ID,
		"expiresAt": pending.ExpiresAt,
	}, nil
}

func (m *Module) qrApprove(c forge.Context) (any, error) {
	id := c.BodyString("id")

	token, err := m.tokens.Generate(c.UserID(), jwt.WithSessionID(id))
	if err != nil {
		c.LogError("failed to sign token", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to sign token")
	}

	switch err := m.sessions.Approve(c, id, c.UserID(), token); {
	case errors.Is(err, session.ErrNotFound):
		return nil, c.Error(http.StatusBadRequest, "unknown login session")
	case errors.Is(err, session.ErrExpired):
		return nil, c.Error(http.StatusBadRequest, "login session expired")
	case errors.Is(err, session.ErrAlreadyResolved):
		return nil, c.Error(http.StatusBadRequest, "login session already approved")
	case err != nil:
		c.LogError("failed to approve pending session", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to approve login session")
	}
	return map[string]any{"status": string(session.StatusApproved)}, nil
}

func (m *Module) qrPoll(c forge.Context) (any, error) {
	pending, err := m.sessions.Get(c, c.QueryString("id"))
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil, c.Error(http.StatusBadRequest, "unknown login session")
	case err != nil:
		c.LogError("failed to load pending session", "error", err)
		return nil, c.Error(http.StatusInternalServerError, "failed to load login session")
	}

	out := map[string]any{"status": string(pending.Status)}
	if pending.Status == session.StatusApproved {
		out["token"] = pending.Token
		out["userId"] = pending.UserID
		// One-shot: the token is handed out exactly once.
		if err := m.sessions.Delete(c, pending.ID); err != nil {
			c.LogError("failed to delete pending session", "error", err)
		}
	}
	return out, nil
}
