package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lifeforge/forge/pkg/media"
	"github.com/lifeforge/forge/pkg/query"
	"github.com/lifeforge/forge/pkg/sanitizer"
	"github.com/lifeforge/forge/pkg/schema"
)

// SessionKeyHeader carries the RSA-wrapped AES session key on
// encrypted routes.
const SessionKeyHeader = "x-lifeforge-key"

// encryptedQueryParam carries the encrypted query payload on
// encrypted GET routes.
const encryptedQueryParam = "payload"

// handler builds the runtime executor for a mounted controller.
// Stages run in strict order and any failure short-circuits to the
// error envelope: auth, key exchange, payload decrypt, media/body
// split, schema validation, existence checks, callback, response
// encoding.
func (ct *Controller) handler(app *App) HandlerFunc {
	return func(c Context) error {
		rc, ok := c.(*requestContext)
		if !ok {
			return ErrInternalServer("unsupported context implementation")
		}

		// Stage 1: auth. Public routes still get a store handle so
		// callbacks can act on behalf of the anonymous identity.
		if err := ct.authenticate(app, rc); err != nil {
			return err
		}
		rc.store = query.NewService(app.store, ct.moduleID)

		// Stages 2-3: session-key exchange and payload decryption.
		if ct.Encrypted() {
			if err := ct.exchangeKey(app, rc); err != nil {
				return err
			}
		}

		// Stage 4: media/body split. Uploaded files land in a scratch
		// directory owned by this request alone; cleanup never touches
		// other requests' files.
		var scratch *media.Scratch
		if len(ct.mediaFields) > 0 {
			var err error
			scratch, err = media.NewScratch(app.scratchDir)
			if err != nil {
				return ErrInternalServer("failed to allocate upload scratch space", WithError(err))
			}
			defer scratch.Cleanup() //nolint:errcheck
		}
		if err := ct.readInputs(rc, scratch); err != nil {
			return err
		}

		// Stage 5: schema validation, field-keyed failures.
		if ct.bodyShape != nil {
			if errs := ct.bodyShape.Validate(rc.body); len(errs) > 0 {
				return ErrBadRequest("invalid request body", WithFields(errs))
			}
			sanitizeTextFields(ct.bodyShape, rc.body)
		}
		if ct.queryShape != nil {
			if errs := ct.queryShape.Validate(rc.queryData); len(errs) > 0 {
				return ErrBadRequest("invalid query parameters", WithFields(errs))
			}
		}

		// Stage 6: existence checks.
		if err := ct.runExistenceChecks(app, rc); err != nil {
			return err
		}

		// Stage 7: callback.
		out, err := ct.callback(rc)
		if err != nil {
			return err
		}

		// Stage 8: response encoding.
		if ct.noDefaultResponse || ct.downloadable {
			if !rc.Written() {
				return rc.NoContent(http.StatusNoContent)
			}
			return nil
		}
		code := ct.successCode()
		if code == http.StatusNoContent {
			return rc.NoContent(code)
		}
		return rc.Success(code, out)
	}
}

// authenticate resolves the bearer token. Required on protected
// routes; on public routes a valid token still attaches the user.
func (ct *Controller) authenticate(app *App, rc *requestContext) error {
	token := bearerToken(rc.request)
	if token == "" {
		if ct.noAuth {
			return nil
		}
		return ErrUnauthorized("missing bearer token")
	}
	if app.jwtService == nil {
		if ct.noAuth {
			return nil
		}
		return ErrUnauthorized("authentication is not configured")
	}
	claims, err := app.jwtService.Parse(token)
	if err != nil {
		if ct.noAuth {
			return nil
		}
		return ErrUnauthorized("invalid bearer token", WithError(err))
	}
	rc.userID = claims.UserID
	return nil
}

// exchangeKey unwraps the client's AES session key with the server's
// RSA private key.
func (ct *Controller) exchangeKey(app *App, rc *requestContext) error {
	if app.keyPair == nil {
		return ErrInternalServer("encryption is not configured")
	}
	wrapped := rc.request.Header.Get(SessionKeyHeader)
	if wrapped == "" {
		return ErrBadRequest("missing " + SessionKeyHeader + " header")
	}
	key, err := app.keyPair.UnwrapSessionKey(wrapped)
	if err != nil {
		return ErrBadRequest("invalid session key", WithError(err))
	}
	rc.sessionKey = key
	return nil
}

// readInputs populates the context's body, query, and file fields.
func (ct *Controller) readInputs(rc *requestContext, scratch *media.Scratch) error {
	queryData, err := ct.readQuery(rc)
	if err != nil {
		return err
	}
	rc.queryData = queryData

	if rc.request.Method == http.MethodGet {
		rc.body = map[string]any{}
		return nil
	}

	// Encrypted routes never declare media fields (enforced at mount),
	// so the multipart path below stays reachable for upload routes.
	if ct.Encrypted() {
		body, err := ct.readEncryptedBody(rc)
		if err != nil {
			return err
		}
		rc.body = body
		return nil
	}

	body, files, err := media.Split(rc.request, ct.mediaFields, scratch)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrMissingFile),
			errors.Is(err, media.ErrMultipleFiles),
			errors.Is(err, media.ErrNotMultipart),
			errors.Is(err, media.ErrBodyTooLarge):
			return ErrBadRequest(err.Error())
		default:
			return ErrBadRequest("malformed request body", WithError(err))
		}
	}
	rc.body = body
	rc.files = files
	return nil
}

// readQuery decodes query parameters, decrypting the payload blob on
// encrypted GET routes and coercing values to their declared types.
func (ct *Controller) readQuery(rc *requestContext) (map[string]any, error) {
	if ct.Encrypted() && rc.request.Method == http.MethodGet {
		blob := rc.request.URL.Query().Get(encryptedQueryParam)
		if blob == "" {
			return map[string]any{}, nil
		}
		plain, err := rc.Decrypt(blob)
		if err != nil {
			return nil, ErrBadRequest("failed to decrypt query payload", WithError(err))
		}
		var data map[string]any
		if err := json.Unmarshal(plain, &data); err != nil {
			return nil, ErrBadRequest("query payload is not a JSON object", WithError(err))
		}
		return data, nil
	}
	return coerceQuery(ct.queryShape, rc.request.URL.Query()), nil
}

// readEncryptedBody decrypts the request body with the session key.
func (ct *Controller) readEncryptedBody(rc *requestContext) (map[string]any, error) {
	raw, err := io.ReadAll(rc.request.Body)
	if err != nil {
		return nil, ErrBadRequest("failed to read request body", WithError(err))
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	plain, err := rc.Decrypt(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, ErrBadRequest("failed to decrypt request body", WithError(err))
	}
	var body map[string]any
	if err := json.Unmarshal(plain, &body); err != nil {
		return nil, ErrBadRequest("request body is not a JSON object", WithError(err))
	}
	return body, nil
}

// runExistenceChecks verifies that referenced record IDs exist.
// Array values are checked per element. Optional checks are skipped
// when the field is absent or empty.
func (ct *Controller) runExistenceChecks(app *App, rc *requestContext) error {
	for _, check := range ct.checks {
		source := rc.body
		if check.In == ExistenceInQuery {
			source = rc.queryData
		}

		value, present := source[check.Field]
		if !present || isFalsy(value) {
			if check.Optional {
				continue
			}
			return ErrBadRequest(
				fmt.Sprintf("field %q must reference a record in %q", check.Field, check.Collection),
				WithFields(map[string]string{check.Field: "required reference is missing"}),
			)
		}

		key := schema.ResolveCollection(check.Collection, ct.moduleID)
		for _, id := range referenceIDs(value) {
			exists, err := app.store.Exists(rc.Context(), key, id)
			if err != nil {
				return ErrInternalServer("existence check failed", WithError(err))
			}
			if !exists {
				return ErrBadRequest(
					fmt.Sprintf("field %q references a record %q that does not exist in collection %q", check.Field, id, key),
					WithFields(map[string]string{check.Field: "referenced record not found in " + key}),
				)
			}
		}
	}
	return nil
}

// referenceIDs normalizes a checked value into a list of record IDs.
func referenceIDs(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			} else {
				ids = append(ids, fmt.Sprint(item))
			}
		}
		return ids
	default:
		return []string{fmt.Sprint(v)}
	}
}

// isFalsy mirrors the skip condition of optional existence checks.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

// sanitizeTextFields strips dangerous markup from declared text fields
// before the callback sees them. Basic formatting tags survive; scripts,
// event handlers, and javascript: URLs do not.
func sanitizeTextFields(shape schema.Shape, body map[string]any) {
	for name, field := range shape {
		if field.Type != schema.FieldTypeText {
			continue
		}
		switch v := body[name].(type) {
		case string:
			body[name] = sanitizer.SanitizeHTML(v)
		case []any:
			for i, item := range v {
				if s, ok := item.(string); ok {
					v[i] = sanitizer.SanitizeHTML(s)
				}
			}
		}
	}
}

// coerceQuery converts raw query strings to their declared types.
// Undeclared fields stay strings; validation decides their fate.
func coerceQuery(shape schema.Shape, values url.Values) map[string]any {
	data := make(map[string]any, len(values))
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw := vals[0]
		field, declared := shape[name]
		if !declared {
			data[name] = raw
			continue
		}
		switch field.Type {
		case schema.FieldTypeNumber:
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				data[name] = n
			} else {
				data[name] = raw
			}
		case schema.FieldTypeBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				data[name] = b
			} else {
				data[name] = raw
			}
		default:
			if field.Multiple && len(vals) > 1 {
				items := make([]any, len(vals))
				for i, v := range vals {
					items[i] = v
				}
				data[name] = items
				continue
			}
			data[name] = raw
		}
	}
	return data
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
