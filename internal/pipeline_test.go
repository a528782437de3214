package internal_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/pkg/crypto"
	"github.com/lifeforge/forge/pkg/federation"
	"github.com/lifeforge/forge/pkg/jwt"
	"github.com/lifeforge/forge/pkg/media"
	"github.com/lifeforge/forge/pkg/schema"
	"github.com/lifeforge/forge/pkg/store"
)

const testJWTSecret = "pipeline-test-secret-32-bytes-min!!!"

// testModule is a static federation.Module for mounting controllers
// in tests.
type testModule struct {
	routes      map[string]any
	manifest    federation.Manifest
	collections []schema.Collection
}

func (m *testModule) Manifest() federation.Manifest    { return m.manifest }
func (m *testModule) Collections() []schema.Collection { return m.collections }
func (m *testModule) Routes() map[string]any           { return m.routes }

// entriesShape is the input shape of the test module's create route.
var entriesShape = schema.Shape{
	"title":      {Type: schema.FieldTypeText, Required: true},
	"thoughts":   {Type: schema.FieldTypeText},
	"difficulty": {Type: schema.FieldTypeSelect, Values: []string{"easy", "medium", "hard"}},
}

// achievementsModule builds the canonical test module: an entries
// collection with list/create/update routes.
func achievementsModule(routes map[string]any) *testModule {
	return &testModule{
		manifest: federation.Manifest{
			Name:        "achievements",
			DisplayName: "Achievements",
			Version:     "1.0.0",
			Category:    "lifestyle",
		},
		collections: []schema.Collection{{
			Name:   "entries",
			Fields: entriesShape,
		}},
		routes: routes,
	}
}

type testEnv struct {
	app   *internal.App
	store *store.Memory
	jwt   *jwt.Service
}

func newTestEnv(t *testing.T, routes map[string]any, extra ...internal.Option) *testEnv {
	t.Helper()

	mem := store.NewMemory(nil)
	tokens, err := jwt.New(testJWTSecret)
	require.NoError(t, err)

	opts := append([]internal.Option{
		internal.WithStore(mem),
		internal.WithJWT(tokens),
		internal.WithModules(achievementsModule(routes)),
	}, extra...)

	app, err := internal.New(opts...)
	require.NoError(t, err)

	return &testEnv{app: app, store: mem, jwt: tokens}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.jwt.Generate(userID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.app.Router().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) internal.Envelope {
	t.Helper()
	var env internal.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPipelineAuthentication(t *testing.T) {
	t.Parallel()

	t.Run("missing token short-circuits before the callback", func(t *testing.T) {
		t.Parallel()

		var called bool
		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().
					NoEncryption().
					Callback(func(c internal.Context) (any, error) {
						called = true
						return nil, nil
					}),
			},
		})

		w := env.do(httptest.NewRequest(http.MethodGet, "/achievements/entries/list", nil))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.False(t, called)

		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateError, out.State)
		require.Equal(t, "missing bearer token", out.Message)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().
					NoEncryption().
					Callback(noopCallback),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/list", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := env.do(req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token attaches the user", func(t *testing.T) {
		t.Parallel()

		var userID string
		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().
					NoEncryption().
					Callback(func(c internal.Context) (any, error) {
						userID = c.UserID()
						return nil, nil
					}),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/list", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-9"))
		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "user-9", userID)
	})

	t.Run("public route serves anonymous requests", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"ping": internal.NewForge("achievements").Query().
				NoAuth().
				NoEncryption().
				Callback(func(c internal.Context) (any, error) {
					return map[string]any{"authenticated": c.IsAuthenticated()}, nil
				}),
		})

		w := env.do(httptest.NewRequest(http.MethodGet, "/achievements/ping", nil))

		require.Equal(t, http.StatusOK, w.Code)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateSuccess, out.State)
	})

	t.Run("public route still attaches a valid token's user", func(t *testing.T) {
		t.Parallel()

		var userID string
		env := newTestEnv(t, map[string]any{
			"ping": internal.NewForge("achievements").Query().
				NoAuth().
				NoEncryption().
				Callback(func(c internal.Context) (any, error) {
					userID = c.UserID()
					return nil, nil
				}),
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/ping", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-3"))
		env.do(req)

		require.Equal(t, "user-3", userID)
	})
}

func TestPipelineCreate(t *testing.T) {
	t.Parallel()

	newCreateEnv := func(t *testing.T) *testEnv {
		return newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"create": internal.NewForge("achievements").Mutation().
					NoEncryption().
					Input(internal.Input{Body: entriesShape}).
					StatusCode(http.StatusCreated).
					Callback(func(c internal.Context) (any, error) {
						return c.Store().Collection("entries").
							Create().
							Data(c.Body()).
							Execute(c)
					}),
			},
		})
	}

	t.Run("valid body creates a record and returns 201", func(t *testing.T) {
		t.Parallel()

		env := newCreateEnv(t)
		body := `{"title":"Ran a marathon","difficulty":"hard"}`
		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/create", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusCreated, w.Code)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateSuccess, out.State)

		data, ok := out.Data.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "Ran a marathon", data["title"])
		require.NotEmpty(t, data["id"])

		// Record landed in the namespaced collection.
		recs, err := env.store.GetFullList(req.Context(), "achievements__entries", store.Query{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
	})

	t.Run("missing required field fails validation with a field error", func(t *testing.T) {
		t.Parallel()

		env := newCreateEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/create", strings.NewReader(`{"thoughts":"no title"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateError, out.State)
		require.Contains(t, out.Errors, "title")
	})

	t.Run("invalid select value fails validation", func(t *testing.T) {
		t.Parallel()

		env := newCreateEnv(t)
		body := `{"title":"x","difficulty":"impossible"}`
		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/create", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		out := decodeEnvelope(t, w)
		require.Contains(t, out.Errors, "difficulty")
	})

	t.Run("text fields are sanitized before storage", func(t *testing.T) {
		t.Parallel()

		env := newCreateEnv(t)
		body := `{"title":"Ran a marathon","thoughts":"<p>so <script>alert(1)</script>tired</p>"}`
		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/create", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusCreated, w.Code)
		out := decodeEnvelope(t, w)
		data, ok := out.Data.(map[string]any)
		require.True(t, ok)
		require.NotContains(t, data["thoughts"], "<script>")
		require.Contains(t, data["thoughts"], "<p>")
	})
}

func TestPipelineExistenceChecks(t *testing.T) {
	t.Parallel()

	updateRoutes := func(spy *bool) map[string]any {
		return map[string]any{
			"entries": internal.Tree{
				"update": internal.NewForge("achievements").Mutation().
					Method(http.MethodPatch).
					NoEncryption().
					Input(internal.Input{
						Body:  entriesShape,
						Query: schema.Shape{"id": {Type: schema.FieldTypeText, Required: true}},
					}).
					ExistenceCheck(internal.ExistenceInQuery, map[string]string{"id": "entries"}).
					Callback(func(c internal.Context) (any, error) {
						if spy != nil {
							*spy = true
						}
						return c.Store().Collection("entries").
							Update().
							ID(c.QueryString("id")).
							Data(c.Body()).
							Execute(c)
					}),
			},
		}
	}

	t.Run("dangling reference fails with the resolved collection key", func(t *testing.T) {
		t.Parallel()

		var called bool
		env := newTestEnv(t, updateRoutes(&called))

		req := httptest.NewRequest(http.MethodPatch,
			"/achievements/entries/update?id=nope", strings.NewReader(`{"title":"t"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.False(t, called)

		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateError, out.State)
		require.Contains(t, out.Message, "achievements__entries")
		require.Contains(t, out.Errors, "id")
	})

	t.Run("existing reference passes through to the callback", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, updateRoutes(nil))

		rec, err := env.store.Create(t.Context(), "achievements__entries", map[string]any{
			"title": "original",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPatch,
			"/achievements/entries/update?id="+rec.ID(), strings.NewReader(`{"title":"updated"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateSuccess, out.State)

		got, err := env.store.GetOne(req.Context(), "achievements__entries", rec.ID(), store.Query{})
		require.NoError(t, err)
		require.Equal(t, "updated", got.GetString("title"))
	})

	t.Run("missing non-optional reference is rejected", func(t *testing.T) {
		t.Parallel()

		var called bool
		env := newTestEnv(t, updateRoutes(&called))

		req := httptest.NewRequest(http.MethodPatch,
			"/achievements/entries/update", strings.NewReader(`{"title":"t"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.False(t, called)
	})

	t.Run("optional reference is skipped when absent", func(t *testing.T) {
		t.Parallel()

		var called bool
		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"create": internal.NewForge("achievements").Mutation().
					NoEncryption().
					Input(internal.Input{Body: schema.Shape{
						"title":  {Type: schema.FieldTypeText, Required: true},
						"parent": {Type: schema.FieldTypeText},
					}}).
					ExistenceCheck(internal.ExistenceInBody, map[string]string{"parent": "[entries]"}).
					Callback(func(c internal.Context) (any, error) {
						called = true
						return nil, nil
					}),
			},
		})

		req := httptest.NewRequest(http.MethodPost,
			"/achievements/entries/create", strings.NewReader(`{"title":"standalone"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, called)
	})

	t.Run("check against an unknown collection fails at mount", func(t *testing.T) {
		t.Parallel()

		mem := store.NewMemory(nil)
		_, err := internal.New(
			internal.WithStore(mem),
			internal.WithModules(achievementsModule(map[string]any{
				"entries": internal.Tree{
					"update": internal.NewForge("achievements").Mutation().
						NoEncryption().
						Input(internal.Input{Body: schema.Shape{
							"ref": {Type: schema.FieldTypeText},
						}}).
						ExistenceCheck(internal.ExistenceInBody, map[string]string{"ref": "ghosts"}).
						Callback(noopCallback),
				},
			})),
		)
		require.Error(t, err)
		require.Contains(t, err.Error(), "achievements__ghosts")
	})
}

func TestPipelineQueryCoercion(t *testing.T) {
	t.Parallel()

	var got map[string]any
	env := newTestEnv(t, map[string]any{
		"entries": internal.Tree{
			"list": internal.NewForge("achievements").Query().
				NoEncryption().
				Input(internal.Input{Query: schema.Shape{
					"page":     {Type: schema.FieldTypeNumber},
					"archived": {Type: schema.FieldTypeBool},
				}}).
				Callback(func(c internal.Context) (any, error) {
					got = c.Query()
					return nil, nil
				}),
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/achievements/entries/list?page=3&archived=true&q=free+text", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))

	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(3), got["page"])
	require.Equal(t, true, got["archived"])
	// Undeclared fields stay raw strings.
	require.Equal(t, "free text", got["q"])
}

func TestPipelineResponseModes(t *testing.T) {
	t.Parallel()

	t.Run("204 status code sends no body", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"delete": internal.NewForge("achievements").Mutation().
					Method(http.MethodDelete).
					NoEncryption().
					StatusCode(http.StatusNoContent).
					Callback(noopCallback),
			},
		})

		req := httptest.NewRequest(http.MethodDelete, "/achievements/entries/delete", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Empty(t, w.Body.String())
	})

	t.Run("no default response leaves writing to the callback", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"export": internal.NewForge("achievements").Query().
				NoEncryption().
				NoDefaultResponse().
				Callback(func(c internal.Context) (any, error) {
					return nil, c.String(http.StatusOK, "raw payload")
				}),
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/export", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "raw payload", w.Body.String())
	})

	t.Run("no default response without a write falls back to 204", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"export": internal.NewForge("achievements").Query().
				NoEncryption().
				NoDefaultResponse().
				Callback(noopCallback),
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/export", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("callback errors map onto the error envelope", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"get": internal.NewForge("achievements").Query().
					NoEncryption().
					Callback(func(c internal.Context) (any, error) {
						return nil, store.ErrNotFound
					}),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/get", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusNotFound, w.Code)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateError, out.State)
	})
}

func TestPipelineEncryption(t *testing.T) {
	t.Parallel()

	newEncryptedEnv := func(t *testing.T, routes map[string]any) (*testEnv, *crypto.KeyPair) {
		keys, err := crypto.GenerateKeyPair()
		require.NoError(t, err)
		env := newTestEnv(t, routes, internal.WithKeyPair(keys))
		return env, keys
	}

	wrapKey := func(t *testing.T, keys *crypto.KeyPair) ([]byte, string) {
		t.Helper()
		sessionKey, err := crypto.NewSessionKey()
		require.NoError(t, err)
		public, err := keys.PublicPEM()
		require.NoError(t, err)
		wrapped, err := crypto.WrapSessionKey(public, sessionKey)
		require.NoError(t, err)
		return sessionKey, wrapped
	}

	t.Run("missing session key header is rejected", func(t *testing.T) {
		t.Parallel()

		env, _ := newEncryptedEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().Callback(noopCallback),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/list", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		out := decodeEnvelope(t, w)
		require.Contains(t, out.Message, internal.SessionKeyHeader)
	})

	t.Run("encrypted mutation round trip", func(t *testing.T) {
		t.Parallel()

		env, keys := newEncryptedEnv(t, map[string]any{
			"entries": internal.Tree{
				"create": internal.NewForge("achievements").Mutation().
					Input(internal.Input{Body: entriesShape}).
					StatusCode(http.StatusCreated).
					Callback(func(c internal.Context) (any, error) {
						return map[string]any{"title": c.BodyString("title")}, nil
					}),
			},
		})

		sessionKey, wrapped := wrapKey(t, keys)

		plaintext, err := json.Marshal(map[string]any{"title": "secret entry"})
		require.NoError(t, err)
		blob, err := crypto.Encrypt(sessionKey, plaintext)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost,
			"/achievements/entries/create", strings.NewReader(blob))
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		req.Header.Set(internal.SessionKeyHeader, wrapped)

		w := env.do(req)
		require.Equal(t, http.StatusCreated, w.Code)

		// The response body is an encrypted envelope.
		decrypted, err := crypto.Decrypt(sessionKey, strings.TrimSpace(w.Body.String()))
		require.NoError(t, err)

		var out internal.Envelope
		require.NoError(t, json.Unmarshal(decrypted, &out))
		require.Equal(t, internal.StateSuccess, out.State)

		data, ok := out.Data.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "secret entry", data["title"])
	})

	t.Run("encrypted GET reads the payload query blob", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		env, keys := newEncryptedEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().
					Input(internal.Input{Query: schema.Shape{
						"page": {Type: schema.FieldTypeNumber},
					}}).
					Callback(func(c internal.Context) (any, error) {
						got = c.Query()
						return nil, nil
					}),
			},
		})

		sessionKey, wrapped := wrapKey(t, keys)

		plaintext, err := json.Marshal(map[string]any{"page": 2})
		require.NoError(t, err)
		blob, err := crypto.Encrypt(sessionKey, plaintext)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet,
			"/achievements/entries/list?payload="+neturl.QueryEscape(blob), nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		req.Header.Set(internal.SessionKeyHeader, wrapped)

		w := env.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, float64(2), got["page"])
	})

	t.Run("tampered session key is rejected", func(t *testing.T) {
		t.Parallel()

		env, _ := newEncryptedEnv(t, map[string]any{
			"entries": internal.Tree{
				"list": internal.NewForge("achievements").Query().Callback(noopCallback),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/list", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		req.Header.Set(internal.SessionKeyHeader, "bm90LWEta2V5")
		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPipelineMedia(t *testing.T) {
	t.Parallel()

	newUploadEnv := func(t *testing.T, cb internal.CallbackFunc) *testEnv {
		return newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"upload": internal.NewForge("achievements").Mutation().
					NoEncryption().
					Input(internal.Input{Body: schema.Shape{
						"title": {Type: schema.FieldTypeText, Required: true},
					}}).
					Media(map[string]media.Config{"attachment": {}}).
					Callback(cb),
			},
		}, internal.WithScratchDir(t.TempDir()))
	}

	t.Run("multipart upload reaches the callback with files", func(t *testing.T) {
		t.Parallel()

		var (
			files []media.File
			title string
			saved []byte
		)
		env := newUploadEnv(t, func(c internal.Context) (any, error) {
			files = c.Files()
			title = c.BodyString("title")
			f, ok := c.File("attachment")
			if !ok {
				return nil, internal.ErrBadRequest("no attachment")
			}
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return nil, err
			}
			saved = data
			return nil, nil
		})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "With attachment"))
		fw, err := mw.CreateFormFile("attachment", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, files, 1)
		require.Equal(t, "attachment", files[0].Field)
		require.Equal(t, "photo.png", files[0].Name)
		require.Equal(t, "With attachment", title)
		require.Equal(t, []byte("png-bytes"), saved)

		// The scratch directory is reclaimed once the request finishes.
		_, err = os.Stat(files[0].Path)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("json request against a required media field is rejected", func(t *testing.T) {
		t.Parallel()

		var called bool
		env := newUploadEnv(t, func(c internal.Context) (any, error) {
			called = true
			return nil, nil
		})

		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/upload",
			strings.NewReader(`{"title":"no file"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.False(t, called)
		out := decodeEnvelope(t, w)
		require.Equal(t, internal.StateError, out.State)
		require.Contains(t, out.Message, "multipart request required")
	})

	t.Run("optional media field accepts a json body", func(t *testing.T) {
		t.Parallel()

		var files []media.File
		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"upload": internal.NewForge("achievements").Mutation().
					NoEncryption().
					Media(map[string]media.Config{"attachment": {Optional: true}}).
					Callback(func(c internal.Context) (any, error) {
						files = c.Files()
						return nil, nil
					}),
			},
		}, internal.WithScratchDir(t.TempDir()))

		req := httptest.NewRequest(http.MethodPost, "/achievements/entries/upload",
			strings.NewReader(`{"title":"no file"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, files)
	})

	t.Run("downloadable route streams raw bytes", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, map[string]any{
			"entries": internal.Tree{
				"export": internal.NewForge("achievements").Query().
					NoEncryption().
					Downloadable().
					Callback(func(c internal.Context) (any, error) {
						return nil, c.Stream(http.StatusOK, "text/csv",
							strings.NewReader("title,score\nRun 5k,10\n"))
					}),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/achievements/entries/export", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user-1"))
		w := env.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		require.Equal(t, "title,score\nRun 5k,10\n", w.Body.String())
	})
}
