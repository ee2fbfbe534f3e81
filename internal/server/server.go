// Package server exposes the TaskIQ HTTP API: auth, task CRUD, dependency
// edges, the scoring endpoints under /ai, and the persisted score reads.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskiq/internal/domain"
	"taskiq/internal/engine"
	"taskiq/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"bad_request"`
	Message string         `json:"message" example:"title is required"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the TaskIQ API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	// Token issuance and validation share the engine's time source.
	authCfg := cfg.Auth
	if authCfg.Now == nil {
		authCfg.Now = cfg.Engine.Now
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, authCfg, cfg.Engine.Repo))
	hcfg := huma.DefaultConfig("TaskIQ API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerStatus(group, cfg.Engine)
	registerAuth(group, cfg.Engine, authCfg)
	registerMe(group, cfg.Engine)
	registerAPIKeys(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerDependencies(group, cfg.Engine)
	registerScoring(group, cfg.Engine)
	registerScores(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	startWebhookDispatcher(cfg.Engine)

	return router, nil
}

func bodyBytes(ctx context.Context) []byte {
	b, _ := ctx.Value(bodyBytesKey{}).([]byte)
	return b
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrInvalidCredentials) {
		return newAPIError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "already"):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case strings.Contains(lowered, "cycle"):
		return newAPIError(http.StatusConflict, "dependency_cycle", msg, nil)
	case strings.Contains(lowered, "not found"):
		return newAPIError(http.StatusNotFound, "not_found", msg, nil)
	case strings.Contains(lowered, "invalid"),
		strings.Contains(lowered, "required"),
		strings.Contains(lowered, "must"),
		strings.Contains(lowered, "cannot"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// requireOwnedTask loads the task and confirms the principal owns it. Tasks
// belonging to other users read as not found rather than forbidden.
func requireOwnedTask(ctx context.Context, e engine.Engine, taskID, userID int64) (domain.Task, huma.StatusError) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, handleError(err)
	}
	if t.UserID != userID {
		return domain.Task{}, newAPIError(http.StatusNotFound, "not_found", "not found", nil)
	}
	return t, nil
}

// decorateTasks attaches stored priority scores and size tiers to a task page.
func decorateTasks(ctx context.Context, e engine.Engine, userID int64, tasks []domain.Task) ([]taskListItem, error) {
	items := make([]taskListItem, 0, len(tasks))
	if len(tasks) == 0 {
		return items, nil
	}
	priorities, err := e.Repo.ListPriorityScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	sizes, err := e.Repo.ListComplexityScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	scoreByTask := make(map[int64]int, len(priorities))
	for _, s := range priorities {
		scoreByTask[s.TaskID] = s.Score
	}
	tierByTask := make(map[int64]string, len(sizes))
	for _, s := range sizes {
		tierByTask[s.TaskID] = s.Tier
	}
	for _, t := range tasks {
		item := taskListItem{Task: t}
		if score, ok := scoreByTask[t.ID]; ok {
			item.PriorityScore = &score
		}
		if tier, ok := tierByTask[t.ID]; ok {
			item.TshirtSize = &tier
		}
		items = append(items, item)
	}
	return items, nil
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	oas.Components.SecuritySchemes["apiKeyAuth"] = &huma.SecurityScheme{
		Type: "apiKey",
		In:   "header",
		Name: "X-Api-Key",
	}
	security := []map[string][]string{
		{"bearerAuth": {}},
		{"apiKeyAuth": {}},
	}
	oas.Security = security
	public := map[string]bool{
		path.Join(basePath, "health"):        true,
		path.Join(basePath, "auth/register"): true,
		path.Join(basePath, "auth/login"):    true,
	}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if public[route] {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>TaskIQ API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt; or X-Api-Key.
    </p>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerStatus(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Task counts for the authenticated user",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		counts, err := e.Repo.CountTasksByStatus(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{
			"user_id":     userID,
			"task_counts": counts,
		}}, nil
	})
}

func registerAuth(api huma.API, e engine.Engine, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-user",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register user",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body RegisterRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		u, err := e.RegisterUser(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for a bearer token",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body TokenResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		u, err := e.Authenticate(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, expiresIn, err := issueToken(authCfg, u.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TokenResponse `json:"body"`
		}{Body: TokenResponse{AccessToken: token, TokenType: "bearer", ExpiresIn: expiresIn}}, nil
	})
}

func registerMe(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Authenticated user profile",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := e.Repo.GetUser(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/me",
		Summary:     "Update profile",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body UpdateProfileRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := e.UpdateProfile(ctx, userID, input.Body.Name, input.Body.Email)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-password",
		Method:      http.MethodPost,
		Path:        "/me/password",
		Summary:     "Change password",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body ChangePasswordRequest `json:"body"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.ChangePassword(ctx, userID, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerAPIKeys(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-api-key",
		Method:        http.MethodPost,
		Path:          "/api-keys",
		Summary:       "Create API key",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body CreateAPIKeyRequest `json:"body"`
	}) (*struct {
		Body APIKeyResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		// The plaintext key is returned once; only its hash is stored.
		plaintext := "tiq_" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		key := domain.APIKey{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      input.Body.Name,
			KeyHash:   repo.HashAPIKey(plaintext),
			CreatedAt: e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertAPIKey(ctx, nil, key); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body APIKeyResponse `json:"body"`
		}{Body: APIKeyResponse{ID: key.ID, Name: key.Name, Key: plaintext, CreatedAt: key.CreatedAt}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-api-keys",
		Method:      http.MethodGet,
		Path:        "/api-keys",
		Summary:     "List API keys",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []APIKeyResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		keys, err := e.Repo.ListAPIKeys(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]APIKeyResponse, 0, len(keys))
		for _, k := range keys {
			out = append(out, APIKeyResponse{ID: k.ID, Name: k.Name, CreatedAt: k.CreatedAt})
		}
		return &struct {
			Body []APIKeyResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-api-key",
		Method:      http.MethodDelete,
		Path:        "/api-keys/{key_id}",
		Summary:     "Delete API key",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		KeyID string `path:"key_id"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		keys, err := e.Repo.ListAPIKeys(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		for _, k := range keys {
			if k.ID == input.KeyID {
				if err := e.Repo.DeleteAPIKey(ctx, k.ID); err != nil {
					return nil, handleError(err)
				}
				return &struct{}{}, nil
			}
		}
		return nil, newAPIError(http.StatusNotFound, "not_found", "not found", nil)
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if input.Body.Title == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "title is required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		deadline, err := parseDeadline(input.Body.Deadline)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		opts := engine.TaskCreateOptions{
			UserID:        userID,
			Title:         input.Body.Title,
			Description:   stringOrEmpty(input.Body.Description),
			Deadline:      deadline,
			DurationHours: input.Body.EstimatedDurationHours,
			Status:        stringOrEmpty(input.Body.Status),
			ActorID:       fmt.Sprint(userID),
		}
		t, err := e.CreateTask(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Status string `query:"status"`
		Limit  int    `query:"limit" default:"50"`
		Cursor int64  `query:"cursor"`
	}) (*struct {
		Body paginatedTasks `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		limit := input.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{
			UserID:   userID,
			Status:   input.Status,
			Limit:    limit + 1,
			CursorID: input.Cursor,
		})
		if err != nil {
			return nil, handleError(err)
		}
		resp := paginatedTasks{Items: []taskListItem{}}
		if len(tasks) > limit {
			resp.NextCursor = fmt.Sprint(tasks[limit-1].ID)
			tasks = tasks[:limit]
		}
		items, err := decorateTasks(ctx, e, userID, tasks)
		if err != nil {
			return nil, handleError(err)
		}
		resp.Items = items
		return &struct {
			Body paginatedTasks `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID)
		if statusErr != nil {
			return nil, statusErr
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{task_id}",
		Summary:     "Update task",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		TaskID int64             `path:"task_id"`
		Body   UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		deadline, err := parseDeadline(input.Body.Deadline)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		t, err := e.UpdateTask(ctx, engine.TaskUpdateOptions{
			ID:            input.TaskID,
			Title:         input.Body.Title,
			Description:   input.Body.Description,
			Deadline:      deadline,
			ClearDeadline: input.Body.ClearDeadline,
			DurationHours: input.Body.EstimatedDurationHours,
			Status:        input.Body.Status,
			ActorID:       fmt.Sprint(userID),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}",
		Summary:     "Delete task",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		if err := e.DeleteTask(ctx, input.TaskID, fmt.Sprint(userID)); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerDependencies(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-dependency",
		Method:        http.MethodPost,
		Path:          "/tasks/{task_id}/dependencies",
		Summary:       "Add dependency",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		TaskID int64                   `path:"task_id"`
		Body   CreateDependencyRequest `json:"body"`
	}) (*struct {
		Body domain.TaskDependency `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		dep, err := e.AddDependency(ctx, input.TaskID, input.Body.DependsOnTaskID, fmt.Sprint(userID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.TaskDependency `json:"body"`
		}{Body: dep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-dependencies",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/dependencies",
		Summary:     "List dependencies",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct {
		Body []domain.TaskDependency `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		deps, err := e.Repo.ListDependencies(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		if deps == nil {
			deps = []domain.TaskDependency{}
		}
		return &struct {
			Body []domain.TaskDependency `json:"body"`
		}{Body: deps}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-dependency",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}/dependencies/{dependency_id}",
		Summary:     "Remove dependency",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID       int64 `path:"task_id"`
		DependencyID int64 `path:"dependency_id"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		dep, err := e.Repo.GetDependency(ctx, input.DependencyID)
		if err != nil {
			return nil, handleError(err)
		}
		if dep.TaskID != input.TaskID {
			return nil, newAPIError(http.StatusNotFound, "not_found", "not found", nil)
		}
		if err := e.RemoveDependency(ctx, input.DependencyID, fmt.Sprint(userID)); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerScoring(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "rank-tasks",
		Method:      http.MethodPost,
		Path:        "/ai/rank",
		Summary:     "Rank tasks by priority score",
		Description: "Scores each task with the deadline/duration priority formula. Results preserve input order; sorting is the caller's choice.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, input *struct {
		Body RankRequest `json:"body"`
	}) (*struct {
		Body RankResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items := make([]engine.RankItem, 0, len(input.Body.Tasks))
		for i, req := range input.Body.Tasks {
			deadline, err := parseDeadline(req.Deadline)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request",
					fmt.Sprintf("tasks[%d]: %v", i, err), nil)
			}
			items = append(items, engine.RankItem{
				TaskID:        req.TaskID,
				Title:         req.Title,
				Deadline:      deadline,
				DurationHours: req.EstimatedDurationHours,
			})
		}
		results, err := e.RankTasks(ctx, items, input.Body.Persist, userID, fmt.Sprint(userID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RankResponse `json:"body"`
		}{Body: rankResponse(input.Body.Tasks, results)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "estimate-size",
		Method:      http.MethodPost,
		Path:        "/ai/size",
		Summary:     "Estimate T-shirt size",
		Description: "Maps the task's weighted complexity factors to an XS-XL tier with a factor-by-factor rationale. Persists by default when task_id is supplied.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, input *struct {
		Body SizeRequest `json:"body"`
	}) (*struct {
		Body SizeResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		deadline, err := parseDeadline(input.Body.Deadline)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		persist := input.Body.TaskID != nil
		if input.Body.Persist != nil {
			persist = *input.Body.Persist
		}
		res, err := e.EstimateSize(ctx, engine.SizeEstimateOptions{
			TaskID:          input.Body.TaskID,
			UserID:          userID,
			Title:           input.Body.Title,
			Description:     input.Body.Description,
			DurationHours:   input.Body.EstimatedDurationHours,
			Deadline:        deadline,
			HasDependencies: input.Body.HasDependencies,
			ActorID:         fmt.Sprint(userID),
		}, persist)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SizeResponse `json:"body"`
		}{Body: sizeResponse(res)}, nil
	})
}

func registerScores(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-priority-scores",
		Method:      http.MethodGet,
		Path:        "/scores/priority",
		Summary:     "List persisted priority scores",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.PriorityScore `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		scores, err := e.Repo.ListPriorityScores(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		if scores == nil {
			scores = []domain.PriorityScore{}
		}
		return &struct {
			Body []domain.PriorityScore `json:"body"`
		}{Body: scores}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-size-estimates",
		Method:      http.MethodGet,
		Path:        "/scores/size",
		Summary:     "List persisted size estimates",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.ComplexityScore `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		scores, err := e.Repo.ListComplexityScores(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		if scores == nil {
			scores = []domain.ComplexityScore{}
		}
		return &struct {
			Body []domain.ComplexityScore `json:"body"`
		}{Body: scores}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-priority-score",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/score",
		Summary:     "Get persisted priority score",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct {
		Body domain.PriorityScore `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		s, err := e.Repo.GetPriorityScore(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.PriorityScore `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-priority-score",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}/score",
		Summary:     "Delete persisted priority score",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		if err := e.Repo.DeletePriorityScore(ctx, input.TaskID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-size-estimate",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}/size",
		Summary:     "Get persisted size estimate",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct {
		Body domain.ComplexityScore `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		s, err := e.Repo.GetComplexityScore(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ComplexityScore `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-size-estimate",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}/size",
		Summary:     "Delete persisted size estimate",
		Errors:      []int{http.StatusNotFound, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		TaskID int64 `path:"task_id"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, statusErr := requireOwnedTask(ctx, e, input.TaskID, userID); statusErr != nil {
			return nil, statusErr
		}
		if err := e.Repo.DeleteComplexityScore(ctx, input.TaskID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Recent events, newest first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		if _, authErr := userIDFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		limit := input.Limit
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		evts, err := e.Repo.LatestEvents(ctx, limit, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		if evts == nil {
			evts = []domain.Event{}
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: evts}, nil
	})
}
