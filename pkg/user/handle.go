package user

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/fluxpbx/adminapi/pkg/errors"
	"github.com/fluxpbx/adminapi/pkg/permission"
)

// Handle exposes the user provisioning endpoints
type Handle struct {
	userService *Service
	checker     permission.Checker
}

// NewHandle creates a new user HTTP handle
func NewHandle(userService *Service, checker permission.Checker) *Handle {
	return &Handle{
		userService: userService,
		checker:     checker,
	}
}

// RegisterRoutes mounts the user routes onto the router
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.MethodNotAllowed(h.methodNotAllowed)
	})
}

// createUserRequest is the wire shape of the create request. It is kept
// separate from CreateUserParams so the transport can evolve independently
// of the service contract.
type createUserRequest struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	Email               string `json:"user_email"`
	GroupUUID           string `json:"group_uuid"`
	GroupUUIDName       string `json:"group_uuid_name"`
	DomainUUID          string `json:"domain_uuid"`
	Language            string `json:"user_language"`
	TimeZone            string `json:"user_time_zone"`
	Type                string `json:"user_type"`
	Enabled             string `json:"user_enabled"`
	Status              string `json:"user_status"`
	ContactOrganization string `json:"contact_organization"`
	ContactNameGiven    string `json:"contact_name_given"`
	ContactNameFamily   string `json:"contact_name_family"`
}

// CreateUser handles POST /users
func (h *Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.checker.Exists(ctx, "user_add") {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, map[string]interface{}{
			"status":  "error",
			"message": "Forbidden - Insufficient permissions",
		})
		return
	}

	params, err := decodeCreateUserParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := h.userService.CreateUser(ctx, params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"message":    "User created successfully",
		"user_uuid":  created.UserID,
		"username":   created.Username,
		"user_email": created.Email,
	})
}

// decodeCreateUserParams reads the request body as JSON, falling back to
// form encoding when the body is not a JSON object
func decodeCreateUserParams(r *http.Request) (CreateUserParams, error) {
	var params CreateUserParams

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return params, errors.Internal("Failed to read request body")
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var req createUserRequest
		if err := json.Unmarshal(body, &req); err == nil {
			if err := copier.Copy(&params, &req); err != nil {
				return params, errors.Internal("Failed to map request")
			}
			return params, nil
		}
		// malformed JSON is treated like a body that was never JSON:
		// fall through to the form fields so the missing-field check
		// enumerates everything absent
	}

	// re-attach the consumed body so ParseForm can read it
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	if err := r.ParseForm(); err != nil {
		return params, errors.New(errors.ErrCodeMissingRequired, "Missing required fields")
	}
	params.Username = r.PostFormValue("username")
	params.Password = r.PostFormValue("password")
	params.Email = r.PostFormValue("user_email")
	params.GroupUUID = r.PostFormValue("group_uuid")
	params.GroupUUIDName = r.PostFormValue("group_uuid_name")
	params.DomainUUID = r.PostFormValue("domain_uuid")
	params.Language = r.PostFormValue("user_language")
	params.TimeZone = r.PostFormValue("user_time_zone")
	params.Type = r.PostFormValue("user_type")
	params.Enabled = r.PostFormValue("user_enabled")
	params.Status = r.PostFormValue("user_status")
	params.ContactOrganization = r.PostFormValue("contact_organization")
	params.ContactNameGiven = r.PostFormValue("contact_name_given")
	params.ContactNameFamily = r.PostFormValue("contact_name_family")
	return params, nil
}

// respondError writes the error as a JSON envelope with the status code
// mapped from its error code
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.MapErrorCodeToHTTPStatus(code)

	body := map[string]interface{}{
		"status": "error",
	}
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		body["message"] = structured.Message
	} else {
		body["message"] = err.Error()
	}
	for k, v := range errors.GetDetails(err) {
		body[k] = v
	}
	if code == errors.ErrCodePersistenceFailed {
		if structured != nil && structured.Err != nil {
			body["error"] = structured.Err.Error()
		}
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}

func (h *Handle) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := "Method not allowed"
	if r.Method == http.MethodGet {
		message = "Method not allowed. Use POST to create a user."
	}
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

// Index handles GET on the API root and lists the available endpoints
func Index(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "API endpoint",
		"endpoints": map[string]string{
			"/api/users": "User management (POST to create)",
		},
	})
}

// NotFoundHandler responds to requests for unknown endpoints
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]interface{}{
		"status":   "error",
		"message":  "Endpoint not found",
		"endpoint": r.URL.Path,
	})
}
