package access

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-simple-crud/internal/api"
	"github.com/FACorreiaa/go-simple-crud/internal/api/auth"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// MessageResponse is returned by endpoints that have nothing else to report.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Logged out"`
}

type Handler struct {
	controller *Controller
	cookies    *auth.CookieManager
	logger     *slog.Logger
}

func NewHandler(controller *Controller, cookies *auth.CookieManager, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		cookies:    cookies,
		logger:     logger,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("AccessHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

// postID parses the {id} URL parameter.
func postID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError(types.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

// decodeLogin accepts the JSON body or a urlencoded form whose "username" field carries the email.
func decodeLogin(w http.ResponseWriter, r *http.Request) (types.LoginRequest, error) {
	var req types.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		err := api.DecodeRequest(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, api.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, types.NewValidationError(types.FieldError{Field: "body", Message: "body contains a malformed form"})
	}
	req.Email = r.PostForm.Get("username")
	if req.Email == "" {
		req.Email = r.PostForm.Get("email")
	}
	req.Password = r.PostForm.Get("password")
	return req, nil
}

// Register godoc
// @Summary      Register a user
// @Description  Creates a user account. Every invalid field is reported at once.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user body types.RegisterRequest true "New user"
// @Success      201 {object} types.PublicUser
// @Failure      400 {object} api.ErrorBody "Invalid input"
// @Failure      409 {object} api.ErrorBody "Email already registered"
// @Failure      500 {object} api.ErrorBody
// @Router       /api/users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Register", "/api/users/register")
	defer span.End()

	var req types.RegisterRequest
	if err := api.DecodeRequest(w, r, &req); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}

	u, err := h.controller.Register(r.Context(), req)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, u)
}

// Login godoc
// @Summary      Log in
// @Description  Verifies the credentials and sets the session cookie.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        credentials body types.LoginRequest true "Credentials (form logins send the email as username)"
// @Success      200 {object} types.PublicUser
// @Failure      400 {object} api.ErrorBody "Malformed body"
// @Failure      401 {object} api.ErrorBody "Invalid email or password"
// @Failure      429 {string} string "Too many login attempts"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Login", "/login")
	defer span.End()

	req, err := decodeLogin(w, r)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}

	p, err := h.controller.Login(r.Context(), req)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	if err := h.cookies.Write(w, p.SessionID); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(strconv.FormatInt(p.UserID, 10)))
	api.WriteJSONResponse(w, r, http.StatusOK, p.User())
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current session, if any, and clears the cookie.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Failure      500 {object} api.ErrorBody
// @Router       /logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Logout", "/logout")
	defer span.End()

	if err := h.controller.Logout(r.Context(), auth.GetSessionIDFromContext(r.Context())); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	h.cookies.Clear(w)
	api.WriteJSONResponse(w, r, http.StatusOK, MessageResponse{Success: true, Message: "Logged out"})
}

// CurrentUser godoc
// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200 {object} types.PublicUser
// @Failure      401 {object} api.ErrorBody "Authentication required"
// @Router       /api/users/me [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CurrentUser", "/api/users/me")
	defer span.End()

	u, err := h.controller.CurrentUser(r.Context(), auth.GetSessionIDFromContext(r.Context()))
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, u)
}

// ListPosts godoc
// @Summary      List posts
// @Description  Lists every post that has not been deleted, ordered by id.
// @Tags         Posts
// @Produce      json
// @Success      200 {array} types.Post
// @Failure      500 {object} api.ErrorBody
// @Router       /api/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListPosts", "/api/posts")
	defer span.End()

	posts, err := h.controller.ListPosts(r.Context())
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get a post
// @Tags         Posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200 {object} types.Post
// @Failure      400 {object} api.ErrorBody "Invalid id"
// @Failure      404 {object} api.ErrorBody "Post not found or deleted"
// @Router       /api/posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetPost", "/api/posts/{id}")
	defer span.End()

	id, err := postID(r)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	p, err := h.controller.GetPost(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a post owned by the logged-in user. Any userId in the body is ignored.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        post body types.PostRequest true "Post"
// @Success      201 {object} types.Post
// @Failure      400 {object} api.ErrorBody "Invalid input"
// @Failure      401 {object} api.ErrorBody "Authentication required"
// @Router       /api/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreatePost", "/api/posts")
	defer span.End()

	var req types.PostRequest
	if err := api.DecodeLenientRequest(w, r, &req); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}

	p, err := h.controller.CreatePost(r.Context(), auth.GetSessionIDFromContext(r.Context()), req)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Replaces title and content. Only the owner may update.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id path int true "Post ID"
// @Param        post body types.PostRequest true "Post"
// @Success      200 {object} types.Post
// @Failure      400 {object} api.ErrorBody "Invalid input"
// @Failure      401 {object} api.ErrorBody "Authentication required"
// @Failure      403 {object} api.ErrorBody "Not the owner"
// @Failure      404 {object} api.ErrorBody "Post not found or deleted"
// @Router       /api/posts/{id} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "UpdatePost", "/api/posts/{id}")
	defer span.End()

	id, err := postID(r)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	var req types.PostRequest
	if err := api.DecodeLenientRequest(w, r, &req); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}

	p, err := h.controller.UpdatePost(r.Context(), auth.GetSessionIDFromContext(r.Context()), id, req)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Soft-deletes the post. Only the owner may delete.
// @Tags         Posts
// @Param        id path int true "Post ID"
// @Success      204
// @Failure      401 {object} api.ErrorBody "Authentication required"
// @Failure      403 {object} api.ErrorBody "Not the owner"
// @Failure      404 {object} api.ErrorBody "Post not found or deleted"
// @Router       /api/posts/{id} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DeletePost", "/api/posts/{id}")
	defer span.End()

	id, err := postID(r)
	if err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	if err := h.controller.DeletePost(r.Context(), auth.GetSessionIDFromContext(r.Context()), id); err != nil {
		api.HandleError(w, r, h.logger, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
