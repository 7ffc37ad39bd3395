package pages

import (
	"net/http"

	"foodreel/internal/backend"
	"foodreel/internal/gateway"
	"foodreel/internal/navigation"
	"foodreel/internal/session"
	"foodreel/pkg/platform/httputil"
	"foodreel/pkg/requestcontext"
)

// Landing views after login, per role.
const (
	customerHome        = "/home"
	restaurantDashboard = "/restaurant/dashboard"
)

func landing(role session.Role) string {
	if role == session.RoleCustomer {
		return customerHome
	}
	return restaurantDashboard
}

// handleRoot renders the customer feed for customers and sends everyone else
// to the operator dashboard.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Read().Role != session.RoleCustomer {
		http.Redirect(w, r, restaurantDashboard, http.StatusFound)
		return
	}
	h.handleHome(w, r)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.api.Items(ctx)
	if err != nil {
		h.fail(w, r, err, "items")
		return
	}

	view := homeView{Items: shuffled(items), SavedIDs: []string{}}
	if h.sessions.Read().Authenticated() {
		saved, err := h.api.SavedItems(ctx)
		if err != nil {
			if hasPending(r) {
				h.fail(w, r, err, "saved items")
				return
			}
			h.logger.WarnContext(ctx, "saved items unavailable for feed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		for _, item := range saved {
			view.SavedIDs = append(view.SavedIDs, item.ID)
		}
	}
	h.render(w, "home", view)
}

func (h *Handler) handleLoginView(w http.ResponseWriter, r *http.Request) {
	role := session.RoleCustomer
	if r.URL.Path == "/restaurant/login" {
		role = session.RoleRestaurant
	}
	h.render(w, "login", loginView{
		Role:  role.String(),
		Roles: []string{session.RoleCustomer.String(), session.RoleRestaurant.String()},
	})
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleLogin exchanges the form for a credential and hands it to the holder,
// which is the only writer of session storage.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form loginForm
	if !h.bind(w, r, &form) {
		return
	}
	if form.Role == "" {
		form.Role = session.RoleCustomer.String()
		if r.URL.Path == "/restaurant/login" {
			form.Role = session.RoleRestaurant.String()
		}
	}
	role, err := session.ParseRole(form.Role)
	if err != nil {
		httputil.WriteFieldErrors(w, "please correct the highlighted fields", map[string]string{
			"role": "must be customer or restaurant",
		})
		return
	}

	credential, err := h.api.Login(ctx, role, backend.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.fail(w, r, err, "login")
		return
	}
	if err := h.sessions.Login(ctx, credential, role); err != nil {
		h.logger.ErrorContext(ctx, "failed to persist session",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, http.StatusInternalServerError, "session_unavailable", "")
		return
	}
	h.profiles.Forget()

	h.logger.InfoContext(ctx, "logged in",
		"role", role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	h.redirect(w, r, landing(role))
}

// handleLogout is idempotent: logging out a cleared session still lands on the
// login entry point.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Logout(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to clear session",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	h.profiles.Forget()

	target := h.policy.Target(h.sessions.Read().Role)
	if navigation.Request(ctx, target, navigation.ModeHard, "logout") && navigation.Apply(w, r) {
		return
	}
	h.redirect(w, r, target)
}

func (h *Handler) handleRegisterView(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register", loginView{
		Role:  session.RoleCustomer.String(),
		Roles: []string{session.RoleCustomer.String(), session.RoleRestaurant.String()},
	})
}

type registerForm struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form registerForm
	if !h.bind(w, r, &form) {
		return
	}

	var err error
	switch form.Role {
	case "", session.RoleCustomer.String():
		err = h.api.RegisterCustomer(ctx, backend.CustomerRegistration{
			Name:     form.Name,
			Email:    form.Email,
			Password: form.Password,
		})
	case session.RoleRestaurant.String():
		err = h.api.RegisterRestaurant(ctx, backend.RestaurantRegistration{
			Name:     form.Name,
			Address:  form.Address,
			Phone:    form.Phone,
			Email:    form.Email,
			Type:     form.Type,
			Password: form.Password,
		})
	default:
		err = &backend.InputError{Fields: []gateway.FieldError{{Field: "role", Message: "must be customer or restaurant"}}}
	}
	if err != nil {
		h.fail(w, r, err, "registration")
		return
	}
	h.redirect(w, r, h.policy.EntryPoint)
}

func (h *Handler) handleForgotPasswordView(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot_password", nil)
}

type resetForm struct {
	Email           string `json:"email"`
	UserID          string `json:"userId"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var form resetForm
	if !h.bind(w, r, &form) {
		return
	}
	userID, err := h.api.SendOTP(r.Context(), form.Email)
	if err != nil {
		h.fail(w, r, err, "sending the code")
		return
	}
	h.render(w, "forgot_password", map[string]any{"step": 2, "userId": userID})
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var form resetForm
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.VerifyOTP(r.Context(), form.UserID, form.OTP); err != nil {
		h.fail(w, r, err, "code verification")
		return
	}
	h.render(w, "forgot_password", map[string]any{"step": 3, "userId": form.UserID})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var form resetForm
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.ResetPassword(r.Context(), form.UserID, form.Password, form.ConfirmPassword); err != nil {
		h.fail(w, r, err, "password reset")
		return
	}
	h.redirect(w, r, "/")
}
