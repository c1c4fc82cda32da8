package handler

import (
	"net/http"
)

// LoginPageHandler describes the sign-in form.
func (h *ConsoleHandler) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Please sign in", map[string]interface{}{
		"fields": []string{"username", "password"},
	})
}

// LoginHandler verifies the credentials and sets the session cookie.
func (h *ConsoleHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	fields, err := ReadFields(w, r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	session, err := h.Auth.Login(ctx, fields.String("username"), fields.Raw("password"))
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.Cookie.TTL.Seconds()),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if AcceptsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Welcome, "+session.AdminName, map[string]interface{}{
		"admin_id":   session.AdminID,
		"admin_name": session.AdminName,
		"expires_at": session.ExpiresAt,
	})
}

// LogoutHandler ends the session and clears the cookie.
func (h *ConsoleHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	if cookie, err := r.Cookie(h.Cookie.Name); err == nil {
		if err := h.Auth.Logout(ctx, cookie.Value); err != nil {
			h.ErrorHandler.HandleError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if AcceptsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Logged out", nil)
}
