package pages

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"padoca/internal/views/layout"
	"padoca/models"
)

// Login renders the full sign-in page.
func Login(message, email string) templ.Component {
	return layout.Layout("Sign in", nil, loginForm(message, email), false, layout.ThemeByID(models.DefaultTheme))
}

// LoginPartial renders only the sign-in form for HTMX swaps.
func LoginPartial(message, email string) templ.Component {
	return loginForm(message, email)
}

// Signup renders the full account creation page.
func Signup(message, name, email string) templ.Component {
	return layout.Layout("Create account", nil, signupForm(message, name, email), false, layout.ThemeByID(models.DefaultTheme))
}

// SignupPartial renders only the signup form for HTMX swaps.
func SignupPartial(message, name, email string) templ.Component {
	return signupForm(message, name, email)
}

func loginForm(message, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"auth-panel\" id=\"auth-panel\"><h1>Padoca</h1>")
		writeFlash(&b, message)
		b.WriteString("<form method=\"post\" action=\"/login\" hx-post=\"/login\" hx-target=\"#auth-panel\">")
		b.WriteString("<label>Email<input type=\"email\" name=\"email\" value=\"")
		b.WriteString(templ.EscapeString(email))
		b.WriteString("\" required></label>")
		b.WriteString("<label>Password<input type=\"password\" name=\"password\" required></label>")
		b.WriteString("<button type=\"submit\">Sign in</button></form>")
		b.WriteString("<p><a href=\"/signup\">Create an account</a></p></section>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func signupForm(message, name, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"auth-panel\" id=\"auth-panel\"><h1>Create your account</h1>")
		writeFlash(&b, message)
		b.WriteString("<form method=\"post\" action=\"/signup\" hx-post=\"/signup\" hx-target=\"#auth-panel\">")
		b.WriteString("<label>Name<input type=\"text\" name=\"name\" value=\"")
		b.WriteString(templ.EscapeString(name))
		b.WriteString("\"></label>")
		b.WriteString("<label>Email<input type=\"email\" name=\"email\" value=\"")
		b.WriteString(templ.EscapeString(email))
		b.WriteString("\" required></label>")
		b.WriteString("<label>Password<input type=\"password\" name=\"password\" required></label>")
		b.WriteString("<label>Confirm password<input type=\"password\" name=\"confirm_password\" required></label>")
		b.WriteString("<button type=\"submit\">Create account</button></form>")
		b.WriteString("<p><a href=\"/login\">Back to sign in</a></p></section>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeFlash(b *strings.Builder, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	b.WriteString("<p class=\"flash\">")
	b.WriteString(templ.EscapeString(message))
	b.WriteString("</p>")
}
