package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

const notificationTemplate = "notification"

//go:embed templates/*
var embeddedTemplates embed.FS

// Renderer turns a notification into email bodies.
type Renderer struct {
	engine  *html.Engine
	linkURL string
}

// NewRenderer loads the embedded templates. baseURL is used for the link back to the application.
func NewRenderer(baseURL string) (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("open mail templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".gohtml")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}

	r := &Renderer{engine: engine}
	if baseURL != "" {
		r.linkURL = strings.TrimRight(baseURL, "/") + "/api/notifications"
	}

	return r, nil
}

// HTML renders the HTML body of n for the recipient name.
func (r *Renderer) HTML(n *models.Notification, name string) (string, error) {
	var buf bytes.Buffer

	err := r.engine.Render(&buf, notificationTemplate, fiber.Map{
		"Name":    name,
		"Title":   n.Title,
		"Message": n.Message,
		"URL":     r.linkURL,
	})
	if err != nil {
		return "", fmt.Errorf("render mail body: %w", err)
	}

	return buf.String(), nil
}

// Text renders the plain text alternative of n.
func (r *Renderer) Text(n *models.Notification, name string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n%s\n", name, n.Title, n.Message)

	if r.linkURL != "" {
		fmt.Fprintf(&b, "\n%s\n", r.linkURL)
	}

	return b.String()
}
