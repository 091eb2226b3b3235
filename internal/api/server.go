// Package api exposes the conversion pipeline over HTTP with fiber.
// Every request runs its own pipeline; nothing is shared between requests
// besides the immutable parsers held by the container.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/extracto-ofx/internal/container"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/parsererror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// MIMEOFX is the content type of converted statements.
const MIMEOFX = "application/x-ofx"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ProfileInfo describes one supported source.
type ProfileInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Strategy   string `json:"strategy"`
	Container  string `json:"container"`
	HeaderSkip int    `json:"header_skip"`
}

// Server wires the HTTP routes to the container's parsers.
type Server struct {
	app       *fiber.App
	container *container.Container
	logger    logging.Logger
}

// NewServer builds the fiber app for c. The request body limit comes from
// the server configuration.
func NewServer(c *container.Container) *Server {
	s := &Server{container: c, logger: c.GetLogger()}

	limit := c.GetConfig().Server.BodyLimitMB
	if limit <= 0 {
		limit = 20
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "extracto-ofx",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequest)

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/profiles", s.handleProfiles)
	api.Post("/convert/:source", s.handleConvert)
	api.Post("/preview/:source", s.handlePreview)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until the server is shut down.
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP API listening", logging.F("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Debug("HTTP request",
		logging.F("method", c.Method()),
		logging.F("path", c.Path()),
		logging.F("status", status))
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleProfiles(c *fiber.Ctx) error {
	profiles := s.container.GetRegistry().All()
	out := make([]ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileInfo{
			ID:         p.ID,
			Name:       p.Name,
			Strategy:   string(p.Strategy),
			Container:  string(p.Container),
			HeaderSkip: p.HeaderSkip,
		})
	}
	return c.JSON(out)
}

func (s *Server) handleConvert(c *fiber.Ctx) error {
	p, raw, err := s.prepare(c)
	if err != nil {
		return err
	}

	doc, err := p.Convert(c.UserContext(), raw)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, MIMEOFX)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="movimientos_%s.ofx"`, p.Profile().ID))
	return c.SendString(doc)
}

func (s *Server) handlePreview(c *fiber.Ctx) error {
	p, raw, err := s.prepare(c)
	if err != nil {
		return err
	}

	pv, err := p.Preview(c.UserContext(), raw, c.QueryInt("rows", parser.DefaultPreviewRows))
	if err != nil {
		return err
	}
	return c.JSON(pv)
}

// prepare resolves the source parameter and reads the upload, either the raw
// body or the multipart field "file".
func (s *Server) prepare(c *fiber.Ctx) (*parser.ProfileParser, []byte, error) {
	p, err := s.container.GetParser(c.Params("source"))
	if err != nil {
		return nil, nil, err
	}

	var raw []byte
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "multipart upload needs a 'file' field")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		if raw, err = io.ReadAll(f); err != nil {
			return nil, nil, fmt.Errorf("failed to read upload: %w", err)
		}
	} else {
		// fasthttp reuses the body buffer once the handler returns
		raw = append([]byte(nil), c.Body()...)
	}

	if len(raw) == 0 {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "request body is empty")
	}
	return p, raw, nil
}

// handleError maps pipeline errors to status codes and a JSON body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	resp := ErrorResponse{Error: parsererror.UserMessage(err), Detail: err.Error()}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		resp = ErrorResponse{Error: fe.Message}
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed", logging.F("path", c.Path()))
	}
	return c.Status(status).JSON(resp)
}

// StatusFor returns the HTTP status reported for err.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, parsererror.ErrUnknownSource):
		return fiber.StatusNotFound
	case errors.Is(err, parsererror.ErrColumnNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, parsererror.ErrUnrecognizedContainer):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
