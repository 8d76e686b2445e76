package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ginjaninja78/expense-intake/internal/fileparser"
	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response messages.
const (
	msgInvalidBody    = "Invalid request body"
	msgInvalidEmail   = "Invalid email format"
	msgEmptyPassword  = "Password cannot be empty"
	msgNoFile         = "No file uploaded. Use form field 'file'."
	msgParseFailed    = "Failed to parse file"
	msgReportNotFound = "Report not found"
	msgReportsFailed  = "Failed to load reports"
	msgSubmitFailed   = "Failed to store report"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// SubmitRequest is the body of POST /reports/submit.
type SubmitRequest struct {
	Expenses []types.RawRecord `json:"expenses"`
}

func newToken() string {
	return uuid.NewString()
}

// =============================================================================
// HEALTH & AUTH
// =============================================================================

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": Version})
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleLogin only checks the credential format. No account store exists.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	if !strings.Contains(req.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidEmail)
	}
	if strings.TrimSpace(req.Password) == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgEmptyPassword)
	}

	return c.JSON(LoginResponse{Token: s.tokens()})
}

// =============================================================================
// META
// =============================================================================

func (s *Server) handleCategories(c *fiber.Ctx) error {
	return c.JSON(s.ref.Categories())
}

func (s *Server) handleDepartments(c *fiber.Ctx) error {
	return c.JSON(s.ref.Departments())
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Server) handleValidate(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgNoFile)
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, msgParseFailed)
	}
	defer f.Close()

	batch, err := s.orchestrator.Validate(c.UserContext(), f, fh.Filename)
	if err != nil {
		if fileparser.IsInputError(err) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Str("file", fh.Filename).Msg("validation failed")
		return fiber.NewError(fiber.StatusInternalServerError, msgParseFailed)
	}

	return c.JSON(batch)
}

// =============================================================================
// REPORTS
// =============================================================================

func (s *Server) handleListReports(c *fiber.Ctx) error {
	list, err := s.reports.List(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, msgReportsFailed)
	}
	return c.JSON(list)
}

func (s *Server) handleAnalytics(c *fiber.Ctx) error {
	a, err := s.reports.Analytics(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, msgReportsFailed)
	}
	return c.JSON(a)
}

func (s *Server) handleGetReport(c *fiber.Ctx) error {
	report, found, err := s.reports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, msgReportsFailed)
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, msgReportNotFound)
	}
	return c.JSON(report)
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	req, err := decodeSubmit(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	report, err := s.reports.Submit(c.UserContext(), req.Expenses)
	if err != nil {
		var rej *reports.RejectionError
		if errors.As(err, &rej) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": rej})
		}
		return fiber.NewError(fiber.StatusInternalServerError, msgSubmitFailed)
	}
	return c.JSON(report)
}

// decodeSubmit reads a submission keeping numbers as json.Number so the
// amount is read exactly as sent.
func decodeSubmit(body []byte) (*SubmitRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var req SubmitRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if req.Expenses == nil {
		return nil, errors.New("expenses is required")
	}
	return &req, nil
}
