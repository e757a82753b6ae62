package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/arnold/okrs-api/internal/lifecycle"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// parseBody decodes the JSON body into req and runs its validate tags.
// On failure the 400 response has already been written and ok is false.
func parseBody(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

// parseID reads a uuid path parameter.
func parseID(c *fiber.Ctx, param, what string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid " + what + " ID",
		})
	}
	return id, true, nil
}

// respondError maps engine errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	msg := fallback
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrForbidden), errors.Is(err, lifecycle.ErrForbidden):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrConflict):
		status, msg = fiber.StatusConflict, err.Error()
	default:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func pagination(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

func periodFilter(c *fiber.Ctx) (services.Filter, error) {
	f := services.Filter{Quarter: c.Query("quarter")}
	if f.Quarter != "" {
		switch f.Quarter {
		case "Q1", "Q2", "Q3", "Q4":
		default:
			return f, errors.New("quarter must be one of Q1 Q2 Q3 Q4")
		}
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 2000 || year > 2100 {
			return f, errors.New("year must be between 2000 and 2100")
		}
		f.Year = year
	}
	return f, nil
}
