package web

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var errUnreadableForm = errors.New("the form could not be read, please try again")

type tweetForm struct {
	Content  string `form:"content"`
	ParentID string `form:"parent_id" validate:"omitempty,max=64"`
}

type reactionForm struct {
	ReactionType string `form:"reaction_type" validate:"required,oneof=like dislike"`
}

type openForm struct {
	Ref string `form:"ref" validate:"required"`
}

type loginForm struct {
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Username        string `form:"username"         validate:"required,min=3,max=50,alphanum"`
	Email           string `form:"email"            validate:"required,email"`
	Password        string `form:"password"         validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// bindForm parses the request body into dst and validates it. The
// returned error is user-facing copy, see sentence.
func bindForm(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errUnreadableForm
	}
	if err := validate.Struct(dst); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	if field == "confirmpassword" {
		field = "password confirmation"
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// sentence capitalises a lower-case error message for display.
func sentence(msg string) string {
	if msg == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
