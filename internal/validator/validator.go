package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator

	// entity validates domain inputs (validate:"..." tags) independently of
	// the transport they arrived on.
	entity *govalidator.Validate

	initOnce sync.Once
)

// personNamePattern accepts letters, with single spaces, hyphens or
// apostrophes between letter runs ("Anne-Marie", "O'Neil", "Ana Maria").
var personNamePattern = regexp.MustCompile(`^\p{L}+(?:[ '\-]\p{L}+)*$`)

func initialize() {
	initOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")

		entity = govalidator.New(govalidator.WithRequiredStructEnabled())
		configure(entity)
		_ = entity.RegisterValidation("personname", func(fl govalidator.FieldLevel) bool {
			return personNamePattern.MatchString(fl.Field().String())
		})
		_ = entity.RegisterTranslation("personname", trans, func(t ut.Translator) error {
			return t.Add("personname", "{0} may only contain letters, spaces, hyphens and apostrophes", true)
		}, func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T("personname", fe.Field())
			return msg
		})
	})
}

// configure makes v report JSON field names and English messages.
func configure(v *govalidator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)
}

// Setup registers English translations on Gin's binding engine as well.
// Call once during application startup.
func Setup() {
	initialize()
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		configure(v)
	}
}

// Error is returned when an input fails validation. Fields maps each
// offending JSON field to a human-readable message.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v against its validate tags and returns *Error on failure.
func Struct(v interface{}) error {
	initialize()
	if err := entity.Struct(v); err != nil {
		return &Error{Fields: TranslateErrors(err)}
	}
	return nil
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	initialize()
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind decodes the request body (JSON or form, by Content-Type) into dst and
// runs any binding tags it carries. Returns nil on success or a translated
// field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBind(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
