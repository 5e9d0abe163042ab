package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// configRule is a validation tag specific to the humanizer configuration.
// message receives the configuration key as {0}.
type configRule struct {
	tag     string
	message string
	check   validator.Func
}

var configRules = []configRule{
	{tag: "file", message: "{0} must be an existing and readable file", check: isReadableFile},
	{tag: "origin", message: `{0} must be "*" or an http(s) origin such as https://example.com`, check: isOrigin},
}

// configValidator checks a Config and reports failures by configuration key,
// e.g. "prompt.template_path" rather than "Config.Prompt.TemplatePath".
type configValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newConfigValidator() (*configValidator, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(mapstructureName)

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("enTranslations.RegisterDefaultTranslations > %w", err)
	}

	for _, rule := range configRules {
		if err := validate.RegisterValidation(rule.tag, rule.check); err != nil {
			return nil, fmt.Errorf("validate.RegisterValidation(%s) > %w", rule.tag, err)
		}
		if err := validate.RegisterTranslation(rule.tag, trans, registerMessage(rule), translateKey); err != nil {
			return nil, fmt.Errorf("validate.RegisterTranslation(%s) > %w", rule.tag, err)
		}
	}

	return &configValidator{validate: validate, translator: trans}, nil
}

// Validate returns nil or one error listing every invalid key.
func (v *configValidator) Validate(cfg Config) error {
	err := v.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate.Struct > %w", err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Translate(v.translator))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, ", "))
}

func registerMessage(rule configRule) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(rule.tag, rule.message, true)
	}
}

func translateKey(trans ut.Translator, fe validator.FieldError) string {
	msg, err := trans.T(fe.Tag(), configKey(fe))
	if err != nil {
		return fe.Error()
	}
	return msg
}

func mapstructureName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func configKey(fe validator.FieldError) string {
	return strings.TrimPrefix(fe.Namespace(), "Config.")
}

func isReadableFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// isOrigin accepts "*" or a scheme and host without path, query or fragment,
// which is how browsers send the Origin header.
func isOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.User == nil && (u.Path == "" || u.Path == "/") && u.RawQuery == "" && u.Fragment == ""
}
