// Package validate checks form and API input with struct tags and renders
// field errors in the user's language.
package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	pt_translations "github.com/go-playground/validator/v10/translations/pt_BR"

	"github.com/pavelanni/attendance/internal/model"
)

var (
	v   *validator.Validate
	uni *ut.UniversalTranslator

	// custom validation tags
	notBlankTag     = "notblank"
	isoDateTag      = "isodate"
	activityKindTag = "activity_kind"
	roleTag         = "user_role"
)

var customMessages = map[string]map[string]string{
	"en": {
		notBlankTag:     "{0} cannot be blank",
		isoDateTag:      "{0} must be a date like 2025-05-10",
		activityKindTag: "{0} is not a known activity",
		roleTag:         "{0} must be teacher or admin",
	},
	"pt_BR": {
		notBlankTag:     "{0} não pode ficar em branco",
		isoDateTag:      "{0} deve ser uma data como 2025-05-10",
		activityKindTag: "{0} não é uma atividade conhecida",
		roleTag:         "{0} deve ser teacher ou admin",
	},
}

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni = ut.New(enLocale, enLocale, pt_BR.New())
	enTrans, _ := uni.GetTranslator("en")
	ptTrans, _ := uni.GetTranslator("pt_BR")
	_ = en_translations.RegisterDefaultTranslations(v, enTrans)
	_ = pt_translations.RegisterDefaultTranslations(v, ptTrans)

	// Use JSON or form tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(isoDateTag, isoDate)
	_ = v.RegisterValidation(activityKindTag, activityKind)
	_ = v.RegisterValidation(roleTag, userRole)

	for locale, msgs := range customMessages {
		trans, _ := uni.GetTranslator(locale)
		for tag, text := range msgs {
			_ = v.RegisterTranslation(tag, trans, registerMessage(tag, text), translateMessage)
		}
	}
}

func registerMessage(tag, text string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}
}

func translateMessage(trans ut.Translator, fe validator.FieldError) string {
	msg, err := trans.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Error()
	}
	return msg
}

// Struct validates s against its validate tags.
func Struct(s any) error {
	return v.Struct(s)
}

// Var validates a single value against a tag expression.
func Var(field any, tag string) error {
	return v.Var(field, tag)
}

// Messages maps each failing field to a message in lang ("en" or "pt").
// Errors that are not validation errors map under the empty key.
func Messages(err error, lang string) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	trans := translator(lang)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(trans)
	}
	return out
}

// Summary joins the messages of err into one line.
func Summary(err error, lang string) string {
	msgs := Messages(err, lang)
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m)
	}
	// Map order is random; keep output stable for display.
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func translator(lang string) ut.Translator {
	if strings.HasPrefix(strings.ToLower(lang), "pt") {
		if t, ok := uni.GetTranslator("pt_BR"); ok {
			return t
		}
	}
	t, _ := uni.GetTranslator("en")
	return t
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

func activityKind(fl validator.FieldLevel) bool {
	return model.ActivityKind(fl.Field().String()).IsValid()
}

func userRole(fl validator.FieldLevel) bool {
	switch model.UserRole(fl.Field().String()) {
	case model.UserRoleTeacher, model.UserRoleAdmin:
		return true
	}
	return false
}
