package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/attendance/internal/model"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Sabbath School Attendance" {
		t.Errorf("T(AppTitle) = %q, want 'Sabbath School Attendance'", got)
	}

	got = T(ctx, "StepActivities")
	if got != "Missionary activities" {
		t.Errorf("T(StepActivities) = %q, want 'Missionary activities'", got)
	}
}

func TestTranslatePortuguese(t *testing.T) {
	ctx := initLang(t, "pt")

	got := T(ctx, "AppTitle")
	if got != "Chamada da Escola Sabatina" {
		t.Errorf("T(AppTitle) = %q, want 'Chamada da Escola Sabatina'", got)
	}

	got = T(ctx, "Present")
	if got != "Presente" {
		t.Errorf("T(Present) = %q, want 'Presente'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "StudentsOnRoster", 1)
	if got1 != "1 student on the roster." {
		t.Errorf("Tp(StudentsOnRoster, 1) = %q", got1)
	}

	got5 := Tp(ctx, "StudentsOnRoster", 5)
	if got5 != "5 students on the roster." {
		t.Errorf("Tp(StudentsOnRoster, 5) = %q", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "StudentProgress", map[string]any{"Current": 2, "Total": 7})
	if got != "Student 2 of 7" {
		t.Errorf("Td(StudentProgress) = %q, want 'Student 2 of 7'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestActivityLabelsComplete(t *testing.T) {
	for _, lang := range []string{"en", "pt"} {
		ctx := initLang(t, lang)
		for _, kind := range model.ActivityKinds {
			label := ActivityLabel(ctx, kind)
			if label == "Activity."+string(kind) {
				t.Errorf("%s: no label for %s", lang, kind)
			}
		}
	}
}

func TestMiddlewarePreferences(t *testing.T) {
	initLang(t, "en")

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "Present"},
		{"accept language", "", "pt-BR,pt;q=0.9", "Presente"},
		{"cookie wins", "en", "pt-BR", "Present"},
		{"cookie only", "pt", "", "Presente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = T(r.Context(), "Present")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLang(t *testing.T) {
	initLang(t, "en")
	ctx := WithLocalizer(context.Background(), NewLocalizer("pt-BR", "en"))
	if got := Lang(ctx); got != "pt" {
		t.Errorf("Lang() = %q, want 'pt'", got)
	}
}
