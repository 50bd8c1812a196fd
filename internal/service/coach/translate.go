package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Language describes a supported explanation language.
type Language struct {
	Name    string
	Culture string
}

var languages = map[string]Language{
	"en": {Name: "English", Culture: "Western"},
	"ta": {Name: "Tamil", Culture: "South Indian"},
	"hi": {Name: "Hindi", Culture: "North Indian"},
	"es": {Name: "Spanish", Culture: "Latin American/Iberian"},
	"fr": {Name: "French", Culture: "European/French"},
}

// metaphors suggests a familiar analogy per language and concept.
var metaphors = map[string]map[string]string{
	"ta": {
		"database":  "கிராம பதிவேடு (village registry)",
		"api":       "அஞ்சல் சேவை (postal service)",
		"cache":     "உள்ளூர் கடை சரக்கு (local shop inventory)",
		"recursion": "கண்ணாடி பிரதிபலிப்பு (mirror reflection)",
		"mapreduce": "சந்தை வர்த்தக மாதிரி (market trading pattern)",
	},
	"hi": {
		"database":  "गाँव का रजिस्टर (village register)",
		"api":       "डाक सेवा (postal service)",
		"cache":     "स्थानीय दुकान स्टॉक (local shop stock)",
		"recursion": "आईने का प्रतिबिंब (mirror reflection)",
		"mapreduce": "बाजार व्यापार पैटर्न (market trade pattern)",
	},
	"es": {
		"database":  "registro municipal (municipal registry)",
		"api":       "servicio de correos (postal service)",
		"cache":     "bodega local (local warehouse)",
		"recursion": "reflejo del espejo (mirror reflection)",
		"mapreduce": "mercado de distribución (distribution market)",
	},
	"fr": {
		"database":  "registre de la mairie (town hall registry)",
		"api":       "service postal (postal service)",
		"cache":     "stock du magasin (shop stock)",
		"recursion": "reflet du miroir (mirror reflection)",
		"mapreduce": "marché de distribution (distribution market)",
	},
}

// SupportedLanguage reports whether code is a supported language code.
func SupportedLanguage(code string) bool {
	_, ok := languages[code]
	return ok
}

// TranslateInput asks for a concept explained in a target language.
type TranslateInput struct {
	Concept        string
	TargetLanguage string
	Level          string
	IncludeAnalogy bool
}

// Validate checks all fields and collects all errors.
func (i *TranslateInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Concept) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if i.TargetLanguage != "" && !SupportedLanguage(i.TargetLanguage) {
		errs = append(errs, domain.FieldError{Field: "target_language", Message: "must be one of en, ta, hi, es, fr"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// KeyTerm pairs a native term with its technical meaning.
type KeyTerm struct {
	Native    string `json:"native"`
	Technical string `json:"technical"`
	Meaning   string `json:"meaning"`
}

// Translation is a conceptual explanation in the target language.
type Translation struct {
	Language          string
	NativeText        string
	Transliteration   string
	CulturalAnalogy   string
	TechnicalMapping  string
	RealWorldScenario string
	KeyTerms          []KeyTerm
	Degraded          bool
}

type translationPayload struct {
	NativeText        string    `json:"nativeText"`
	Transliteration   string    `json:"transliteration"`
	CulturalAnalogy   string    `json:"culturalAnalogy"`
	TechnicalMapping  string    `json:"technicalMapping"`
	RealWorldScenario string    `json:"realWorldScenario"`
	KeyTerms          []KeyTerm `json:"keyTerms"`
}

const translationSchema = `{
  "nativeText": "string",
  "transliteration": "string",
  "culturalAnalogy": "string",
  "technicalMapping": "string",
  "realWorldScenario": "string",
  "keyTerms": [{"native": "string", "technical": "string", "meaning": "string"}]
}`

// Translate explains a concept through analogies familiar in the target
// language's culture. Generation failures return a Degraded translation that
// carries the original text.
func (s *Service) Translate(ctx context.Context, in TranslateInput) (*Translation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.TargetLanguage = orDefault(in.TargetLanguage, "en")
	in.Level = orDefault(in.Level, "intermediate")

	var p translationPayload
	err := s.gen.CompleteStructured(ctx, buildTranslationPrompt(in), translationSchema, domain.GenerateOptions{
		System:      "You are an educator who explains technical ideas through culturally familiar analogies.",
		Temperature: 0.6,
	}, &p)
	if err == nil && p.NativeText == "" {
		err = fmt.Errorf("%w: empty nativeText", domain.ErrSchemaMismatch)
	}
	if err != nil {
		s.log.WarnContext(ctx, "translation failed, returning original text",
			slog.String("language", in.TargetLanguage),
			slog.String("error", err.Error()),
		)
		return &Translation{
			Language:   in.TargetLanguage,
			NativeText: in.Concept,
			KeyTerms:   []KeyTerm{},
			Degraded:   true,
		}, nil
	}

	return &Translation{
		Language:          in.TargetLanguage,
		NativeText:        p.NativeText,
		Transliteration:   p.Transliteration,
		CulturalAnalogy:   p.CulturalAnalogy,
		TechnicalMapping:  p.TechnicalMapping,
		RealWorldScenario: p.RealWorldScenario,
		KeyTerms:          nonNilTerms(p.KeyTerms),
	}, nil
}

func buildTranslationPrompt(in TranslateInput) string {
	lang := languages[in.TargetLanguage]

	var hint string
	if in.IncludeAnalogy {
		if m, ok := metaphors[in.TargetLanguage][strings.ToLower(strings.TrimSpace(in.Concept))]; ok {
			hint = "Suggested local metaphor: " + m + "\n"
		}
	}

	analogy := "Use a culturally familiar analogy (markets, agriculture, festivals, daily life)."
	if !in.IncludeAnalogy {
		analogy = "Do not use analogies; explain directly."
	}

	return fmt.Sprintf(`Explain this technical concept for a %s learner.

Concept: %q
Target language: %s (%s)
Cultural context: %s
%s
%s
Keep the explanation technically accurate. Write the explanation in %s and include a transliteration when the script is not Latin.

Output ONLY a JSON object matching this schema:
%s`, in.Level, in.Concept, lang.Name, in.TargetLanguage, lang.Culture, hint, analogy, lang.Name, translationSchema)
}

func nonNilTerms(t []KeyTerm) []KeyTerm {
	if t == nil {
		return []KeyTerm{}
	}
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
