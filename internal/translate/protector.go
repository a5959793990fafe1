package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Translator is the external translation capability. Failures are absorbed
// by the protector.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Protector substitutes configured place names with opaque markers before
// translation and restores them afterwards, so names survive verbatim.
type Protector struct {
	translator Translator
	places     []string
}

func NewProtector(translator Translator, protectedPlaces []string) *Protector {
	return &Protector{
		translator: translator,
		places:     protectedPlaces,
	}
}

// Protect translates text with place names shielded. Only the first
// occurrence of each distinct place name is substituted. If translation
// fails, the pre-translation text is returned with names restored;
// translation failure is never an error.
func (p *Protector) Protect(ctx context.Context, text string) string {
	temp := text
	markers := make(map[string]string)

	for _, place := range p.places {
		if !strings.Contains(strings.ToLower(temp), strings.ToLower(place)) {
			continue
		}
		marker := fmt.Sprintf("__PLACE_%s__", uuid.New().String()[:8])
		temp = replaceFirstFold(temp, place, marker)
		markers[marker] = place
	}

	if p.translator != nil {
		translated, err := p.translator.Translate(ctx, temp)
		if err != nil {
			metrics.TranslationFailures.Inc()
			logger.Debug("Translation failed, using original text", zap.Error(err))
		} else {
			temp = translated
		}
	}

	for marker, place := range markers {
		temp = strings.ReplaceAll(temp, marker, place)
	}

	return temp
}

// replaceFirstFold replaces the first case-insensitive occurrence of old in s.
func replaceFirstFold(s, old, repl string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + repl + s[idx+len(old):]
}
