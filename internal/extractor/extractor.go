package extractor

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Пакет extractor восстанавливает структурированные данные из сырого текста,
// который вернула модель. Модель не обязана возвращать валидный JSON:
// встречаются одинарные кавычки, пояснительный текст вокруг объекта,
// незакрытые скобки. Поэтому извлечение идет каскадом из трех уровней,
// от строгого к эвристическому.

// Tier указывает, какой уровень каскада дал результат.
type Tier int

const (
	// TierNone — извлечь ничего не удалось.
	TierNone Tier = iota
	// TierBalanced — сработал поиск сбалансированного объекта (один уровень вложенности).
	TierBalanced
	// TierGreedy — сработал нежадный поиск первой пары {...}.
	TierGreedy
	// TierFields — объект собран из отдельных полей регулярными выражениями.
	TierFields
)

// String возвращает имя уровня для логов и метрик.
func (t Tier) String() string {
	switch t {
	case TierBalanced:
		return "balanced"
	case TierGreedy:
		return "greedy"
	case TierFields:
		return "fields"
	default:
		return "none"
	}
}

// Result — извлеченные данные. Поля присутствуют только если найдены,
// валидация обязательных полей выполняется на стороне вызывающего,
// т.к. разным операциям нужны разные поля (story+choices или summary).
type Result struct {
	Data map[string]interface{}
	Tier Tier
}

// Story возвращает поле story, если оно есть и является строкой.
func (r *Result) Story() (string, bool) {
	return r.stringField("story")
}

// Summary возвращает поле summary, если оно есть и является строкой.
func (r *Result) Summary() (string, bool) {
	return r.stringField("summary")
}

func (r *Result) stringField(key string) (string, bool) {
	if r == nil || r.Data == nil {
		return "", false
	}
	v, ok := r.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Choices возвращает поле choices как срез строк. Элементы другого типа
// пропускаются; если строк не осталось, поле считается отсутствующим.
func (r *Result) Choices() ([]string, bool) {
	if r == nil || r.Data == nil {
		return nil, false
	}
	raw, ok := r.Data["choices"]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	case []interface{}:
		choices := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				choices = append(choices, s)
			}
		}
		if len(choices) == 0 {
			return nil, false
		}
		return choices, true
	default:
		return nil, false
	}
}

var (
	// Сбалансированный объект с одним уровнем вложенных скобок.
	balancedObjectRe = regexp.MustCompile(`(?s)\{(?:[^{}]|(?:\{[^{}]*\}))*\}`)
	// Нежадный поиск первой пары скобок.
	greedyObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)
	// Отдельные поля для последнего уровня восстановления.
	storyFieldRe   = regexp.MustCompile(`"story"\s*:\s*"([^"]*)"`)
	choicesFieldRe = regexp.MustCompile(`(?s)"choices"\s*:\s*\[(.*?)\]`)
	summaryFieldRe = regexp.MustCompile(`"summary"\s*:\s*"([^"]*)"`)
	quotedStringRe = regexp.MustCompile(`"([^"]*)"`)
)

// Extract пытается восстановить объект из сырого ответа модели.
// Возвращает nil, если ни один уровень каскада не дал результата.
// Никогда не возвращает ошибку и не паникует: ошибка парсинга внутри
// уровня означает лишь переход к следующему уровню.
func Extract(raw string) *Result {
	if raw == "" {
		return nil
	}

	// Уровень 1: сбалансированный объект, строгий парсинг.
	if m := balancedObjectRe.FindString(raw); m != "" {
		if data := tryParse(m); data != nil {
			return &Result{Data: data, Tier: TierBalanced}
		}
	}

	// Уровень 2: первая пара скобок, нежадно.
	if m := greedyObjectRe.FindString(raw); m != "" {
		if data := tryParse(m); data != nil {
			return &Result{Data: data, Tier: TierGreedy}
		}
	}

	// Уровень 3: собираем объект из отдельных полей.
	if data := recoverFields(raw); data != nil {
		return &Result{Data: data, Tier: TierFields}
	}

	return nil
}

// tryParse нормализует кавычки и пробует строгий JSON-парсинг.
// Любая ошибка парсинга означает провал уровня, не всего извлечения.
func tryParse(candidate string) map[string]interface{} {
	normalized := strings.ReplaceAll(candidate, "'", `"`)
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(normalized), &data); err != nil {
		return nil
	}
	return data
}

// recoverFields независимо ищет поля story и choices и собирает из них
// объект вручную. Оба поля обязательны: одиночное поле на этом уровне
// слишком ненадежно.
func recoverFields(raw string) map[string]interface{} {
	storyMatch := storyFieldRe.FindStringSubmatch(raw)
	choicesMatch := choicesFieldRe.FindStringSubmatch(raw)
	if storyMatch == nil || choicesMatch == nil {
		return nil
	}

	quoted := quotedStringRe.FindAllStringSubmatch(choicesMatch[1], -1)
	choices := make([]interface{}, 0, len(quoted))
	for _, q := range quoted {
		choices = append(choices, q[1])
	}

	return map[string]interface{}{
		"story":   storyMatch[1],
		"choices": choices,
	}
}

// ExtractSummaryText вытаскивает содержимое поля summary напрямую,
// когда каскад не смог собрать объект, но поле присутствует как подстрока.
func ExtractSummaryText(raw string) (string, bool) {
	m := summaryFieldRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var (
	jsonSyntaxRe   = regexp.MustCompile(`[{}"\[\]]`)
	summaryLabelRe = regexp.MustCompile(`summary\s*:`)
)

// StripJSONSyntax очищает текст от синтаксиса JSON и метки поля summary.
// Последний рубеж для summarize: отдать сам текст ответа.
func StripJSONSyntax(raw string) string {
	clean := jsonSyntaxRe.ReplaceAllString(raw, "")
	clean = summaryLabelRe.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}
