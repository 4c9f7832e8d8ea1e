package estimator

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

var errNoJSON = errors.New("no JSON object in model output")

// Key aliases seen in model output, in lookup order.
var (
	nameKeys     = []string{"menu_name", "name", "item_name", "meal", "dish"}
	calorieKeys  = []string{"calories", "kcal", "energy", "calories_kcal", "energy_kcal"}
	proteinKeys  = []string{"protein", "protein_g", "P", "p"}
	fatKeys      = []string{"fat", "fat_g", "F", "f"}
	carbKeys     = []string{"carbs", "carbs_g", "carbohydrates", "carbohydrate", "C", "c"}
	wrapperKeys  = []string{"nutrition", "total", "totals", "result"}
	itemListKeys = []string{"items", "foods", "dishes"}
)

// parseEstimate pulls an Estimate out of free-form model text. It accepts
// fenced code blocks, surrounding prose, nested wrappers like
// {"nutrition": {...}} and item lists, which are summed.
func parseEstimate(text string) (Estimate, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return Estimate{}, errNoJSON
	}
	doc := gjson.Parse(raw)

	if e := doc.Get("error"); e.Exists() && strings.Contains(strings.ToLower(e.String()), "unrecognized") {
		return Estimate{}, ErrUnrecognized
	}

	var est Estimate
	switch {
	case doc.IsArray():
		est = sumItems(doc.Array())
	case firstExisting(doc, itemListKeys).IsArray() && !firstExisting(doc, calorieKeys).Exists():
		est = sumItems(firstExisting(doc, itemListKeys).Array())
		if name := firstExisting(doc, nameKeys); name.Exists() {
			est.MenuName = strings.TrimSpace(name.String())
		}
	default:
		obj := doc
		if !firstExisting(obj, calorieKeys).Exists() {
			if w := firstExisting(doc, wrapperKeys); w.IsObject() {
				obj = w
			}
		}
		est = readItem(obj)
		if est.MenuName == "" {
			est.MenuName = strings.TrimSpace(firstExisting(doc, nameKeys).String())
		}
	}

	if est.Calories <= 0 && est.Protein <= 0 && est.Fat <= 0 && est.Carbs <= 0 {
		return Estimate{}, ErrUnrecognized
	}
	return est, nil
}

func readItem(obj gjson.Result) Estimate {
	return Estimate{
		MenuName: strings.TrimSpace(firstExisting(obj, nameKeys).String()),
		Calories: number(firstExisting(obj, calorieKeys)),
		Protein:  number(firstExisting(obj, proteinKeys)),
		Fat:      number(firstExisting(obj, fatKeys)),
		Carbs:    number(firstExisting(obj, carbKeys)),
	}
}

func sumItems(items []gjson.Result) Estimate {
	var (
		total Estimate
		names []string
	)
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		e := readItem(it)
		total.Calories += e.Calories
		total.Protein += e.Protein
		total.Fat += e.Fat
		total.Carbs += e.Carbs
		if e.MenuName != "" {
			names = append(names, e.MenuName)
		}
	}
	total.MenuName = strings.Join(names, ", ")
	return total
}

func firstExisting(obj gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if r := obj.Get(gjson.Escape(k)); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// number reads numbers and numeric strings such as "350 kcal" or "12g".
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return balance.Number(r.String())
	}
	return 0
}

// extractJSON finds the first complete JSON object or array in text,
// skipping markdown fences and prose.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) && (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) {
		return text, true
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		if end := matchClose(text, i); end > 0 {
			candidate := text[i : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// matchClose returns the index of the bracket closing text[start], honoring
// JSON strings, or -1.
func matchClose(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
