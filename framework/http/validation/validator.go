package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors — mirrors Laravel's MessageBag.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Rule registry ────────────────────────────────────────────────────────────

// RuleFunc checks one rule against one field value. A non-empty return is the
// failure message; empty means the rule passed. data carries the full input so
// cross-field rules (same, confirmed) can look at siblings.
type RuleFunc func(field, value, param string, data map[string]string) string

var (
	rulesMu sync.RWMutex
	ruleSet = builtinRules()
)

// Extend registers a custom rule — mirrors Validator::extend.
//
//	validation.Extend("uppercase", func(field, value, _ string, _ map[string]string) string {
//	    if value != strings.ToUpper(value) {
//	        return fmt.Sprintf("The %s must be uppercase.", field)
//	    }
//	    return ""
//	})
func Extend(name string, fn RuleFunc) {
	rulesMu.Lock()
	ruleSet[name] = fn
	rulesMu.Unlock()
}

func lookupRule(name string) (RuleFunc, bool) {
	rulesMu.RLock()
	fn, ok := ruleSet[name]
	rulesMu.RUnlock()
	return fn, ok
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"email": "required|email", "age": "required|numeric|min:18"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
}

// Make creates a new Validator — mirrors Validator::make($data, $rules).
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	for field, ruleStr := range v.rules {
		value := v.data[field]

		for _, rule := range strings.Split(ruleStr, "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			// Parse rule name and optional parameter: min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			// Control rules short-circuit the field without recording errors.
			if name == "sometimes" && value == "" {
				break
			}
			if name == "nullable" || name == "sometimes" || name == "string" {
				continue
			}

			fn, ok := lookupRule(name)
			if !ok {
				continue
			}
			if msg := fn(field, value, param, v.data); msg != "" {
				v.errors.add(field, msg)
				break // stop on first failure (like Laravel's bail behaviour)
			}
		}
	}
}

// ── Built-in rules ───────────────────────────────────────────────────────────

func builtinRules() map[string]RuleFunc {
	alphaRe := regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	urlRe := regexp.MustCompile(`^https?://`)

	return map[string]RuleFunc{
		"required": func(field, value, _ string, _ map[string]string) string {
			if strings.TrimSpace(value) == "" {
				return fmt.Sprintf("The %s field is required.", field)
			}
			return ""
		},

		"numeric": func(field, value, _ string, _ map[string]string) string {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return fmt.Sprintf("The %s must be a number.", field)
			}
			return ""
		},

		"integer": func(field, value, _ string, _ map[string]string) string {
			if _, err := strconv.Atoi(value); err != nil {
				return fmt.Sprintf("The %s must be an integer.", field)
			}
			return ""
		},

		"boolean": func(field, value, _ string, _ map[string]string) string {
			switch strings.ToLower(value) {
			case "true", "false", "1", "0", "yes", "no":
				return ""
			}
			return fmt.Sprintf("The %s field must be true or false.", field)
		},

		"email": func(field, value, _ string, _ map[string]string) string {
			if _, err := mail.ParseAddress(value); err != nil {
				return fmt.Sprintf("The %s must be a valid email address.", field)
			}
			return ""
		},

		"url": func(field, value, _ string, _ map[string]string) string {
			if !urlRe.MatchString(value) {
				return fmt.Sprintf("The %s must be a valid URL.", field)
			}
			return ""
		},

		"min": func(field, value, param string, _ map[string]string) string {
			n, _ := strconv.Atoi(param)
			if utf8.RuneCountInString(value) < n {
				return fmt.Sprintf("The %s must be at least %d characters.", field, n)
			}
			return ""
		},

		"max": func(field, value, param string, _ map[string]string) string {
			n, _ := strconv.Atoi(param)
			if utf8.RuneCountInString(value) > n {
				return fmt.Sprintf("The %s may not be greater than %d characters.", field, n)
			}
			return ""
		},

		"size": func(field, value, param string, _ map[string]string) string {
			n, _ := strconv.Atoi(param)
			if utf8.RuneCountInString(value) != n {
				return fmt.Sprintf("The %s must be %d characters.", field, n)
			}
			return ""
		},

		"between": func(field, value, param string, _ map[string]string) string {
			lo, hi, ok := strings.Cut(param, ",")
			if !ok {
				return ""
			}
			min, _ := strconv.Atoi(strings.TrimSpace(lo))
			max, _ := strconv.Atoi(strings.TrimSpace(hi))
			if l := utf8.RuneCountInString(value); l < min || l > max {
				return fmt.Sprintf("The %s must be between %d and %d characters.", field, min, max)
			}
			return ""
		},

		"in": func(field, value, param string, _ map[string]string) string {
			for _, a := range strings.Split(param, ",") {
				if strings.TrimSpace(a) == value {
					return ""
				}
			}
			return fmt.Sprintf("The selected %s is invalid.", field)
		},

		"not_in": func(field, value, param string, _ map[string]string) string {
			for _, d := range strings.Split(param, ",") {
				if strings.TrimSpace(d) == value {
					return fmt.Sprintf("The selected %s is invalid.", field)
				}
			}
			return ""
		},

		"confirmed": func(field, value, _ string, data map[string]string) string {
			// Expects data[field+"_confirmation"] to match
			if data[field+"_confirmation"] != value {
				return fmt.Sprintf("The %s confirmation does not match.", field)
			}
			return ""
		},

		"same": func(field, value, param string, data map[string]string) string {
			if data[param] != value {
				return fmt.Sprintf("The %s and %s must match.", field, param)
			}
			return ""
		},

		"different": func(field, value, param string, data map[string]string) string {
			if data[param] == value {
				return fmt.Sprintf("The %s and %s must be different.", field, param)
			}
			return ""
		},

		"alpha": func(field, value, _ string, _ map[string]string) string {
			if !alphaRe.MatchString(value) {
				return fmt.Sprintf("The %s may only contain letters.", field)
			}
			return ""
		},

		"alpha_num": func(field, value, _ string, _ map[string]string) string {
			if !alphaNumRe.MatchString(value) {
				return fmt.Sprintf("The %s may only contain letters and numbers.", field)
			}
			return ""
		},

		"alpha_dash": func(field, value, _ string, _ map[string]string) string {
			if !alphaDashRe.MatchString(value) {
				return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field)
			}
			return ""
		},

		"regex": func(field, value, param string, _ map[string]string) string {
			re, err := regexp.Compile(param)
			if err != nil || !re.MatchString(value) {
				return fmt.Sprintf("The %s format is invalid.", field)
			}
			return ""
		},

		"gt": func(field, value, param string, _ map[string]string) string {
			f, _ := strconv.ParseFloat(value, 64)
			n, _ := strconv.ParseFloat(param, 64)
			if f <= n {
				return fmt.Sprintf("The %s must be greater than %s.", field, param)
			}
			return ""
		},

		"gte": func(field, value, param string, _ map[string]string) string {
			f, _ := strconv.ParseFloat(value, 64)
			n, _ := strconv.ParseFloat(param, 64)
			if f < n {
				return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
			}
			return ""
		},

		"lt": func(field, value, param string, _ map[string]string) string {
			f, _ := strconv.ParseFloat(value, 64)
			n, _ := strconv.ParseFloat(param, 64)
			if f >= n {
				return fmt.Sprintf("The %s must be less than %s.", field, param)
			}
			return ""
		},

		"lte": func(field, value, param string, _ map[string]string) string {
			f, _ := strconv.ParseFloat(value, 64)
			n, _ := strconv.ParseFloat(param, 64)
			if f > n {
				return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
			}
			return ""
		},
	}
}
