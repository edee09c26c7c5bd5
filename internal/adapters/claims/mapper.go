// Package claims maps provider-specific token claims onto the application's ClaimSet
// using configurable JMESPath expressions.
package claims

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/equihire/equihire-core/internal/ports"
)

var _ ports.ClaimMapper = (*Mapper)(nil)

// Config holds one JMESPath expression per mapped field. Empty expressions are skipped.
type Config struct {
	Username     string
	Organization string
	Groups       string
}

// Mapper evaluates precompiled expressions against decoded claims.
type Mapper struct {
	username jmespath.JMESPath
	org      jmespath.JMESPath
	groups   jmespath.JMESPath
}

// NewMapper compiles the configured expressions.
func NewMapper(cfg Config) (*Mapper, error) {
	var (
		m   Mapper
		err error
	)
	if m.username, err = compile("username", cfg.Username); err != nil {
		return nil, err
	}
	if m.org, err = compile("organization", cfg.Organization); err != nil {
		return nil, err
	}
	if m.groups, err = compile("groups", cfg.Groups); err != nil {
		return nil, err
	}
	return &m, nil
}

func compile(field, expr string) (jmespath.JMESPath, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	c, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %s claim expression %q: %w", field, expr, err)
	}
	return c, nil
}

// Map extracts username, organization and groups. Missing claims yield zero values.
func (m *Mapper) Map(claims map[string]any) (ports.ClaimSet, error) {
	var out ports.ClaimSet
	if claims == nil {
		return out, nil
	}

	v, err := search(m.username, claims)
	if err != nil {
		return out, fmt.Errorf("username claim: %w", err)
	}
	out.Username = asString(v)

	v, err = search(m.org, claims)
	if err != nil {
		return out, fmt.Errorf("organization claim: %w", err)
	}
	out.OrgID = asString(v)

	v, err = search(m.groups, claims)
	if err != nil {
		return out, fmt.Errorf("groups claim: %w", err)
	}
	out.Groups = asStrings(v)

	return out, nil
}

func search(expr jmespath.JMESPath, data map[string]any) (any, error) {
	if expr == nil {
		return nil, nil
	}
	return expr.Search(data)
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

// asStrings accepts an array of strings or a single space/comma separated string.
func asStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case string:
		return strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' })
	default:
		return nil
	}
}
