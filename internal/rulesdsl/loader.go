package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID        string `yaml:"id"`
	Summary   string `yaml:"summary"`
	Rationale string `yaml:"rationale"`
	Priority  string `yaml:"priority"` // LOW|MEDIUM|HIGH
	Severity  string `yaml:"severity"` // optional INFO|BLOCKING override

	Where struct {
		Marker       string `yaml:"marker"`
		PackageRegex string `yaml:"package_regex"`
		NameRegex    string `yaml:"name_regex"`
	} `yaml:"where"`

	Should struct {
		NameSuffix           string `yaml:"name_suffix"`
		Package              string `yaml:"package"`
		ForbidFieldInjection *struct {
			InjectedMarker string `yaml:"injected_marker"`
		} `yaml:"forbid_field_injection"`
		ForbidMarker string `yaml:"forbid_marker"`
	} `yaml:"should"`
}

// Load reads a YAML rule pack and compiles it into rules, in file order.
func Load(path string) ([]rules.Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules pack: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) ([]rules.Rule, error) {
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]rules.Rule, 0, len(pack.Rules))
	seen := map[string]bool{}
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		key := strings.ToUpper(cr.ID)
		if seen[key] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[key] = true
		out = append(out, cr)
	}
	return out, nil
}

func compile(r dslRule) (rules.Rule, error) {
	if strings.TrimSpace(r.ID) == "" {
		return rules.Rule{}, fmt.Errorf("missing required field id")
	}

	var scope []rules.Predicate
	if r.Where.Marker != "" {
		scope = append(scope, rules.HasMarker(r.Where.Marker))
	}
	if r.Where.PackageRegex != "" {
		re, err := regexp.Compile(r.Where.PackageRegex)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("package_regex: %w", err)
		}
		scope = append(scope, rules.PackageMatches(re))
	}
	if r.Where.NameRegex != "" {
		re, err := regexp.Compile(r.Where.NameRegex)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("name_regex: %w", err)
		}
		scope = append(scope, rules.NameMatches(re))
	}
	that := rules.AnyClass()
	if len(scope) > 0 {
		that = rules.And(scope...)
	}

	var should []rules.Condition
	if s := r.Should.NameSuffix; s != "" {
		should = append(should, rules.RequireSuffix(s))
	}
	if p := r.Should.Package; p != "" {
		should = append(should, rules.RequirePackage(p))
	}
	if fi := r.Should.ForbidFieldInjection; fi != nil {
		if fi.InjectedMarker == "" {
			return rules.Rule{}, fmt.Errorf("forbid_field_injection needs injected_marker")
		}
		should = append(should, rules.ForbidFieldInjection(fi.InjectedMarker))
	}
	if m := r.Should.ForbidMarker; m != "" {
		should = append(should, rules.ForbidMarker(m))
	}
	if len(should) == 0 {
		return rules.Rule{}, fmt.Errorf("rule has no should conditions")
	}

	var sev model.Severity
	if r.Severity != "" {
		s, err := model.ParseSeverity(r.Severity)
		if err != nil {
			return rules.Rule{}, err
		}
		sev = s
	}

	return rules.Rule{
		ID:        strings.TrimSpace(r.ID),
		Summary:   r.Summary,
		Rationale: r.Rationale,
		Priority:  strings.ToUpper(r.Priority),
		That:      that,
		Should:    should,
		Severity:  sev,
	}, nil
}
