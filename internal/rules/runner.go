package rules

import (
	"fmt"
	"hash/crc32"

	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/diguard/internal/model"
)

type runConfig struct {
	workers int
}

type Option func(*runConfig)

// WithWorkers evaluates classes on up to n goroutines. Output order is the
// same as a sequential run.
func WithWorkers(n int) Option {
	return func(c *runConfig) { c.workers = n }
}

// Run applies every rule to every class and collects all violations in
// class, rule, condition order. The model is validated first; a model error
// aborts before any rule is evaluated.
func Run(rs []Rule, classes []model.Class, opts ...Option) (model.Report, error) {
	var cfg runConfig
	for _, o := range opts {
		o(&cfg)
	}
	if err := model.Validate(classes); err != nil {
		return model.Report{}, err
	}

	perClass := make([][]model.Violation, len(classes))
	if cfg.workers <= 1 || len(classes) < 2 {
		for i := range classes {
			perClass[i] = evalClass(rs, &classes[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.workers)
		for i := range classes {
			g.Go(func() error {
				perClass[i] = evalClass(rs, &classes[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	report := model.Report{Violations: []model.Violation{}}
	for _, vs := range perClass {
		report.Violations = append(report.Violations, vs...)
	}
	return report, nil
}

func evalClass(rs []Rule, c *model.Class) []model.Violation {
	var out []model.Violation
	// occurrences of identical (rule, subject, message) within the class
	seen := map[string]int{}
	for _, r := range rs {
		if r.That.Apply == nil || !r.That.Apply(c) {
			continue
		}
		for _, cond := range r.Should {
			for _, v := range cond.Check(c) {
				v.RuleID = r.ID
				if v.Class == "" {
					v.Class = c.QualifiedName()
				}
				if r.Severity != "" {
					v.Severity = r.Severity
				}
				key := r.ID + "|" + v.Subject + "|" + v.Message
				v.ID = makeID(r.ID, v.Class, v.Subject, v.Message, seen[key])
				seen[key]++
				out = append(out, v)
			}
		}
	}
	return out
}

// makeID is stable across runs and independent of rule order.
func makeID(ruleID, class, subject, message string, n int) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d", ruleID, class, subject, message, n)
	sum := crc32.ChecksumIEEE([]byte(data))
	return fmt.Sprintf("%s-%08x", ruleID, sum)
}
