package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

type DiffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary DiffSummary   `json:"summary"`
	New     []diffItem    `json:"new"`
	Removed []diffItem    `json:"removed"`
	Changed []diffChanged `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffItem struct {
	RuleID   string `json:"rule_id"`
	Class    string `json:"class"`
	Subject  string `json:"subject"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

type diffChanged struct {
	Key     string   `json:"key"`
	Base    diffItem `json:"base"`
	Head    diffItem `json:"head"`
	Changed []string `json:"fields_changed"`
}

// Diff compares two runs keyed on rule, class, subject and message. A
// violation whose key exists in both runs but whose severity differs is
// reported as changed.
func Diff(base, head *model.Run) DiffPayload {
	bm := index(base.Report.Violations)
	hm := index(head.Report.Violations)

	added, removed, changed := []diffItem{}, []diffItem{}, []diffChanged{}
	for k, hv := range hm {
		bv, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hv))
			continue
		}
		if norm(string(bv.Severity)) != norm(string(hv.Severity)) {
			changed = append(changed, diffChanged{Key: k, Base: asDiff(bv), Head: asDiff(hv), Changed: []string{"severity"}})
		}
	}
	for k, bv := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bv))
		}
	}

	sortItems(added)
	sortItems(removed)
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	return DiffPayload{
		BaseID: base.ID, HeadID: head.ID,
		Summary: DiffSummary{NewCount: len(added), RemovedCount: len(removed), ChangedCount: len(changed)},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
}

// WriteDiffJSON writes <outDir>/diff_<base>__<head>.json.
func WriteDiffJSON(outDir string, base, head *model.Run) (string, DiffPayload, error) {
	payload := Diff(base, head)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", payload, err
	}
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", payload, err
	}
	return path, payload, os.WriteFile(path, b, 0o644)
}

// index keeps the first violation per key; repeated keys get an ordinal.
func index(vs []model.Violation) map[string]model.Violation {
	out := make(map[string]model.Violation, len(vs))
	for _, v := range vs {
		base := keyOf(v)
		k := base
		for n := 2; ; n++ {
			if _, dup := out[k]; !dup {
				break
			}
			k = fmt.Sprintf("%s|#%d", base, n)
		}
		out[k] = v
	}
	return out
}

func keyOf(v model.Violation) string {
	return strings.Join([]string{norm(v.RuleID), norm(v.Class), norm(v.Subject), strings.TrimSpace(v.Message)}, "|")
}

func asDiff(v model.Violation) diffItem {
	return diffItem{RuleID: v.RuleID, Class: v.Class, Subject: v.Subject, Severity: string(v.Severity), Message: v.Message}
}

func sortItems(items []diffItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Subject < b.Subject
	})
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
