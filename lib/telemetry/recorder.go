package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory so tests can assert
// on what a component reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) add(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add("count", id, []any{count})
}

func (r *Recorder) Reports() []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Broken returns the ids of every ReportBroken call, in order.
func (r *Recorder) Broken() []string {
	var ids []string
	for _, rep := range r.Reports() {
		if rep.Kind == "broken" {
			ids = append(ids, rep.ID)
		}
	}
	return ids
}

// Contains reports whether any recorded report or its params mention substr.
func (r *Recorder) Contains(substr string) bool {
	for _, rep := range r.Reports() {
		if strings.Contains(rep.ID, substr) {
			return true
		}
		for _, p := range rep.Params {
			if strings.Contains(fmt.Sprint(p), substr) {
				return true
			}
		}
	}
	return false
}
