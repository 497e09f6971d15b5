package ingest

import (
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/ingest"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

// MergeOptions carries the defaults applied to employees first seen in a file.
type MergeOptions struct {
	DefaultCompany    string
	DefaultDepartment string
	DefaultShift      string

	// Source names the file being merged, used in conflict reports.
	Source string
}

func (o MergeOptions) withDefaults() MergeOptions {
	if o.DefaultCompany == "" {
		o.DefaultCompany = employee.DefaultCompany
	}
	if o.DefaultDepartment == "" {
		o.DefaultDepartment = employee.DefaultDepartment
	}
	if o.DefaultShift == "" {
		o.DefaultShift = employee.DefaultShift
	}
	return o
}

// MergeResult is the output of one merge pass. Employees is a fresh collection
// that shares nothing with the input.
type MergeResult struct {
	Employees []employee.Employee
	Conflicts []ingest.Conflict
	Skipped   int
	Touched   []string
}

// collection is an insertion-ordered working copy of the employee list.
type collection struct {
	list    []employee.Employee
	index   map[string]int
	touched map[string]bool
	order   []string

	conflicts    []ingest.Conflict
	conflictSeen map[string]bool
	skipped      int
}

func newCollection(existing []employee.Employee) *collection {
	c := &collection{
		list:         make([]employee.Employee, 0, len(existing)),
		index:        make(map[string]int, len(existing)),
		touched:      make(map[string]bool),
		conflictSeen: make(map[string]bool),
	}
	for _, e := range existing {
		c.add(e.Clone())
	}
	return c
}

func (c *collection) add(e employee.Employee) *employee.Employee {
	if i, ok := c.index[e.ID]; ok {
		c.list[i] = e
		return &c.list[i]
	}
	c.index[e.ID] = len(c.list)
	c.list = append(c.list, e)
	return &c.list[len(c.list)-1]
}

func (c *collection) get(id string) *employee.Employee {
	i, ok := c.index[id]
	if !ok {
		return nil
	}
	return &c.list[i]
}

// byName returns the first employee whose name matches case-insensitively.
func (c *collection) byName(name string) *employee.Employee {
	for i := range c.list {
		if c.list[i].MatchesName(name) {
			return &c.list[i]
		}
	}
	return nil
}

func (c *collection) touch(id string) {
	if !c.touched[id] {
		c.touched[id] = true
		c.order = append(c.order, id)
	}
}

// checkConflict records a row whose identifier matched emp while its name
// belongs to somebody else.
func (c *collection) checkConflict(source, rowID, rowName string, emp *employee.Employee) {
	if rowName == "" || emp.MatchesName(rowName) {
		return
	}
	owner := c.byName(rowName)
	if owner == nil || owner.ID == emp.ID {
		return
	}
	key := source + "|" + rowID + "|" + owner.ID
	if c.conflictSeen[key] {
		return
	}
	c.conflictSeen[key] = true
	c.conflicts = append(c.conflicts, ingest.Conflict{
		File:        source,
		RowIdentity: rowID,
		RowName:     rowName,
		MatchedID:   emp.ID,
		NameOwnerID: owner.ID,
		NameOwner:   owner.Name,
	})
}

func (c *collection) result() MergeResult {
	return MergeResult{
		Employees: c.list,
		Conflicts: c.conflicts,
		Skipped:   c.skipped,
		Touched:   c.order,
	}
}

func nonEmpty(v, fallback string) string {
	if sheet.IsBlankOrSentinel(v) {
		return fallback
	}
	return v
}
