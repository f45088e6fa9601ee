// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"fmt"
	"strings"
)

// Action is a state transition that can be applied to a record.
type Action int

const (
	ActionClose Action = iota + 1
	ActionActivate
	ActionResolve
	ActionAssign
)

type actionSpec struct {
	name  string
	verb  string
	label string
	href  string
}

var actionSpecs = map[Action]actionSpec{
	ActionClose:    {name: "close", verb: "关闭", label: "关闭BUG", href: "bug-close"},
	ActionActivate: {name: "activate", verb: "激活", label: "激活BUG", href: "bug-activate"},
	ActionResolve:  {name: "resolve", verb: "解决", label: "解决BUG", href: "bug-resolve"},
	ActionAssign:   {name: "assign", verb: "指派", label: "指派BUG", href: "bug-assignTo"},
}

// Actions lists every supported action in display order.
func Actions() []Action {
	return []Action{ActionClose, ActionActivate, ActionResolve, ActionAssign}
}

func (a Action) String() string {
	if s, ok := actionSpecs[a]; ok {
		return s.name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Label is the portal's display name of the action, e.g. 关闭BUG.
func (a Action) Label() string { return actionSpecs[a].label }

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	_, ok := actionSpecs[a]
	return ok
}

// ParseAction accepts the English name, the portal label or the bare verb.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for a, spec := range actionSpecs {
		if strings.EqualFold(s, spec.name) || s == spec.label || s == spec.verb {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unsupported action %q (use close, activate, resolve or assign)", s)
}

// Triggers returns the ordered selector strategies locating the control
// that opens the action's form on a detail page.
func (a Action) Triggers() []Selector {
	spec, ok := actionSpecs[a]
	if !ok {
		return nil
	}
	return []Selector{
		ByCSS(fmt.Sprintf(`a[href*="%s"]`, spec.href)),
		ByXPath(fmt.Sprintf(`//a[contains(text(),'%s')] | //button[contains(text(),'%s')]`, spec.verb, spec.verb)),
	}
}

// commentFields locate the free-text comment box of an action form.
var commentFields = []Selector{
	ByCSS(`textarea[name="comment"]`),
	ByCSS(`textarea[name="remark"]`),
	ByCSS(`textarea[name="note"]`),
	ByCSS(`#comment`),
	ByCSS(`#remark`),
	ByCSS(`#note`),
}

// submitControls locate the control that submits an action form.
var submitControls = []Selector{
	ByCSS(`button[type="submit"]`),
	ByCSS(`input[type="submit"]`),
	ByCSS(`.btn-primary`),
	ByCSS(`.btn-success`),
	ByXPath(`//button[contains(text(),'提交')] | //button[contains(text(),'保存')] | //input[@value='提交'] | //input[@value='保存']`),
}

// PrepareComment prefixes the comment with the acting operator so the portal
// history shows who asked for the change. An empty comment becomes a short
// description of the action; a comment already naming the operator is kept.
func PrepareComment(comment, operator string, action Action) string {
	comment = strings.TrimSpace(comment)
	operator = strings.TrimSpace(operator)
	if operator == "" || strings.Contains(comment, operator) {
		return comment
	}
	if comment == "" {
		return fmt.Sprintf("[操作人: %s] 执行%s操作", operator, action.Label())
	}
	return fmt.Sprintf("[操作人: %s] %s", operator, comment)
}
