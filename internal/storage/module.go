package storage

import "strings"

// ModuleContext scopes table names to a module so modules sharing one
// database cannot collide: module "Incomes" and table "items" become
// "incomes_items".
type ModuleContext struct {
	Module string
}

func (m ModuleContext) Table(name string) string {
	return strings.ToLower(m.Module) + "_" + name
}
