package service

import (
	"fmt"
	"strings"

	"idatech-backoffice/internal/model"
)

var programNames = map[string]string{
	model.StudentProgramIoT: "IoT",
	model.StudentProgramSoD: "SoD",
}

func programName(program string) string {
	if name, ok := programNames[program]; ok {
		return name
	}
	return program
}

func studentNoun(s model.Student) string {
	if s.Type == model.StudentTypeTrainee {
		return "trainee"
	}
	if model.IsInternee(s.Type) {
		return "internee"
	}
	return "student"
}

// activityMessage renders the feed line for an action on a record.
func activityMessage(action string, rec model.Record) string {
	switch r := rec.(type) {
	case model.Student:
		switch action {
		case "create":
			return fmt.Sprintf("New %s %s added to %s program", studentNoun(r), r.Name, programName(r.Program))
		case "update":
			return fmt.Sprintf("Updated %s %s in %s program", studentNoun(r), r.Name, programName(r.Program))
		case "restore":
			return fmt.Sprintf("Restored %s %s to %s program", studentNoun(r), r.Name, programName(r.Program))
		default:
			return fmt.Sprintf("Deleted %s %s from %s program", studentNoun(r), r.Name, programName(r.Program))
		}
	case model.Employee:
		switch action {
		case "create":
			return fmt.Sprintf("New employee %s added to %s department", r.Name, r.Department)
		case "update":
			return fmt.Sprintf("Updated employee %s in %s department", r.Name, r.Department)
		case "restore":
			return fmt.Sprintf("Restored employee %s to %s department", r.Name, r.Department)
		default:
			return fmt.Sprintf("Deleted employee %s from %s department", r.Name, r.Department)
		}
	case model.Expense:
		return moneyMessage(action, "expense", r.Description, r.Amount.StringFixed(2))
	case model.Transaction:
		return moneyMessage(action, "transaction", r.Description, r.Amount.StringFixed(2))
	}
	return fmt.Sprintf("%s %s #%d", action, strings.ToLower(string(rec.Variant())), rec.RecordID())
}

func moneyMessage(action string, noun string, description string, amount string) string {
	switch action {
	case "create":
		return fmt.Sprintf("New %s added: %s - $%s", noun, description, amount)
	case "update":
		return fmt.Sprintf("Updated %s: %s - $%s", noun, description, amount)
	case "restore":
		return fmt.Sprintf("Restored %s: %s - $%s", noun, description, amount)
	default:
		return fmt.Sprintf("Deleted %s: %s - $%s", noun, description, amount)
	}
}

var pluralNames = map[model.Variant]string{
	model.VariantStudent:     "students",
	model.VariantEmployee:    "employees",
	model.VariantExpense:     "expenses",
	model.VariantTransaction: "transactions",
}

func plural(variant model.Variant) string {
	if name, ok := pluralNames[variant]; ok {
		return name
	}
	return strings.ToLower(string(variant)) + "s"
}
