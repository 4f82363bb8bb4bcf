// Package web holds the HTML templates served by the browser pages.
package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/turtacn/oralrisk/internal/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Choice is one <option> of a select field.
type Choice struct {
	Value string
	Label string
}

// SelectField describes one categorical input of the screening form.
type SelectField struct {
	Name    string
	Label   string
	Options []Choice
}

func yesNo(name, label string) SelectField {
	return SelectField{Name: name, Label: label, Options: []Choice{{"yes", "Yes"}, {"no", "No"}}}
}

// FormFields lists the select inputs of the screening form in display order.
var FormFields = []SelectField{
	{Name: models.FieldGender, Label: "Gender", Options: []Choice{{"Male", "Male"}, {"Female", "Female"}}},
	yesNo(models.FieldSmoker, "Smoker"),
	{Name: models.FieldAlcohol, Label: "Alcohol use", Options: []Choice{{"none", "None"}, {"light", "Light"}, {"heavy", "Heavy"}}},
	yesNo(models.FieldBetelQuidUse, "Betel quid use"),
	yesNo(models.FieldWhitePatches, "White patches"),
	yesNo(models.FieldHPV, "HPV infection"),
	yesNo(models.FieldGenetics, "Family history"),
	yesNo(models.FieldImmuneCompromised, "Immune compromised"),
	yesNo(models.FieldChronicIrritation, "Chronic irritation"),
	yesNo(models.FieldPoorOralHygiene, "Poor oral hygiene"),
	{Name: models.FieldDiet, Label: "Fruit and vegetable intake", Options: []Choice{{"low", "Low"}, {"moderate", "Moderate"}, {"high", "High"}}},
	yesNo(models.FieldOralLesions, "Oral lesions"),
	yesNo(models.FieldDifficultySwallowing, "Difficulty swallowing"),
	{Name: models.FieldOralCondition, Label: "Oral condition", Options: []Choice{{"good", "Good"}, {"moderate", "Moderate"}, {"poor", "Poor"}}},
}

var funcs = template.FuncMap{
	"percent": func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
	"get":     func(r models.PredictionRecord, field string) string { return r.Get(field) },
}

// Templates parses every page template. Each page is addressable by its file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
