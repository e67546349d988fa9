package graph

import (
	"github.com/graphql-go/graphql"
)

var nonNullString = graphql.NewNonNull(graphql.String)

var insumoType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Insumo",
	Description: "A supply item tracked by quantity. cantidad may be negative.",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"nombre":        &graphql.Field{Type: nonNullString},
		"descripcion":   &graphql.Field{Type: graphql.String},
		"cantidad":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"unidad":        &graphql.Field{Type: graphql.String},
		"tipo":          &graphql.Field{Type: graphql.String},
		"userId":        &graphql.Field{Type: graphql.String},
		"creadoEn":      &graphql.Field{Type: graphql.String},
		"actualizadoEn": &graphql.Field{Type: graphql.String},
	},
})

var colmenaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Colmena",
	Fields: graphql.Fields{
		"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"apiarioID":        &graphql.Field{Type: graphql.String},
		"cantidadAlzas":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"codigo":           &graphql.Field{Type: nonNullString},
		"edadReinaMeses":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"estado":           &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"fechaInstalacion": &graphql.Field{Type: graphql.String},
		"notas":            &graphql.Field{Type: graphql.String},
		"origenReina":      &graphql.Field{Type: graphql.String},
		"tipo":             &graphql.Field{Type: graphql.String},
		"fotoUrl":          &graphql.Field{Type: graphql.String},
		"userId":           &graphql.Field{Type: graphql.String},
		"creadoEn":         &graphql.Field{Type: graphql.String},
		"actualizadoEn":    &graphql.Field{Type: graphql.String},
	},
})

// newCosechaType is built per schema because its colmena field resolves through the service.
func newCosechaType(resolveHive graphql.FieldResolveFn) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Cosecha",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"colmena":          &graphql.Field{Type: colmenaType, Resolve: resolveHive, Description: "The referenced hive, or null when it no longer exists."},
			"colmenaId":        &graphql.Field{Type: graphql.String, Description: `Hive path, "colmenas/<id>".`},
			"fecha":            &graphql.Field{Type: nonNullString},
			"cantidadKg":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"humedad":          &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"panalesExtraidos": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"metodo":           &graphql.Field{Type: graphql.String},
			"floracion":        &graphql.Field{Type: graphql.String},
			"operador":         &graphql.Field{Type: graphql.String},
			"notas":            &graphql.Field{Type: graphql.String},
			"tipoMiel":         &graphql.Field{Type: graphql.String},
			"userId":           &graphql.Field{Type: graphql.String},
			"creadoEn":         &graphql.Field{Type: graphql.String},
			"actualizadoEn":    &graphql.Field{Type: graphql.String},
		},
	})
}

var activityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ActivityLog",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"action":          &graphql.Field{Type: nonNullString},
		"targetType":      &graphql.Field{Type: nonNullString},
		"targetId":        &graphql.Field{Type: graphql.String},
		"cantidadAntes":   &graphql.Field{Type: graphql.Float},
		"cantidadDespues": &graphql.Field{Type: graphql.Float},
		"user":            &graphql.Field{Type: graphql.String},
		"timestamp":       &graphql.Field{Type: nonNullString},
	},
})

var alertType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Alert",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"rule":        &graphql.Field{Type: nonNullString},
		"title":       &graphql.Field{Type: nonNullString},
		"description": &graphql.Field{Type: nonNullString},
		"severity":    &graphql.Field{Type: nonNullString},
		"targetPage":  &graphql.Field{Type: nonNullString},
		"targetId":    &graphql.Field{Type: nonNullString},
		"hiveId":      &graphql.Field{Type: graphql.String},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"activeHiveCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"monthlyHoneyKg":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"alerts":          &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(alertType)))},
		"totalAlerts":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"remainingAlerts": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"computedAt":      &graphql.Field{Type: nonNullString},
	},
})

// Every input field is optional: updates only touch what is sent.

var insumoInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "InsumoInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"nombre":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"descripcion": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"cantidad":    &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"unidad":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"tipo":        &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var colmenaInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ColmenaInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"apiarioID":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"cantidadAlzas":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"codigo":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		"edadReinaMeses":   &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"estado":           &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"fechaInstalacion": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"notas":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"origenReina":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"tipo":             &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var cosechaInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CosechaInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"colmenaId":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"fecha":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"cantidadKg":       &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"humedad":          &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"panalesExtraidos": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"metodo":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		"floracion":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"operador":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"notas":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"tipoMiel":         &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})
