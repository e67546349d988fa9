// Package graph exposes the apiary service as a GraphQL schema.
package graph

import (
	"context"
	"errors"

	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/apperr"

	"github.com/graphql-go/graphql"
)

// DefaultAlertLimit is the dashboard's alert prefix when the query gives no limit.
const DefaultAlertLimit = 5

type resolver struct {
	svc        *apiary.Service
	alertLimit int
}

// NewSchema builds the schema. alertLimit <= 0 falls back to DefaultAlertLimit.
func NewSchema(svc *apiary.Service, alertLimit int) (graphql.Schema, error) {
	if alertLimit <= 0 {
		alertLimit = DefaultAlertLimit
	}
	r := &resolver{svc: svc, alertLimit: alertLimit}
	cosechaType := newCosechaType(r.cosechaColmena)

	idArg := graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}}
	updateArgs := func(input *graphql.InputObject) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input": &graphql.ArgumentConfig{Type: input},
			"unset": &graphql.ArgumentConfig{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Optional fields to clear.",
			},
		}
	}
	createArgs := func(input *graphql.InputObject) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)}}
	}
	listOf := func(t graphql.Output) graphql.Output {
		return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"insumos":  &graphql.Field{Type: listOf(insumoType), Resolve: r.insumos},
			"insumo":   &graphql.Field{Type: insumoType, Args: idArg, Resolve: r.insumo},
			"colmenas": &graphql.Field{Type: listOf(colmenaType), Resolve: r.colmenas},
			"colmena":  &graphql.Field{Type: colmenaType, Args: idArg, Resolve: r.colmena},
			"cosechas": &graphql.Field{Type: listOf(cosechaType), Resolve: r.cosechas},
			"cosecha":  &graphql.Field{Type: cosechaType, Args: idArg, Resolve: r.cosecha},
			"harvestsByHive": &graphql.Field{
				Type: listOf(cosechaType),
				Args: graphql.FieldConfigArgument{
					"colmenaId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.harvestsByHive,
			},
			"activityLog": &graphql.Field{
				Type: listOf(activityType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: apiary.DefaultActivityLimit},
				},
				Resolve: r.activityLog,
			},
			"dashboard": &graphql.Field{
				Type: graphql.NewNonNull(dashboardType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.dashboard,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createInsumo":  &graphql.Field{Type: graphql.NewNonNull(insumoType), Args: createArgs(insumoInput), Resolve: r.createInsumo},
			"updateInsumo":  &graphql.Field{Type: graphql.NewNonNull(insumoType), Args: updateArgs(insumoInput), Resolve: r.updateInsumo},
			"deleteInsumo":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteInsumo},
			"createColmena": &graphql.Field{Type: graphql.NewNonNull(colmenaType), Args: createArgs(colmenaInput), Resolve: r.createColmena},
			"updateColmena": &graphql.Field{Type: graphql.NewNonNull(colmenaType), Args: updateArgs(colmenaInput), Resolve: r.updateColmena},
			"deleteColmena": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteColmena},
			"createCosecha": &graphql.Field{Type: graphql.NewNonNull(cosechaType), Args: createArgs(cosechaInput), Resolve: r.createCosecha},
			"updateCosecha": &graphql.Field{Type: graphql.NewNonNull(cosechaType), Args: updateArgs(cosechaInput), Resolve: r.updateCosecha},
			"deleteCosecha": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteCosecha},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

// Request is the POST body of a GraphQL call.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Execute runs req against schema. Errors are reported inside the result.
func Execute(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// fail makes sure the executor sees an *apperr.Error so extensions carry a code.
func fail(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal("", err)
}
