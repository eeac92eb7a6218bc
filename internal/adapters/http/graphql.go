package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

func ratingFields() graphql.Fields {
	fields := graphql.Fields{}
	for _, category := range domain.RatingCategories {
		fields[category] = &graphql.Field{Type: graphql.Int}
	}
	return fields
}

func ratingsMap(m map[string]interface{}, r domain.Ratings) {
	for _, category := range domain.RatingCategories {
		v, _ := r.Get(category)
		m[category] = v
	}
}

func cityToMap(c domain.City) map[string]interface{} {
	m := map[string]interface{}{
		"id":                c.ID,
		"city":              c.City,
		"country":           c.Country,
		"region":            c.Region,
		"short_description": c.ShortDescription,
		"latitude":          c.Latitude,
		"longitude":         c.Longitude,
		"budget_level":      c.BudgetLevel,
	}
	if c.Score != nil {
		m["score"] = *c.Score
	}
	ratingsMap(m, c.Ratings)
	return m
}

func citiesToMaps(cities []domain.City) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityToMap(c))
	}
	return out
}

func journeyCityToMap(c domain.JourneyCity) map[string]interface{} {
	m := map[string]interface{}{
		"id":           c.ID,
		"city":         c.City,
		"country":      c.Country,
		"latitude":     c.Latitude,
		"longitude":    c.Longitude,
		"budget_level": c.BudgetLevel,
	}
	ratingsMap(m, c.Ratings)
	return m
}

func nameCountsToMaps(counts []domain.NameCount) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(counts))
	for _, nc := range counts {
		out = append(out, map[string]interface{}{"name": nc.Name, "value": nc.Value})
	}
	return out
}

func optString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	cityFields := graphql.Fields{
		"id":                &graphql.Field{Type: graphql.String},
		"city":              &graphql.Field{Type: graphql.String},
		"country":           &graphql.Field{Type: graphql.String},
		"region":            &graphql.Field{Type: graphql.String},
		"short_description": &graphql.Field{Type: graphql.String},
		"latitude":          &graphql.Field{Type: graphql.Float},
		"longitude":         &graphql.Field{Type: graphql.Float},
		"budget_level":      &graphql.Field{Type: graphql.String},
		"score":             &graphql.Field{Type: graphql.Float},
	}
	for k, f := range ratingFields() {
		cityFields[k] = f
	}
	cityType := graphql.NewObject(graphql.ObjectConfig{Name: "City", Fields: cityFields})

	journeyCityFields := graphql.Fields{
		"id":           &graphql.Field{Type: graphql.String},
		"city":         &graphql.Field{Type: graphql.String},
		"country":      &graphql.Field{Type: graphql.String},
		"latitude":     &graphql.Field{Type: graphql.Float},
		"longitude":    &graphql.Field{Type: graphql.Float},
		"budget_level": &graphql.Field{Type: graphql.String},
	}
	for k, f := range ratingFields() {
		journeyCityFields[k] = f
	}
	journeyCityType := graphql.NewObject(graphql.ObjectConfig{Name: "JourneyCity", Fields: journeyCityFields})

	journeyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Journey",
		Fields: graphql.Fields{
			"session_id":  &graphql.Field{Type: graphql.String},
			"cities":      &graphql.Field{Type: graphql.NewList(journeyCityType)},
			"ids":         &graphql.Field{Type: graphql.NewList(graphql.String)},
			"coordinates": &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.Float))},
		},
	})

	nameCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NameCount",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Int},
		},
	})

	weightInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RankWeight",
		Fields: graphql.InputObjectConfigFieldMap{
			"category": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"weight":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	filterArgs := func(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"city":         &graphql.ArgumentConfig{Type: graphql.String},
			"region":       &graphql.ArgumentConfig{Type: graphql.String},
			"budget_level": &graphql.ArgumentConfig{Type: graphql.String},
			"limit":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			"offset":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}
	filterFromArgs := func(args map[string]interface{}) domain.CityFilter {
		limit, _ := args["limit"].(int)
		offset, _ := args["offset"].(int)
		return domain.CityFilter{
			City:        optString(args, "city"),
			Region:      optString(args, "region"),
			BudgetLevel: optString(args, "budget_level"),
			Limit:       limit,
			Offset:      offset,
		}
	}

	sessionArg := graphql.FieldConfigArgument{
		"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	resolveJourney := func(p graphql.ResolveParams) (interface{}, error) {
		sid := p.Args["session_id"].(string)
		cities, err := deps.Journeys.Cities(p.Context, sid)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(cities))
		coords := make([][]float64, 0, len(cities))
		list := make([]map[string]interface{}, 0, len(cities))
		for _, c := range cities {
			ids = append(ids, c.ID)
			coords = append(coords, []float64{c.Latitude, c.Longitude})
			list = append(list, journeyCityToMap(c))
		}
		return map[string]interface{}{
			"session_id":  sid,
			"cities":      list,
			"ids":         ids,
			"coordinates": coords,
		}, nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchCities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "Search catalog cities by name, region and budget level",
				Args:        filterArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					cities, err := deps.Catalog.Search(p.Context, filterFromArgs(p.Args))
					if err != nil {
						return nil, err
					}
					return citiesToMaps(cities), nil
				},
			},
			"recommendCities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "Rank cities by weighted ratings",
				Args: filterArgs(graphql.FieldConfigArgument{
					"weights": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(weightInput)))},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					weights := domain.RankWeights{}
					raw, _ := p.Args["weights"].([]interface{})
					for _, item := range raw {
						m, ok := item.(map[string]interface{})
						if !ok {
							continue
						}
						category, _ := m["category"].(string)
						w, _ := m["weight"].(float64)
						weights[category] = w
					}
					cities, err := deps.Catalog.Recommend(p.Context, weights, filterFromArgs(p.Args))
					if err != nil {
						return nil, err
					}
					return citiesToMaps(cities), nil
				},
			},
			"city": &graphql.Field{
				Type:        cityType,
				Description: "Get a catalog city by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					city, err := deps.Catalog.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return cityToMap(*city), nil
				},
			},
			"regionCounts": &graphql.Field{
				Type:        graphql.NewList(nameCountType),
				Description: "Number of cities per region",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					counts, err := deps.Catalog.RegionCounts(p.Context)
					if err != nil {
						return nil, err
					}
					return nameCountsToMaps(counts), nil
				},
			},
			"countryCounts": &graphql.Field{
				Type:        graphql.NewList(nameCountType),
				Description: "Number of cities per country within a region",
				Args: graphql.FieldConfigArgument{
					"region": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					counts, err := deps.Catalog.CountryCounts(p.Context, p.Args["region"].(string))
					if err != nil {
						return nil, err
					}
					return nameCountsToMaps(counts), nil
				},
			},
			"countries": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct countries, optionally within a region",
				Args: graphql.FieldConfigArgument{
					"region": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Countries(p.Context, optString(p.Args, "region"))
				},
			},
			"description": &graphql.Field{
				Type:        graphql.String,
				Description: "Joined short descriptions for a city, country or region",
				Args: graphql.FieldConfigArgument{
					"region":  &graphql.ArgumentConfig{Type: graphql.String},
					"country": &graphql.ArgumentConfig{Type: graphql.String},
					"city":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Description(p.Context,
						optString(p.Args, "region"), optString(p.Args, "country"), optString(p.Args, "city"))
				},
			},
			"journey": &graphql.Field{
				Type:        journeyType,
				Description: "The journey of a session",
				Args:        sessionArg,
				Resolve:     resolveJourney,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addCatalogCity": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Add a catalog city to a journey; false if already present",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"city_id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.AddCatalogCity(p.Context, p.Args["session_id"].(string), p.Args["city_id"].(string))
				},
			},
			"removeCity": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Remove a city from a journey; false if absent",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"id":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.RemoveCity(p.Context, p.Args["session_id"].(string), p.Args["id"].(string))
				},
			},
			"clearJourney": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    sessionArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Journeys.Clear(p.Context, p.Args["session_id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"confirmJourney": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Confirm a journey and return its city names in order",
				Args:        sessionArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.Confirm(p.Context, p.Args["session_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
