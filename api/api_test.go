package api

import (
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	expectedSchemas := []string{
		"City",
		"JourneyCity",
		"Journey",
		"AddCityRequest",
		"RecommendRequest",
		"NameCount",
		"RouteSummary",
		"APIError",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	if doc.Paths.Find("/graphql") == nil {
		t.Error("expected /graphql to be documented")
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

func TestInfo(t *testing.T) {
	doc, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if doc.Info.Title != "Travel Cities API" {
		t.Errorf("expected title 'Travel Cities API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(doc.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}
