package capabilities

import "testing"

func TestCatalogCoversRecognizedTools(t *testing.T) {
	catalog := Catalog()

	byName := map[string]Capability{}
	for _, capability := range catalog {
		byName[capability.Name] = capability
	}

	for _, name := range []string{SearchResources, FetchAttachment, SearchImages} {
		capability, ok := byName[name]
		if !ok {
			t.Fatalf("expected catalog to include %q", name)
		}
		if capability.Description == "" {
			t.Fatalf("expected %q to carry a description", name)
		}
		if capability.Parameters == nil {
			t.Fatalf("expected %q to carry a parameter schema", name)
		}
	}
}

func TestCatalogSchemasInlineProperties(t *testing.T) {
	for _, capability := range Catalog() {
		if capability.Parameters.Properties == nil || capability.Parameters.Properties.Len() == 0 {
			t.Fatalf("expected %q schema to inline its properties", capability.Name)
		}
	}
}
