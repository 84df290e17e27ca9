package capabilities

import (
	"github.com/invopop/jsonschema"
)

// Capability describes one server-side tool: its name, what it does, and the
// schema of the arguments it accepts. UIs use the schema to render tool
// invocations while a turn is streaming.
type Capability struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

type searchResourcesParams struct {
	Query string `json:"query" jsonschema:"title=Query,description=Free-text query matched against resource content"`
	Limit int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Maximum number of matches to return"`
}

type fetchAttachmentParams struct {
	AttachmentID string `json:"attachment_id" jsonschema:"title=Attachment ID,description=Identifier of the stored attachment to fetch"`
}

type searchImagesParams struct {
	Query string `json:"query" jsonschema:"title=Query,description=Free-text query matched against image captions and descriptions"`
}

// Catalog returns the capabilities the engine knows how to interpret.
func Catalog() []Capability {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return []Capability{
		{
			Name:        SearchResources,
			Description: "Search the resource library for passages backing an answer",
			Parameters:  reflector.Reflect(&searchResourcesParams{}),
		},
		{
			Name:        FetchAttachment,
			Description: "Fetch a stored attachment by its identifier",
			Parameters:  reflector.Reflect(&fetchAttachmentParams{}),
		},
		{
			Name:        SearchImages,
			Description: "Search for images related to the current question",
			Parameters:  reflector.Reflect(&searchImagesParams{}),
		},
	}
}
